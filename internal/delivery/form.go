package delivery

import (
	"io"
	"strconv"
	"strings"

	"store_service/internal/domain"
	"store_service/internal/usecase"

	"github.com/gin-gonic/gin"
)

// The product and user mutation endpoints accept either application/json
// (scalar fields only) or multipart/form-data (scalar fields plus an
// optional "imagen" file part). Both paths produce the same coordinator
// input, so the content type is purely a transport concern.

const imageFormField = "imagen"

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

var errUnsupportedContentType = domain.NewValidationError(
	"unsupported content type: use multipart/form-data or application/json")

// extractFormFile reads the optional image part into memory. A missing
// part is not an error; size and extension checks belong to the asset
// store, not here.
func extractFormFile(c *gin.Context) (*domain.FileUpload, error) {
	header, err := c.FormFile(imageFormField)
	if err != nil {
		// http.ErrMissingFile and gin's variants: no file was sent.
		return nil, nil
	}

	src, err := header.Open()
	if err != nil {
		return nil, domain.NewValidationError("uploaded file could not be opened")
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, domain.NewValidationError("uploaded file could not be read")
	}

	return &domain.FileUpload{
		Filename:    header.Filename,
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

type productRequest struct {
	Quantity    int     `json:"cantidad"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio"`
	Unit        string  `json:"unidad"`
	CategoryID  int     `json:"idCategoria"`
}

// extractProductInput builds the coordinator input from either transport.
func extractProductInput(c *gin.Context) (usecase.ProductInput, *domain.FileUpload, error) {
	switch {
	case isMultipart(c):
		quantity, _ := strconv.Atoi(c.PostForm("cantidad"))
		price, _ := strconv.ParseFloat(c.PostForm("precio"), 64)
		categoryID, _ := strconv.Atoi(c.PostForm("idCategoria"))
		in := usecase.ProductInput{
			Quantity:    quantity,
			Description: c.PostForm("descripcion"),
			Price:       price,
			Unit:        c.PostForm("unidad"),
			CategoryID:  categoryID,
		}
		file, err := extractFormFile(c)
		if err != nil {
			return usecase.ProductInput{}, nil, err
		}
		return in, file, nil

	case isJSON(c):
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return usecase.ProductInput{}, nil, domain.NewValidationError("invalid request body: %v", err)
		}
		return usecase.ProductInput{
			Quantity:    req.Quantity,
			Description: req.Description,
			Price:       req.Price,
			Unit:        req.Unit,
			CategoryID:  req.CategoryID,
		}, nil, nil

	default:
		return usecase.ProductInput{}, nil, errUnsupportedContentType
	}
}

type userRequest struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Document  string `json:"documento"`
	Password  string `json:"contrasena"`
}

// extractUserInput builds the coordinator input from either transport.
func extractUserInput(c *gin.Context) (usecase.UserInput, *domain.FileUpload, error) {
	switch {
	case isMultipart(c):
		in := usecase.UserInput{
			FirstName: c.PostForm("nombre"),
			LastName:  c.PostForm("apellido"),
			Document:  c.PostForm("documento"),
			Password:  c.PostForm("contrasena"),
		}
		file, err := extractFormFile(c)
		if err != nil {
			return usecase.UserInput{}, nil, err
		}
		return in, file, nil

	case isJSON(c):
		var req userRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return usecase.UserInput{}, nil, domain.NewValidationError("invalid request body: %v", err)
		}
		return usecase.UserInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Document:  req.Document,
			Password:  req.Password,
		}, nil, nil

	default:
		return usecase.UserInput{}, nil, errUnsupportedContentType
	}
}

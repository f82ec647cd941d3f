package delivery

import (
	"errors"
	"net/http"

	"store_service/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// mapErrorToStatus dispatches on the tagged error types. Asset errors
// happen before any row mutation and carry a descriptive reason, so they
// surface as client-facing 400s like the legacy behavior; persistence
// failures collapse to 500 with an Error() string already scrubbed of
// storage details.
func mapErrorToStatus(err error) int {
	var vErr *domain.ValidationError
	var nfErr *domain.NotFoundError
	var cErr *domain.ConflictError
	var aErr *domain.AssetError

	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.As(err, &cErr):
		return http.StatusConflict
	case errors.As(err, &aErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

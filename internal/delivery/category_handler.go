package delivery

import (
	"net/http"
	"strconv"

	"store_service/internal/domain"
	"store_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categorias")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		h.log.Errorf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		h.log.Errorf("Failed to create category '%s': %v", category.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create category: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "category")
	if !ok {
		return
	}

	category, err := h.useCase.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get category by ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve category: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, h.log, "category")
	if !ok {
		return
	}

	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		h.log.Errorf("Failed to bind JSON for update category ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	category.ID = id

	updated, err := h.useCase.UpdateCategory(c.Request.Context(), &category)
	if err != nil {
		h.log.Errorf("Failed to update category ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update category: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, h.log, "category")
	if !ok {
		return
	}

	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete category ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete category: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list categories: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve categories: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// pathID parses the :id parameter shared by every entity route.
func pathID(c *gin.Context, log *logrus.Logger, entity string) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		log.Warnf("Invalid %s ID parameter: %s", entity, idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return 0, false
	}
	return id, true
}

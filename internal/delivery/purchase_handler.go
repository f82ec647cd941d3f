package delivery

import (
	"net/http"

	"store_service/internal/domain"
	"store_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PurchaseHandler struct {
	useCase usecase.PurchaseUseCase
	log     *logrus.Logger
}

func NewPurchaseHandler(uc usecase.PurchaseUseCase, logger *logrus.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *PurchaseHandler) RegisterRoutes(router gin.IRouter) {
	purchases := router.Group("/compras")
	{
		purchases.POST("", h.CreatePurchase)
		purchases.GET("", h.ListPurchases)
		purchases.GET("/:id", h.GetPurchaseByID)
		purchases.PUT("/:id", h.UpdatePurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
	}
}

func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var purchase domain.Purchase
	if err := c.ShouldBindJSON(&purchase); err != nil {
		h.log.Errorf("Failed to bind JSON for create purchase: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreatePurchase(c.Request.Context(), &purchase)
	if err != nil {
		h.log.Errorf("Failed to create purchase: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create purchase: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Purchase created successfully", created)
}

func (h *PurchaseHandler) GetPurchaseByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "purchase")
	if !ok {
		return
	}

	purchase, err := h.useCase.GetPurchaseByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get purchase by ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve purchase: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Purchase retrieved successfully", purchase)
}

func (h *PurchaseHandler) UpdatePurchase(c *gin.Context) {
	id, ok := pathID(c, h.log, "purchase")
	if !ok {
		return
	}

	var purchase domain.Purchase
	if err := c.ShouldBindJSON(&purchase); err != nil {
		h.log.Errorf("Failed to bind JSON for update purchase ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	purchase.ID = id

	updated, err := h.useCase.UpdatePurchase(c.Request.Context(), &purchase)
	if err != nil {
		h.log.Errorf("Failed to update purchase ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update purchase: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Purchase updated successfully", updated)
}

func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	id, ok := pathID(c, h.log, "purchase")
	if !ok {
		return
	}

	if err := h.useCase.DeletePurchase(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete purchase ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete purchase: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Purchase deleted successfully", nil)
}

func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.useCase.ListPurchases(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list purchases: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve purchases: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Purchases retrieved successfully", purchases)
}

package delivery

import (
	"net/http"

	"store_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	useCase usecase.UserUseCase
	log     *logrus.Logger
}

func NewUserHandler(uc usecase.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/usuarios")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
	router.POST("/login", h.Login)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	in, file, err := extractUserInput(c)
	if err != nil {
		h.log.Warnf("Failed to extract user fields: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create user: "+err.Error())
		return
	}

	created, err := h.useCase.CreateUser(c.Request.Context(), in, file)
	if err != nil {
		h.log.Errorf("Failed to create user '%s': %v", in.Document, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create user: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "User created successfully", created)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "user")
	if !ok {
		return
	}

	user, err := h.useCase.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get user by ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve user: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "User retrieved successfully", user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, h.log, "user")
	if !ok {
		return
	}

	in, file, err := extractUserInput(c)
	if err != nil {
		h.log.Warnf("Failed to extract user fields for update ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update user: "+err.Error())
		return
	}

	updated, err := h.useCase.UpdateUser(c.Request.Context(), id, in, file)
	if err != nil {
		h.log.Errorf("Failed to update user ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update user: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "User updated successfully", updated)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, h.log, "user")
	if !ok {
		return
	}

	if err := h.useCase.DeleteUser(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete user ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete user: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.useCase.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list users: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve users: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

type loginRequest struct {
	Document string `json:"documento"`
	Password string `json:"contrasena"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	auth, err := h.useCase.AuthenticateUser(c.Request.Context(), req.Document, req.Password)
	if err != nil {
		h.log.Errorf("Authentication error for document %s: %v", req.Document, err)
		ErrorResponse(c, mapErrorToStatus(err), "Authentication failed: "+err.Error())
		return
	}

	if !auth.Authenticated {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid document or password")
		return
	}

	SuccessResponse(c, http.StatusOK, "Authentication successful", auth)
}

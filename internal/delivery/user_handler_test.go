package delivery

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"store_service/internal/domain"
	"store_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubUserUseCase struct {
	auth    *domain.AuthResponse
	authErr error
}

func (s *stubUserUseCase) CreateUser(_ context.Context, _ usecase.UserInput, _ *domain.FileUpload) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserUseCase) GetUserByID(_ context.Context, _ int) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserUseCase) UpdateUser(_ context.Context, _ int, _ usecase.UserInput, _ *domain.FileUpload) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserUseCase) DeleteUser(_ context.Context, _ int) error { return nil }

func (s *stubUserUseCase) ListUsers(_ context.Context) ([]domain.User, error) {
	return []domain.User{}, nil
}

func (s *stubUserUseCase) AuthenticateUser(_ context.Context, _, _ string) (*domain.AuthResponse, error) {
	return s.auth, s.authErr
}

func newUserRouter(stub *stubUserUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := gin.New()
	NewUserHandler(stub, logger).RegisterRoutes(router)
	return router
}

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	stub := &stubUserUseCase{auth: &domain.AuthResponse{Authenticated: true, Token: "tok", UserID: 5}}
	router := newUserRouter(stub)

	w := postLogin(router, `{"documento": "10203040", "contrasena": "s3cret"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tok")
}

func TestLoginWrongCredentials(t *testing.T) {
	stub := &stubUserUseCase{auth: &domain.AuthResponse{Authenticated: false}}
	router := newUserRouter(stub)

	w := postLogin(router, `{"documento": "10203040", "contrasena": "wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "Token")
}

func TestLoginMalformedBody(t *testing.T) {
	router := newUserRouter(&stubUserUseCase{})

	w := postLogin(router, `{"documento":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"npcfinder/internal/http-api/dto"
	"npcfinder/internal/http-api/models"
	"npcfinder/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, *models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(2) == nil {
		return "", "", nil, args.Error(3)
	}
	return args.String(0), args.String(1), args.Get(2).(*models.User), args.Error(3)
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupAuthRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(svc, 15*time.Minute)
	h.RegisterRoutes(r.Group("/auth"))
	return r
}

func TestRegister_Created(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, "frodo", "longpassword", "frodo@shire.me").
		Return(&models.User{ID: "u1", Username: "frodo"}, nil)

	r := setupAuthRouter(svc)
	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "frodo", Password: "longpassword", Email: "frodo@shire.me",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.RegisterResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	svc.AssertExpectations(t)
}

func TestRegister_NameTaken_NoFieldDetail(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, "frodo", "longpassword", "frodo@shire.me").
		Return(nil, service.ErrNameInUse)

	r := setupAuthRouter(svc)
	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "frodo", Password: "longpassword", Email: "frodo@shire.me",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	// response must not reveal whether the username or the email collided
	assert.NotContains(t, w.Body.String(), "username")
	assert.NotContains(t, w.Body.String(), "email")
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := new(MockAuthService)
	r := setupAuthRouter(svc)

	body, _ := json.Marshal(dto.RegisterRequest{
		Username: "frodo", Password: "short", Email: "frodo@shire.me",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register")
}

func TestLogin_OK(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, "frodo", "longpassword").
		Return("access-token", "refresh-token", &models.User{ID: "u1", Username: "frodo", DisplayName: "Frodo"}, nil)

	r := setupAuthRouter(svc)
	body, _ := json.Marshal(dto.LoginRequest{Username: "frodo", Password: "longpassword"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access-token", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, "frodo", "wrong-password").
		Return("", "", nil, service.ErrInvalidCredentials)

	r := setupAuthRouter(svc)
	body, _ := json.Marshal(dto.LoginRequest{Username: "frodo", Password: "wrong-password"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("RefreshAccessToken", mock.Anything, "stale").Return("", service.ErrInvalidToken)

	r := setupAuthRouter(svc)
	body, _ := json.Marshal(dto.RefreshTokenRequest{RefreshToken: "stale"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"gemini-chat-backend/internal/middleware"
	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/services"
)

func newTestAuthHandler(t *testing.T, password string) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	svc := services.NewAuthService(middleware.NewJWTAuth("test-secret"), string(hash))
	return &AuthHandler{authService: svc}
}

func TestAuthHandler_Login_CorrectPassword(t *testing.T) {
	h := newTestAuthHandler(t, "open sesame")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"open sesame"}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var tokens models.AuthTokens
	if err := json.NewDecoder(rr.Body).Decode(&tokens); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("Expected an access token")
	}
	if tokens.ExpiresIn <= 0 {
		t.Errorf("Expected a positive expiry, got %d", tokens.ExpiresIn)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h := newTestAuthHandler(t, "open sesame")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"password":"wrong"}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestAuthHandler_Login_MissingPassword(t *testing.T) {
	h := newTestAuthHandler(t, "open sesame")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

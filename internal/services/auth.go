package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"gemini-chat-backend/internal/middleware"
	"gemini-chat-backend/internal/models"
)

// AuthService gates the single-tenant API behind an access password. A
// successful login issues a short-lived JWT; there are no user accounts.
type AuthService struct {
	jwt          *middleware.JWTAuth
	passwordHash string
}

func NewAuthService(jwt *middleware.JWTAuth, passwordHash string) *AuthService {
	return &AuthService{jwt: jwt, passwordHash: passwordHash}
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if req.Password == "" {
		return nil, &ValidationError{Fields: map[string]string{"password": "Password is required"}}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid password"}
	}

	token, err := s.jwt.GenerateAccessToken()
	if err != nil {
		return nil, err
	}

	return &models.AuthTokens{
		AccessToken: token,
		ExpiresIn:   int(middleware.AccessTokenTTL.Seconds()),
	}, nil
}

package auth

import (
	"context"
	"crypto/subtle"

	"github.com/simp-lee/manager/internal/domain"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, login, password string) (*TokenResponse, error)
}

// Credentials are the statically configured API credentials a client must
// present to obtain a token.
type Credentials struct {
	Login    string
	Password string
}

// authService implements Service.
type authService struct {
	creds  Credentials
	tokens *TokenManager
}

// NewService creates an auth Service checking against the given credentials.
func NewService(creds Credentials, tokens *TokenManager) Service {
	return &authService{creds: creds, tokens: tokens}
}

// Login verifies the presented credentials and issues a bearer token.
// Comparison is constant-time, and both fields are always compared so a
// mismatch reveals nothing about which one was wrong.
func (s *authService) Login(_ context.Context, login, password string) (*TokenResponse, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(s.creds.Login))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password))
	if loginOK&passwordOK != 1 {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid credentials", nil)
	}

	token, expiresAt, err := s.tokens.Generate(login)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

package service

import (
	"context"

	"github.com/innovo-consulting/funding-console/internal/apiclient"
	"github.com/innovo-consulting/funding-console/internal/auth/domain"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
)

type AuthService struct {
	client *apiclient.Client
}

func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for an access token. The email is sent
// normalized.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	creds.Email = domain.NormalizeEmail(creds.Email)
	return apiclient.Post[domain.AuthResponse](ctx, s.client, loginPath, creds)
}

// Register creates an account. It never authenticates.
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) (domain.AuthResponse, error) {
	creds.Email = domain.NormalizeEmail(creds.Email)
	return apiclient.Post[domain.AuthResponse](ctx, s.client, registerPath, creds)
}

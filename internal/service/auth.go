package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/sovyx-backend/internal/server"
)

// AuthService configures Clerk. The API stays open when no secret key is set.
type AuthService struct {
	server  *server.Server
	enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	enabled := s.Config.Auth.SecretKey != ""
	if enabled {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server:  s,
		enabled: enabled,
	}
}

func (a *AuthService) Enabled() bool {
	return a.enabled
}

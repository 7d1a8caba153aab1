package service

import (
	"formgate/internal/common"
	"formgate/internal/common/security"
)

type AuthService struct{}

func NewAuthService() *AuthService {
	return &AuthService{}
}

// Login exchanges the admin credentials for a session token. The admin UI
// holds the token for its session and discards it at logout instead of
// keeping the raw credentials around.
func (s *AuthService) Login(username, password string) (string, error) {
	if !security.CheckAdminCredentials(username, password) {
		return "", common.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}
	token, err := security.GenerateToken(username)
	if err != nil {
		return "", common.Errorf("generate token: %w", err)
	}
	return token, nil
}

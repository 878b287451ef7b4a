package service

import (
	"errors"
	"time"

	"github.com/municipio/patentes-backend/config"
	"github.com/municipio/patentes-backend/pkg/logger"
	"github.com/municipio/patentes-backend/pkg/util"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Login(username, password string) (string, error)
}

type authService struct {
	admin       config.AdminConfig
	jwtSecret   string
	tokenExpiry time.Duration
}

func NewAuthService(admin config.AdminConfig, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		admin:       admin,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
	}
}

// Login checks the operator credentials against the configured account and
// issues a JWT on success.
func (s *authService) Login(username, password string) (string, error) {
	if username != s.admin.Username || s.admin.PasswordHash == "" {
		logger.Warn("Login rejected: unknown user", map[string]interface{}{
			"username": username,
		})
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Login rejected: wrong password", map[string]interface{}{
			"username": username,
		})
		return "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(username, "admin", s.jwtSecret, s.tokenExpiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"username": username,
		})
		return "", err
	}

	logger.Info("Operator logged in", map[string]interface{}{
		"username": username,
	})
	return token, nil
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/masterstudent-moderation/internal/models"
	"github.com/ArowuTest/masterstudent-moderation/internal/repositories"
	"github.com/ArowuTest/masterstudent-moderation/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl checks moderator passwords and issues HS256 tokens
type AuthServiceImpl struct {
	admins    repositories.AdminUserRepository
	jwtSecret []byte
	expiresIn time.Duration
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(admins repositories.AdminUserRepository, jwtSecret string, expiresIn time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{
		admins:    admins,
		jwtSecret: []byte(jwtSecret),
		expiresIn: expiresIn,
	}
}

// Login handles moderator login
func (s *AuthServiceImpl) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	admin, err := s.admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrAdminNotFound) {
			slog.Error("Failed to look up admin user", "email", req.Email, "error", err)
		}
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		slog.Warn("Rejected login", "email", req.Email)
		return "", ErrInvalidCredentials
	}

	tokenString, err := jwt.Issue(s.jwtSecret, jwt.Claims{
		Subject: admin.ID,
		Email:   admin.Email,
		Role:    admin.Role,
	}, s.expiresIn)
	if err != nil {
		slog.Error("Failed to generate token", "email", req.Email, "error", err)
		return "", errors.New("failed to generate token")
	}
	return tokenString, nil
}

// HashPassword returns a bcrypt hash suitable for Admin.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

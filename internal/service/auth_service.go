package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/passport-portal/internal/auth"
	"github.com/spec-kit/passport-portal/internal/domain"
	"github.com/spec-kit/passport-portal/internal/repository"
	apperrors "github.com/spec-kit/passport-portal/pkg/util/errorutil"
)

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionManager, bcryptCost int) *AuthService {
	return &AuthService{users: users, sessions: sessions, bcryptCost: bcryptCost}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates a new account with the user role.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Email) == "" ||
		input.Password == "" ||
		input.ConfirmPassword == "" {
		return nil, apperrors.NewValidationError("All fields are required", nil)
	}
	if input.Password != input.ConfirmPassword {
		return nil, apperrors.NewValidationError("Passwords do not match", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("Email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and establishes a session, returning the user
// and the signed session cookie value.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized("Invalid email or password")
		}
		return nil, "", err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("Invalid email or password")
	}

	cookie, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, cookie, nil
}

// Logout destroys the session unconditionally.
func (s *AuthService) Logout(ctx context.Context, cookieValue string) error {
	return s.sessions.Destroy(ctx, cookieValue)
}

// Sessions exposes the session manager for middleware and cookie handling.
func (s *AuthService) Sessions() *auth.SessionManager {
	return s.sessions
}

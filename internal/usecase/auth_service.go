package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hszk-dev/megaflix/internal/domain/model"
	"github.com/hszk-dev/megaflix/internal/domain/repository"
)

var (
	// ErrInvalidCredentials is returned when a username or password does not match.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned when a session token is missing, unknown or expired.
	ErrUnauthenticated = errors.New("authentication required")
)

const tokenBytes = 32

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new account.
	Register(ctx context.Context, username, password string) (*model.User, error)

	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, username, password string) (string, error)

	// Authenticate resolves a session token to its user ID.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	SessionTTL time.Duration
	BcryptCost int
}

// DefaultAuthServiceConfig returns the default configuration.
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		SessionTTL: 7 * 24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
	}
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionStore

	sessionTTL time.Duration
	bcryptCost int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionStore,
	cfg AuthServiceConfig,
) AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		sessions:   sessions,
		sessionTTL: cfg.SessionTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if len(password) < model.MinPasswordLength {
		return nil, model.ErrPasswordTooShort
	}
	if len(password) > model.MaxPasswordLength {
		return nil, model.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := model.NewUser(username, string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login returns ErrInvalidCredentials for both unknown users and wrong passwords.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, model.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	if err := s.sessions.Save(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	userID, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return uuid.Nil, ErrUnauthenticated
		}
		return uuid.Nil, fmt.Errorf("lookup session: %w", err)
	}

	return userID, nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

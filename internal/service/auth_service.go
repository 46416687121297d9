package service

import (
	"context"
	"fmt"
	"time"

	"agendador/internal/config"
	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues bearer tokens backed by the session store. Passwords
// are bcrypt-hashed; the hash never leaves the user store.
type AuthService struct {
	users    domain.UserStore
	sessions domain.SessionStore
	logger   *zerolog.Logger
}

func NewAuthService(users domain.UserStore, sessions domain.SessionStore, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Login verifies the credentials and returns the user with a fresh session
// token. Unknown emails and wrong passwords both come back as
// ErrInvalidCredentials so the response does not leak which one it was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == domain.ErrUserNotFound {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, token, nil
}

// Signup registers a new user with the regular role and logs them in.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*models.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user signed up")
	return user, token, nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Resolve maps a bearer token to its user. Expired and unknown tokens
// return ErrSessionNotFound.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err == domain.ErrUserNotFound {
		// пользователь удалён, сессия больше не действительна
		_ = s.sessions.DeleteSession(ctx, token)
		return nil, domain.ErrSessionNotFound
	}
	return user, err
}

func (s *AuthService) openSession(ctx context.Context, userID string) (string, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return session.Token, nil
}

// SeedUsers creates the configured demo accounts, hashing their plaintext
// passwords. Existing emails are skipped so seeding is safe on every start.
func SeedUsers(ctx context.Context, users domain.UserStore, demo []config.DemoUser, logger *zerolog.Logger) error {
	for _, d := range demo {
		if _, err := users.GetUserByEmail(ctx, d.Email); err == nil {
			continue
		} else if err != domain.ErrUserNotFound {
			return fmt.Errorf("seed lookup %s: %w", d.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		now := time.Now()
		user := &models.User{
			ID:           id,
			Name:         d.Name,
			Email:        d.Email,
			Role:         d.Role,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", d.Email, err)
		}
		logger.Info().Str("email", d.Email).Str("role", d.Role).Msg("seeded demo user")
	}
	return nil
}

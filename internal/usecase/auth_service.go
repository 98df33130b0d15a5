package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/domain"
)

// AuthService handles registration, login and server-side sessions
type AuthService struct {
	users       domain.UserRepository
	sessions    domain.SessionRepository
	initialCash decimal.Decimal
	sessionTTL  time.Duration
	hashCost    int
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	initialCash decimal.Decimal,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		initialCash: initialCash,
		sessionTTL:  sessionTTL,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Register creates a user with a salted bcrypt hash of the password
func (s *AuthService) Register(ctx context.Context, username, password, confirmation string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, domain.ErrMissingCredential.With(http.StatusBadRequest, "must provide username")
	case password == "":
		return nil, domain.ErrMissingCredential.With(http.StatusBadRequest, "must provide password")
	case confirmation == "":
		return nil, domain.ErrMissingCredential.With(http.StatusBadRequest, "must confirm password")
	case password != confirmation:
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		Cash:         s.initialCash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	log.Printf("[OK] Registered user %s (%s)", user.Username, user.ID)
	return user, nil
}

// Login verifies credentials and opens a new session
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	switch {
	case username == "":
		return nil, domain.ErrMissingCredential.With(http.StatusForbidden, "must provide username")
	case password == "":
		return nil, domain.ErrMissingCredential.With(http.StatusForbidden, "must provide password")
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Logout ends a session. Ending an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}

// ValidateSession returns the session when it exists and has not expired
func (s *AuthService) ValidateSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("session %s expired: %w", sessionID, domain.ErrNotFound)
	}
	return session, nil
}

// PurgeExpiredSessions deletes sessions past their expiry
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/internal/domain"
)

// CookieName is the session cookie
const CookieName = "session"

// Context keys set by RequireSession
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
)

// SessionClaims represents the session cookie claims
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	UserID    uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionValidator confirms a session is still active server-side
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error)
}

// SessionManager signs session cookies and guards protected routes
type SessionManager struct {
	secret    []byte
	secure    bool
	validator SessionValidator
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(secret string, secure bool, validator SessionValidator) *SessionManager {
	return &SessionManager{
		secret:    []byte(secret),
		secure:    secure,
		validator: validator,
	}
}

// Issue signs a cookie bound to session and sets it on the response
func (m *SessionManager) Issue(c echo.Context, session *domain.Session) error {
	claims := &SessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})
	return nil
}

// Clear expires the session cookie
func (m *SessionManager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Current parses the session cookie of the request without consulting the store
func (m *SessionManager) Current(c echo.Context) (*SessionClaims, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, fmt.Errorf("missing session cookie")
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session claims")
	}
	return claims, nil
}

// CurrentSessionID returns the session id of a well-signed cookie
func (m *SessionManager) CurrentSessionID(c echo.Context) (uuid.UUID, bool) {
	claims, err := m.Current(c)
	if err != nil {
		return uuid.Nil, false
	}
	return claims.SessionID, true
}

// RequireSession redirects to /login unless the request carries a valid,
// still-active session. On success the user and session ids are set on the context.
// Store failures are returned to the error handler rather than logging the user out.
func (m *SessionManager) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.Current(c)
		if err != nil {
			return c.Redirect(http.StatusFound, "/login")
		}

		session, err := m.validator.ValidateSession(c.Request().Context(), claims.SessionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to validate session: %w", err)
		}
		if err != nil || session.UserID != claims.UserID {
			m.Clear(c)
			return c.Redirect(http.StatusFound, "/login")
		}

		c.Set(ContextUserID, session.UserID)
		c.Set(ContextSessionID, session.ID)
		return next(c)
	}
}

// GetUserID extracts user ID from echo context
func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(ContextUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user_id not found in context")
	}
	return userID, nil
}

package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
)

// AuthService is the account surface the auth handler depends on
type AuthService interface {
	Register(ctx context.Context, username, password, confirmation string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
}

// SessionCookies issues and reads the session cookie
type SessionCookies interface {
	Issue(c echo.Context, session *domain.Session) error
	Clear(c echo.Context)
	CurrentSessionID(c echo.Context) (uuid.UUID, bool)
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	auth    AuthService
	cookies SessionCookies
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService, cookies SessionCookies) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
	}
}

// HandleLoginPage forgets any current session and renders the login form
// GET /login
func (h *AuthHandler) HandleLoginPage(c echo.Context) error {
	h.endSession(c)
	return RenderPage(c, "login", nil)
}

// HandleLogin verifies credentials and starts a new session
// POST /login
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	h.endSession(c)

	var form dto.LoginForm
	if err := c.Bind(&form); err != nil {
		return domain.ErrMissingCredential.With(http.StatusForbidden, "must provide username")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	session, err := h.auth.Login(ctx, form.Username, form.Password)
	if err != nil {
		return err
	}

	if err := h.cookies.Issue(c, session); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// HandleRegisterPage renders the registration form
// GET /register
func (h *AuthHandler) HandleRegisterPage(c echo.Context) error {
	return RenderPage(c, "register", nil)
}

// HandleRegister creates an account and sends the user to log in
// POST /register
func (h *AuthHandler) HandleRegister(c echo.Context) error {
	var form dto.RegisterForm
	if err := c.Bind(&form); err != nil {
		return domain.ErrMissingCredential.With(http.StatusBadRequest, "must provide username")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.auth.Register(ctx, form.Username, form.Password, form.Confirmation); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// HandleLogout ends the current session
// GET /logout
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	h.endSession(c)
	return c.Redirect(http.StatusFound, "/")
}

// endSession deletes the server-side session, if any, and clears the cookie
func (h *AuthHandler) endSession(c echo.Context) {
	if sessionID, ok := h.cookies.CurrentSessionID(c); ok {
		if err := h.auth.Logout(c.Request().Context(), sessionID); err != nil {
			log.Printf("WARNING: Failed to delete session %s: %v", sessionID, err)
		}
	}
	h.cookies.Clear(c)
}

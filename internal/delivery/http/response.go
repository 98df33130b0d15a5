package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

// Page is the data passed to every template
type Page map[string]interface{}

// RenderPage renders a template with status 200
func RenderPage(c echo.Context, name string, data Page) error {
	return renderStatus(c, http.StatusOK, name, data)
}

func renderStatus(c echo.Context, status int, name string, data Page) error {
	if data == nil {
		data = Page{}
	}
	_, err := middleware.GetUserID(c)
	data["LoggedIn"] = err == nil
	return c.Render(status, name, data)
}

// ApologyResponse renders the apology page with the given status
func ApologyResponse(c echo.Context, status int, message string) error {
	return renderStatus(c, status, "apology", Page{
		"Code":    status,
		"Message": message,
	})
}

// NewErrorHandler returns an echo.HTTPErrorHandler that renders every
// error as an apology page. Domain errors carry their own status.
func NewErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		if renderErr := ApologyResponse(c, status, message); renderErr != nil {
			log.Printf("ERROR: Failed to render apology: %v", renderErr)
			_ = c.String(status, message)
		}
	}
}

func statusFor(err error) (int, string) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

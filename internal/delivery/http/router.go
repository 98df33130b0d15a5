package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "papertrade/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	Renderer    echo.Renderer
	Sessions    *custommiddleware.SessionManager
	AuthHandler *AuthHandler
	WebHandler  *WebHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.Renderer = config.Renderer
	e.HTTPErrorHandler = NewErrorHandler()

	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/favicon.ico" || strings.HasPrefix(path, "/static/")
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.NoCache)

	// Public
	e.GET("/login", config.AuthHandler.HandleLoginPage)
	e.POST("/login", config.AuthHandler.HandleLogin)
	e.GET("/register", config.AuthHandler.HandleRegisterPage)
	e.POST("/register", config.AuthHandler.HandleRegister)
	e.GET("/logout", config.AuthHandler.HandleLogout)

	// Session required
	app := e.Group("", config.Sessions.RequireSession)
	{
		app.GET("/", config.WebHandler.HandleIndex)
		app.POST("/", config.WebHandler.HandleTopUp)
		app.GET("/buy", config.WebHandler.HandleBuyPage)
		app.POST("/buy", config.WebHandler.HandleBuy)
		app.GET("/sell", config.WebHandler.HandleSellPage)
		app.POST("/sell", config.WebHandler.HandleSell)
		app.GET("/quote", config.WebHandler.HandleQuotePage)
		app.POST("/quote", config.WebHandler.HandleQuote)
		app.GET("/history", config.WebHandler.HandleHistory)
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

const requestTimeout = 10 * time.Second

// TradingService is the trading surface the web handler depends on
type TradingService interface {
	Quote(ctx context.Context, rawSymbol string) (*domain.Quote, error)
	Buy(ctx context.Context, userID uuid.UUID, rawSymbol, rawShares string) (*domain.Transaction, error)
	Sell(ctx context.Context, userID uuid.UUID, rawSymbol, rawShares string) (*domain.Transaction, error)
	TopUp(ctx context.Context, userID uuid.UUID, rawAmount string) (decimal.Decimal, error)
	Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error)
	History(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)
	HeldSymbols(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// WebHandler serves the trading pages. All routes require a session.
type WebHandler struct {
	trading TradingService
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(trading TradingService) *WebHandler {
	return &WebHandler{trading: trading}
}

// HandleIndex renders the portfolio
// GET /
func (h *WebHandler) HandleIndex(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	portfolio, err := h.trading.Portfolio(ctx, userID)
	if err != nil {
		return err
	}

	return RenderPage(c, "index", Page{"Portfolio": portfolio})
}

// HandleTopUp adds cash to the balance
// POST /
func (h *WebHandler) HandleTopUp(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form dto.TopUpForm
	if err := c.Bind(&form); err != nil {
		return domain.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.trading.TopUp(ctx, userID, form.Amount); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// HandleBuyPage renders the buy form
// GET /buy
func (h *WebHandler) HandleBuyPage(c echo.Context) error {
	return RenderPage(c, "buy", nil)
}

// HandleBuy executes a purchase
// POST /buy
func (h *WebHandler) HandleBuy(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form dto.TradeForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.trading.Buy(ctx, userID, form.Symbol, form.Shares); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// HandleSellPage renders the sell form with the symbols currently held
// GET /sell
func (h *WebHandler) HandleSellPage(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	symbols, err := h.trading.HeldSymbols(ctx, userID)
	if err != nil {
		return err
	}

	return RenderPage(c, "sell", Page{"Symbols": symbols})
}

// HandleSell executes a sale
// POST /sell
func (h *WebHandler) HandleSell(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form dto.TradeForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if _, err := h.trading.Sell(ctx, userID, form.Symbol, form.Shares); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/")
}

// HandleQuotePage renders the quote form
// GET /quote
func (h *WebHandler) HandleQuotePage(c echo.Context) error {
	return RenderPage(c, "quote", nil)
}

// HandleQuote looks up a symbol
// POST /quote
func (h *WebHandler) HandleQuote(c echo.Context) error {
	var form dto.QuoteForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form submission")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	quote, err := h.trading.Quote(ctx, form.Symbol)
	if err != nil {
		return err
	}

	return RenderPage(c, "quoted", Page{"Quote": quote})
}

// HandleHistory lists every transaction of the user, oldest first
// GET /history
func (h *WebHandler) HandleHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	transactions, err := h.trading.History(ctx, userID)
	if err != nil {
		return err
	}

	return RenderPage(c, "history", Page{"Transactions": transactions})
}

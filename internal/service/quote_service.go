package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// DefaultQuoteBaseURL is the IEX Cloud stable API
const DefaultQuoteBaseURL = "https://cloud.iexapis.com/stable"

// QuoteService fetches stock quotes from an IEX-compatible HTTP API
type QuoteService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *CircuitBreaker
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(baseURL, apiKey string, timeout time.Duration) *QuoteService {
	if baseURL == "" {
		baseURL = DefaultQuoteBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QuoteService{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		breaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// iexQuote is the subset of the IEX quote payload we use
type iexQuote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"companyName"`
	LatestPrice decimal.Decimal `json:"latestPrice"`
}

// Lookup fetches the current quote for symbol.
// Unknown symbols yield domain.ErrUnknownSymbol; transport failures and an
// open breaker yield domain.ErrQuoteUnavailable.
func (s *QuoteService) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	var quote *domain.Quote
	err := s.breaker.ExecuteContext(ctx, func() error {
		var err error
		quote, err = s.fetch(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	if quote == nil {
		return nil, domain.ErrUnknownSymbol
	}
	return quote, nil
}

// fetch returns (nil, nil) when the provider does not know the symbol
func (s *QuoteService) fetch(ctx context.Context, symbol string) (*domain.Quote, error) {
	addr := fmt.Sprintf("%s/stock/%s/quote?token=%s",
		s.baseURL, url.PathEscape(symbol), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("quote API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload iexQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			// IEX answers some unknown symbols with a plain-text body
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}

	if payload.CompanyName == "" || !payload.LatestPrice.IsPositive() {
		return nil, nil
	}

	quoteSymbol := strings.ToUpper(payload.Symbol)
	if quoteSymbol == "" {
		quoteSymbol = symbol
	}

	return &domain.Quote{
		Symbol: quoteSymbol,
		Name:   payload.CompanyName,
		Price:  payload.LatestPrice,
	}, nil
}

package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger is a dependency whose reachability is reported by /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// Ping implements Pinger
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse is the /health payload
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// NewRouter builds the operations router. Checks are keyed by name; a
// failing "database" check makes the service unhealthy, any other failing
// check only degrades it.
func NewRouter(checks map[string]Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", handleHealth(checks))
	return r
}

func handleHealth(checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{
			Status:    "healthy",
			Service:   "papertrade",
			Checks:    make(map[string]string, len(checks)),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		status := http.StatusOK

		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				resp.Checks[name] = "unhealthy"
				if name == "database" {
					resp.Status = "unhealthy"
					status = http.StatusServiceUnavailable
				} else if resp.Status == "healthy" {
					resp.Status = "degraded"
				}
				continue
			}
			resp.Checks[name] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

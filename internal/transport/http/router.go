// Package httptransport assembles the public HTTP surface. Handlers stay in
// their domain packages; this router only mounts them and adds the shared
// middleware chain and operational endpoints.
package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veripay/internal/platform/middleware"
	"veripay/pkg/platform/httputil"
)

// Registrar mounts a group of related routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts. Trust may be nil when the
// admin surface is disabled.
type Deps struct {
	Verifier Registrar
	Payments Registrar
	Trust    Registrar

	HealthChecks map[string]HealthCheck
}

// NewRouter builds the chi router with request ID and request time
// middleware, the domain routes, and /healthz + /metrics.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	deps.Verifier.Register(r)
	deps.Payments.Register(r)
	if deps.Trust != nil {
		deps.Trust.Register(r)
	}

	r.Get("/healthz", handleHealth(deps.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(ctx); err != nil {
					resp.Checks[name] = err.Error()
					resp.Status = "degraded"
					status = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[name] = "ok"
			}
		}

		httputil.WriteJSON(w, status, resp)
	}
}

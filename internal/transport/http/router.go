// Package httptransport composes the HTTP surface: middleware chain, utility
// endpoints, and the per-feature handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboardly/internal/platform/metrics"
	"onboardly/internal/platform/middleware"
	"onboardly/internal/registrar"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/httputil"
)

// Registrar is the slice of the registrar client the utility endpoints need.
type Registrar interface {
	Ping(ctx context.Context) (*registrar.RawResponse, error)
	EgressIP(ctx context.Context) (string, error)
}

// FeatureHandler registers a feature's routes on the router.
type FeatureHandler interface {
	Register(r chi.Router)
}

// NewRouter builds the full HTTP handler.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, allowedOrigin string, reg Registrar, features ...FeatureHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(allowedOrigin))
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/my-ip", handleMyIP(reg))
	// /test-keys is the historical name; both paths run the same key check.
	r.Get("/ping", handlePing(reg))
	r.Get("/test-keys", handlePing(reg))

	for _, f := range features {
		f.Register(r)
	}
	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMyIP reports the relay's public egress IP so operators can whitelist
// it with the registrar.
func handleMyIP(reg Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, err := reg.EgressIP(r.Context())
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "egress IP lookup failed"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"ip": ip})
	}
}

// handlePing relays the registrar's key-validation response so operators can
// verify credentials without a domain lookup.
func handlePing(reg Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := reg.Ping(r.Context())
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":   resp.Status,
			"message":  resp.Message,
			"keyValid": resp.Succeeded(),
		})
	}
}

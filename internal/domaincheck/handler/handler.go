package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"onboardly/internal/domaincheck"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/httputil"
	"onboardly/pkg/requestcontext"
)

// Service defines the availability-check operations the handler needs.
type Service interface {
	Check(ctx context.Context, domainName string) (*domaincheck.Result, error)
}

// Handler wires the domain-check endpoint to the evaluator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a domain-check handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts domain-check endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/check-domain", h.HandleCheckDomain)
}

// unavailableResponse is the degraded-path error body: even when the
// registrar is down, the caller gets generated suggestions to work with.
type unavailableResponse struct {
	Error       string   `json:"error"`
	Details     string   `json:"details,omitempty"`
	Timestamp   string   `json:"timestamp"`
	Suggestions []string `json:"suggestions"`
}

// HandleCheckDomain handles POST /api/check-domain requests.
func (h *Handler) HandleCheckDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CheckDomainRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Check(ctx, req.DomainName)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable) {
			h.logger.ErrorContext(ctx, "domain check upstream failure",
				"request_id", requestID,
				"domain", req.DomainName,
				"error", err,
			)
			httputil.WriteJSON(w, http.StatusBadGateway, unavailableResponse{
				Error:       string(dErrors.CodeUpstreamUnavailable),
				Details:     dErrors.MessageOf(err),
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
				Suggestions: domaincheck.Alternatives(strings.ToLower(strings.TrimSpace(req.DomainName))),
			})
			return
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain checked",
		"request_id", requestID,
		"domain", result.Domain,
		"available", result.Available,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

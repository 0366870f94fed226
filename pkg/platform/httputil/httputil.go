// Package httputil centralizes JSON encoding and error translation for the
// HTTP layer so every handler emits the same envelope.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/requestcontext"
)

// Validatable is implemented by request types that can validate themselves
// after decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the stable error envelope. Details are omitted for
// internal errors so raw diagnostics never reach callers.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WriteError translates a coded error into an HTTP response.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := ErrorResponse{Error: string(code)}

	if code != dErrors.CodeInternal {
		body.Details = dErrors.MessageOf(err)
	}
	if code == dErrors.CodeUpstreamUnavailable {
		// Upstream outages carry a timestamp for correlation with upstream
		// status pages and our own logs.
		body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	WriteJSON(w, statusFor(code), body)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeUpstreamUnavailable, dErrors.CodeUpstreamRejected:
		return http.StatusBadGateway
	case dErrors.CodeProvisioningFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes the JSON request body into T and validates it.
// On failure it writes the error response itself and returns ok=false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (PT, bool) {
	ctx := r.Context()
	req := PT(new(T))

	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			logger.WarnContext(ctx, "request body decode failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
			return nil, false
		}
	}

	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}

	return req, true
}

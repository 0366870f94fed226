package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"onboardly/internal/messaging"
	"onboardly/internal/provision"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/httputil"
	"onboardly/pkg/platform/sentinel"
	"onboardly/pkg/requestcontext"
)

// Service defines the provisioning and messaging operations the handlers need.
type Service interface {
	Provision(ctx context.Context, req provision.Request) (*provision.Result, error)
	SendMessage(ctx context.Context, channelID, text string, blocks json.RawMessage) (string, error)
	SendHelpMessage(ctx context.Context, req provision.HelpRequest) error
	FindUser(ctx context.Context, email string) (messaging.User, error)
}

// Handler wires the channel-provisioning and messaging endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a provisioning handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts provisioning endpoints on the router. The help endpoint
// predates the /api prefix and keeps its original path for existing callers.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/create-slack-channel", h.HandleCreateChannel)
	r.Post("/api/send-slack-message", h.HandleSendMessage)
	r.Post("/send-slack-help-message", h.HandleSendHelpMessage)
	r.Get("/find-user-id", h.HandleFindUser)
}

// HandleCreateChannel handles POST /api/create-slack-channel requests.
func (h *Handler) HandleCreateChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateChannelRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Provision(ctx, provision.Request{
		ChannelName:  req.ChannelName,
		BusinessName: req.BusinessName,
		UserEmail:    req.UserEmail,
		ClientName:   req.ClientName,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "channel provisioning failed",
			"request_id", requestID,
			"channel_name", req.ChannelName,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "channel created",
		"request_id", requestID,
		"channel_id", result.ChannelID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

type sendMessageResponse struct {
	Success   bool   `json:"success"`
	MessageTs string `json:"messageTs"`
	ChannelID string `json:"channelId"`
}

// HandleSendMessage handles POST /api/send-slack-message requests.
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SendMessageRequest](w, r, h.logger)
	if !ok {
		return
	}

	ts, err := h.service.SendMessage(ctx, req.ChannelID, req.Message, req.Blocks)
	if err != nil {
		h.logger.ErrorContext(ctx, "message post failed",
			"request_id", requestID,
			"channel_id", req.ChannelID,
			"error", err,
		)
		// Transport failures are outages, not platform rejections.
		code := dErrors.CodeUpstreamRejected
		if errors.Is(err, sentinel.ErrUnavailable) {
			code = dErrors.CodeUpstreamUnavailable
		}
		httputil.WriteError(w, dErrors.Wrap(err, code, "message could not be posted"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sendMessageResponse{
		Success:   true,
		MessageTs: ts,
		ChannelID: req.ChannelID,
	})
}

// helpResponse is the legacy response shape of the help endpoint; its callers
// switch on the success flag rather than HTTP status.
type helpResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HandleSendHelpMessage handles POST /send-slack-help-message requests.
func (h *Handler) HandleSendHelpMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[HelpMessageRequest](w, r, h.logger)
	if !ok {
		return
	}

	err := h.service.SendHelpMessage(ctx, provision.HelpRequest{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		BusinessName: req.BusinessName,
		Message:      req.Body(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "help message failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, helpResponse{
			Success: false,
			Error:   "help message could not be delivered",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, helpResponse{Success: true})
}

type userResponse struct {
	User struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		RealName string `json:"real_name"`
		Email    string `json:"email"`
	} `json:"user"`
}

// HandleFindUser handles GET /find-user-id?email= requests.
func (h *Handler) HandleFindUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email query parameter is required"))
		return
	}

	user, err := h.service.FindUser(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "User not found",
		})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "user lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "user lookup failed"))
		return
	}

	var resp userResponse
	resp.User.ID = user.ID
	resp.User.Name = user.Name
	resp.User.RealName = user.RealName
	resp.User.Email = user.Email
	httputil.WriteJSON(w, http.StatusOK, resp)
}

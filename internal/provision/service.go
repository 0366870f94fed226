// Package provision orchestrates client-onboarding channel setup: resolve a
// channel, invite the team roster, resolve and invite the client, post a
// welcome message. Only channel resolution is fatal; every later step is
// best-effort.
package provision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"onboardly/internal/messaging"
	"onboardly/internal/provision/metrics"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/email"
	"onboardly/pkg/platform/sentinel"
	"onboardly/pkg/requestcontext"
)

const notProvided = "Not provided"

// Request carries the inputs for one provisioning run.
type Request struct {
	ChannelName  string
	BusinessName string
	UserEmail    string
	ClientName   string
}

// Result is the outcome of a provisioning run. Success reflects channel
// resolution only; best-effort step failures do not flip it.
type Result struct {
	Success     bool   `json:"success"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// HelpRequest carries a help-desk submission relayed into the support channel.
type HelpRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	BusinessName string
	Message      string
}

// Service runs the provisioning pipeline against the messaging platform.
type Service struct {
	client        messaging.Client
	roster        []string
	helpChannelID string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// New constructs a provisioning service. The roster is the fixed set of team
// member IDs invited to every provisioned channel.
func New(client messaging.Client, roster []string, helpChannelID string, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		client:        client,
		roster:        roster,
		helpChannelID: helpChannelID,
		logger:        logger,
		metrics:       m,
		tracer:        otel.Tracer("onboardly/internal/provision"),
	}
}

// pipelineState accumulates results across steps of one run.
type pipelineState struct {
	req     Request
	name    string
	channel messaging.Channel
	client  messaging.User
	// clientResolved gates the invite-client step; a missing user is an
	// expected outcome, not a failure.
	clientResolved bool
	outcome        string
}

// step is one stage of the pipeline. Exactly one step (resolve_channel) is
// fatal; the rest log their failures and let the run continue.
type step struct {
	name  string
	fatal bool
	run   func(ctx context.Context, st *pipelineState) (skipped bool, err error)
}

// Provision runs the full pipeline for one onboarding request.
func (s *Service) Provision(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration(time.Since(start)) }()

	name := SanitizeChannelName(req.ChannelName)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "channelName must contain at least one alphanumeric character")
	}

	st := &pipelineState{req: req, name: name}
	steps := []step{
		{name: "resolve_channel", fatal: true, run: s.resolveChannel},
		{name: "invite_team", run: s.inviteTeam},
		{name: "resolve_client", run: s.resolveClient},
		{name: "invite_client", run: s.inviteClient},
		{name: "post_welcome", run: s.postWelcome},
	}

	for _, step := range steps {
		stepCtx, span := s.tracer.Start(ctx, "provision."+step.name)
		skipped, err := step.run(stepCtx, st)
		span.End()
		switch {
		case err != nil && step.fatal:
			s.metrics.IncrementProvision("failed")
			s.logger.ErrorContext(ctx, "provisioning aborted",
				"request_id", requestcontext.RequestID(ctx),
				"step", step.name,
				"channel_name", st.name,
				"error", err,
			)
			return nil, dErrors.Wrap(err, dErrors.CodeProvisioningFailed, "channel could not be resolved")
		case err != nil:
			s.metrics.IncrementStepFailure(step.name)
			s.logger.WarnContext(ctx, "provisioning step failed",
				"request_id", requestcontext.RequestID(ctx),
				"step", step.name,
				"channel_id", st.channel.ID,
				"error", err,
			)
		case skipped:
			s.logger.DebugContext(ctx, "provisioning step skipped", "step", step.name)
		}
	}

	s.metrics.IncrementProvision(st.outcome)
	s.logger.InfoContext(ctx, "channel provisioned",
		"request_id", requestcontext.RequestID(ctx),
		"channel_id", st.channel.ID,
		"channel_name", st.channel.Name,
		"outcome", st.outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{Success: true, ChannelID: st.channel.ID, ChannelName: st.channel.Name}, nil
}

// resolveChannel creates the channel, falling back to an existing channel of
// the same name and then to a timestamp-suffixed retry when the name is taken.
func (s *Service) resolveChannel(ctx context.Context, st *pipelineState) (bool, error) {
	ch, err := s.client.CreateChannel(ctx, st.name)
	if err == nil {
		st.channel = ch
		st.outcome = "created"
		return false, nil
	}
	if !errors.Is(err, sentinel.ErrConflict) {
		return false, err
	}

	channels, listErr := s.client.ListChannels(ctx)
	if listErr == nil {
		for _, existing := range channels {
			if existing.Name == st.name {
				st.channel = existing
				st.outcome = "reused"
				return false, nil
			}
		}
	} else {
		s.logger.WarnContext(ctx, "channel list failed during name conflict",
			"channel_name", st.name, "error", listErr)
	}

	// Name is taken but invisible to us (private, or listing failed).
	// Disambiguate with the last four digits of the request timestamp.
	suffixed := fmt.Sprintf("%s-%04d", st.name, requestcontext.Now(ctx).Unix()%10000)
	ch, err = s.client.CreateChannel(ctx, suffixed)
	if err != nil {
		return false, err
	}
	st.name = suffixed
	st.channel = ch
	st.outcome = "suffixed"
	return false, nil
}

func (s *Service) inviteTeam(ctx context.Context, st *pipelineState) (bool, error) {
	if len(s.roster) == 0 {
		return true, nil
	}
	return false, s.client.InviteUsers(ctx, st.channel.ID, s.roster)
}

func (s *Service) resolveClient(ctx context.Context, st *pipelineState) (bool, error) {
	if st.req.UserEmail == "" {
		return true, nil
	}
	user, err := s.client.LookupUserByEmail(ctx, st.req.UserEmail)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logger.InfoContext(ctx, "client not on messaging platform",
			"channel_id", st.channel.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	st.client = user
	st.clientResolved = true
	return false, nil
}

func (s *Service) inviteClient(ctx context.Context, st *pipelineState) (bool, error) {
	if !st.clientResolved {
		return true, nil
	}
	return false, s.client.InviteUsers(ctx, st.channel.ID, []string{st.client.ID})
}

func (s *Service) postWelcome(ctx context.Context, st *pipelineState) (bool, error) {
	_, err := s.client.PostMessage(ctx, st.channel.ID, welcomeText(st.req))
	return false, err
}

// welcomeText composes the onboarding welcome message. Every field gets an
// explicit placeholder when missing so the message never shows blanks.
func welcomeText(req Request) string {
	business := req.BusinessName
	if business == "" {
		business = notProvided
	}
	contact := req.ClientName
	if contact == "" && req.UserEmail != "" {
		contact = email.DeriveDisplayName(req.UserEmail)
	}
	if contact == "" {
		contact = notProvided
	}
	addr := req.UserEmail
	if addr == "" {
		addr = notProvided
	}

	var b strings.Builder
	b.WriteString(":wave: Welcome to your onboarding channel!\n\n")
	fmt.Fprintf(&b, "*Business:* %s\n", business)
	fmt.Fprintf(&b, "*Contact:* %s\n", contact)
	fmt.Fprintf(&b, "*Email:* %s\n\n", addr)
	b.WriteString("Our team has been added and will be in touch shortly.")
	return b.String()
}

// SendMessage posts text or a raw block payload to a channel and returns the
// message timestamp. Exactly one of text and blocks must be set; the handler
// validates that before calling.
func (s *Service) SendMessage(ctx context.Context, channelID, text string, blocks json.RawMessage) (string, error) {
	if len(blocks) > 0 {
		return s.client.PostBlocks(ctx, channelID, blocks)
	}
	return s.client.PostMessage(ctx, channelID, text)
}

// SendHelpMessage relays a help-desk submission into the configured support
// channel.
func (s *Service) SendHelpMessage(ctx context.Context, req HelpRequest) error {
	if s.helpChannelID == "" {
		return dErrors.New(dErrors.CodeInternal, "help channel is not configured")
	}
	_, err := s.client.PostMessage(ctx, s.helpChannelID, helpText(req))
	return err
}

func helpText(req HelpRequest) string {
	var b strings.Builder
	b.WriteString(":sos: New help request\n\n")
	fmt.Fprintf(&b, "*Name:* %s %s\n", req.FirstName, req.LastName)
	fmt.Fprintf(&b, "*Email:* %s\n", req.Email)
	if req.Phone != "" {
		fmt.Fprintf(&b, "*Phone:* %s\n", req.Phone)
	}
	if req.BusinessName != "" {
		fmt.Fprintf(&b, "*Business:* %s\n", req.BusinessName)
	}
	fmt.Fprintf(&b, "\n%s", req.Message)
	return b.String()
}

// FindUser looks up a messaging-platform user by email.
func (s *Service) FindUser(ctx context.Context, emailAddr string) (messaging.User, error) {
	return s.client.LookupUserByEmail(ctx, emailAddr)
}

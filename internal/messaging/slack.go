package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"onboardly/pkg/platform/sentinel"
)

// slackAPI is the subset of the slack-go client we use, extracted so tests
// could stub the SDK if ever needed.
type slackAPI interface {
	CreateConversationContext(ctx context.Context, params slack.CreateConversationParams) (*slack.Channel, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	InviteUsersToConversationContext(ctx context.Context, channelID string, users ...string) (*slack.Channel, error)
	GetUserByEmailContext(ctx context.Context, email string) (*slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackClient implements Client on top of slack-go. One instance per process,
// holding only the immutable token-bearing SDK client.
type SlackClient struct {
	api      slackAPI
	logger   *slog.Logger
	inflight *semaphore.Weighted
	tracer   trace.Tracer
}

// SlackOption configures a SlackClient.
type SlackOption func(*SlackClient)

// WithAPI overrides the underlying SDK client (tests).
func WithAPI(api slackAPI) SlackOption {
	return func(c *SlackClient) { c.api = api }
}

// NewSlack constructs a slack-backed messaging client.
func NewSlack(token string, logger *slog.Logger, opts ...SlackOption) *SlackClient {
	c := &SlackClient{
		api:      slack.New(token),
		logger:   logger,
		inflight: semaphore.NewWeighted(8),
		tracer:   otel.Tracer("onboardly/internal/messaging"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SlackClient) acquire(ctx context.Context) (release func(), err error) {
	if err := c.inflight.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: slack call canceled while queued", sentinel.ErrUnavailable)
	}
	return func() { c.inflight.Release(1) }, nil
}

// CreateChannel creates a public channel. The name must already be sanitized
// to the platform's allowed character set.
func (c *SlackClient) CreateChannel(ctx context.Context, name string) (Channel, error) {
	ctx, span := c.tracer.Start(ctx, "slack.CreateChannel")
	defer span.End()

	release, err := c.acquire(ctx)
	if err != nil {
		return Channel{}, err
	}
	defer release()

	ch, err := c.api.CreateConversationContext(ctx, slack.CreateConversationParams{
		ChannelName: name,
		IsPrivate:   false,
	})
	if err != nil {
		return Channel{}, translateSlackError(err)
	}
	return Channel{ID: ch.ID, Name: ch.Name}, nil
}

// ListChannels returns all non-archived public channels, following cursors.
func (c *SlackClient) ListChannels(ctx context.Context) ([]Channel, error) {
	ctx, span := c.tracer.Start(ctx, "slack.ListChannels")
	defer span.End()

	release, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		channels []Channel
		cursor   string
	)
	for {
		page, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Cursor:          cursor,
			ExcludeArchived: true,
			Limit:           200,
			Types:           []string{"public_channel"},
		})
		if err != nil {
			return nil, translateSlackError(err)
		}
		for _, ch := range page {
			channels = append(channels, Channel{ID: ch.ID, Name: ch.Name})
		}
		if next == "" {
			return channels, nil
		}
		cursor = next
	}
}

// InviteUsers invites members to a channel. Members already present are not
// an error.
func (c *SlackClient) InviteUsers(ctx context.Context, channelID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "slack.InviteUsers")
	defer span.End()

	release, err := c.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if _, err := c.api.InviteUsersToConversationContext(ctx, channelID, userIDs...); err != nil {
		if isSlackError(err, "already_in_channel") {
			return nil
		}
		return translateSlackError(err)
	}
	return nil
}

// LookupUserByEmail resolves a workspace member by email. Unknown emails
// yield sentinel.ErrNotFound.
func (c *SlackClient) LookupUserByEmail(ctx context.Context, email string) (User, error) {
	ctx, span := c.tracer.Start(ctx, "slack.LookupUserByEmail")
	defer span.End()

	release, err := c.acquire(ctx)
	if err != nil {
		return User{}, err
	}
	defer release()

	u, err := c.api.GetUserByEmailContext(ctx, email)
	if err != nil {
		return User{}, translateSlackError(err)
	}
	return User{
		ID:       u.ID,
		Name:     u.Name,
		RealName: u.RealName,
		Email:    u.Profile.Email,
	}, nil
}

// PostMessage posts plain text and returns the message timestamp.
func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	return c.post(ctx, channelID, slack.MsgOptionText(text, false))
}

// PostBlocks posts a raw block-kit payload and returns the message timestamp.
func (c *SlackClient) PostBlocks(ctx context.Context, channelID string, raw json.RawMessage) (string, error) {
	var blocks slack.Blocks
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", fmt.Errorf("parsing blocks payload: %w", err)
	}
	return c.post(ctx, channelID, slack.MsgOptionBlocks(blocks.BlockSet...))
}

func (c *SlackClient) post(ctx context.Context, channelID string, option slack.MsgOption) (string, error) {
	ctx, span := c.tracer.Start(ctx, "slack.PostMessage")
	defer span.End()

	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	_, ts, err := c.api.PostMessageContext(ctx, channelID, option)
	if err != nil {
		return "", translateSlackError(err)
	}
	return ts, nil
}

// translateSlackError maps the platform's error strings onto sentinel
// errors. The SDK surfaces Slack API errors as their raw error code string
// (e.g. "name_taken").
func translateSlackError(err error) error {
	switch {
	case isSlackError(err, "name_taken"):
		return fmt.Errorf("%w: channel name taken", sentinel.ErrConflict)
	case isSlackError(err, "users_not_found"), isSlackError(err, "user_not_found"):
		return fmt.Errorf("%w: no user with that email", sentinel.ErrNotFound)
	default:
		return err
	}
}

func isSlackError(err error, code string) bool {
	return err != nil && strings.Contains(err.Error(), code)
}

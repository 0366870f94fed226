package provision

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardly/internal/messaging"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/sentinel"
	"onboardly/pkg/requestcontext"
)

type fakeMessaging struct {
	createErrs   map[string]error
	channels     []messaging.Channel
	listErr      error
	users        map[string]messaging.User
	inviteErr    error
	postErr      error
	lookupErr    error
	createdNames []string
	invites      map[string][]string
	posted       []string
}

func newFakeMessaging() *fakeMessaging {
	return &fakeMessaging{
		createErrs: map[string]error{},
		users:      map[string]messaging.User{},
		invites:    map[string][]string{},
	}
}

func (f *fakeMessaging) CreateChannel(_ context.Context, name string) (messaging.Channel, error) {
	f.createdNames = append(f.createdNames, name)
	if err := f.createErrs[name]; err != nil {
		return messaging.Channel{}, err
	}
	return messaging.Channel{ID: "C-" + name, Name: name}, nil
}

func (f *fakeMessaging) ListChannels(_ context.Context) ([]messaging.Channel, error) {
	return f.channels, f.listErr
}

func (f *fakeMessaging) InviteUsers(_ context.Context, channelID string, userIDs []string) error {
	if f.inviteErr != nil {
		return f.inviteErr
	}
	f.invites[channelID] = append(f.invites[channelID], userIDs...)
	return nil
}

func (f *fakeMessaging) LookupUserByEmail(_ context.Context, email string) (messaging.User, error) {
	if f.lookupErr != nil {
		return messaging.User{}, f.lookupErr
	}
	user, ok := f.users[email]
	if !ok {
		return messaging.User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (f *fakeMessaging) PostMessage(_ context.Context, channelID, text string) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, channelID+": "+text)
	return "1700000000.000100", nil
}

func (f *fakeMessaging) PostBlocks(_ context.Context, channelID string, _ json.RawMessage) (string, error) {
	if f.postErr != nil {
		return "", f.postErr
	}
	f.posted = append(f.posted, channelID+": [blocks]")
	return "1700000000.000200", nil
}

func newService(f *fakeMessaging, roster []string) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(f, roster, "C-HELP", logger, nil)
}

func TestProvisionHappyPath(t *testing.T) {
	fake := newFakeMessaging()
	fake.users["jane@acme.com"] = messaging.User{ID: "U-JANE", Email: "jane@acme.com"}
	svc := newService(fake, []string{"U-TEAM1", "U-TEAM2"})

	result, err := svc.Provision(context.Background(), Request{
		ChannelName:  "Acme Corp",
		BusinessName: "Acme Corp",
		UserEmail:    "jane@acme.com",
		ClientName:   "Jane Doe",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "C-acme-corp", result.ChannelID)
	assert.Equal(t, "acme-corp", result.ChannelName)

	assert.Equal(t, []string{"U-TEAM1", "U-TEAM2", "U-JANE"}, fake.invites["C-acme-corp"])
	require.Len(t, fake.posted, 1)
	assert.Contains(t, fake.posted[0], "Acme Corp")
	assert.Contains(t, fake.posted[0], "Jane Doe")
	assert.Contains(t, fake.posted[0], "jane@acme.com")
}

func TestProvisionReusesExistingChannelOnNameConflict(t *testing.T) {
	fake := newFakeMessaging()
	fake.createErrs["acme-corp"] = sentinel.ErrConflict
	fake.channels = []messaging.Channel{
		{ID: "C-OTHER", Name: "other"},
		{ID: "C-EXISTING", Name: "acme-corp"},
	}
	svc := newService(fake, nil)

	result, err := svc.Provision(context.Background(), Request{ChannelName: "Acme Corp"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "C-EXISTING", result.ChannelID)
	// Only the original create attempt, no duplicate.
	assert.Equal(t, []string{"acme-corp"}, fake.createdNames)
}

func TestProvisionSuffixesWhenConflictHasNoVisibleMatch(t *testing.T) {
	fake := newFakeMessaging()
	fake.createErrs["acme-corp"] = sentinel.ErrConflict
	svc := newService(fake, nil)

	fixed := time.Unix(1712345678, 0)
	ctx := requestcontext.WithTime(context.Background(), fixed)

	result, err := svc.Provision(ctx, Request{ChannelName: "Acme Corp"})

	require.NoError(t, err)
	assert.Equal(t, "acme-corp-5678", result.ChannelName)
	assert.Equal(t, "C-acme-corp-5678", result.ChannelID)
	assert.Equal(t, []string{"acme-corp", "acme-corp-5678"}, fake.createdNames)
}

func TestProvisionFatalOnOtherCreateError(t *testing.T) {
	fake := newFakeMessaging()
	fake.createErrs["acme-corp"] = sentinel.ErrUnavailable
	svc := newService(fake, nil)

	result, err := svc.Provision(context.Background(), Request{ChannelName: "Acme Corp"})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeProvisioningFailed))
	assert.Empty(t, fake.posted)
}

func TestProvisionSucceedsWhenClientEmailUnknown(t *testing.T) {
	fake := newFakeMessaging()
	svc := newService(fake, []string{"U-TEAM1"})

	result, err := svc.Provision(context.Background(), Request{
		ChannelName: "Acme Corp",
		UserEmail:   "nobody@acme.com",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	// Team invited, client not.
	assert.Equal(t, []string{"U-TEAM1"}, fake.invites["C-acme-corp"])
}

func TestProvisionSucceedsDespiteBestEffortFailures(t *testing.T) {
	fake := newFakeMessaging()
	fake.inviteErr = sentinel.ErrUnavailable
	fake.postErr = sentinel.ErrUnavailable
	fake.lookupErr = errors.New("rate limited")
	svc := newService(fake, []string{"U-TEAM1"})

	result, err := svc.Provision(context.Background(), Request{
		ChannelName: "Acme Corp",
		UserEmail:   "jane@acme.com",
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "C-acme-corp", result.ChannelID)
}

func TestProvisionRejectsUnsanitizableName(t *testing.T) {
	svc := newService(newFakeMessaging(), nil)

	_, err := svc.Provision(context.Background(), Request{ChannelName: "!!!"})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestWelcomeTextDefaults(t *testing.T) {
	text := welcomeText(Request{})
	assert.Contains(t, text, "*Business:* Not provided")
	assert.Contains(t, text, "*Contact:* Not provided")
	assert.Contains(t, text, "*Email:* Not provided")
}

func TestWelcomeTextDerivesContactFromEmail(t *testing.T) {
	text := welcomeText(Request{UserEmail: "jane.doe@acme.com"})
	assert.Contains(t, text, "*Contact:* Jane Doe")
}

func TestSendMessagePrefersBlocks(t *testing.T) {
	fake := newFakeMessaging()
	svc := newService(fake, nil)

	ts, err := svc.SendMessage(context.Background(), "C-1", "ignored", json.RawMessage(`[{"type":"section"}]`))

	require.NoError(t, err)
	assert.Equal(t, "1700000000.000200", ts)
	assert.Equal(t, []string{"C-1: [blocks]"}, fake.posted)
}

func TestSendHelpMessagePostsToConfiguredChannel(t *testing.T) {
	fake := newFakeMessaging()
	svc := newService(fake, nil)

	err := svc.SendHelpMessage(context.Background(), HelpRequest{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@acme.com",
		Message:   "I can't log in",
	})

	require.NoError(t, err)
	require.Len(t, fake.posted, 1)
	assert.Contains(t, fake.posted[0], "C-HELP")
	assert.Contains(t, fake.posted[0], "Jane Doe")
	assert.Contains(t, fake.posted[0], "I can't log in")
}

func TestSendHelpMessageWithoutConfiguredChannel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(newFakeMessaging(), nil, "", logger, nil)

	err := svc.SendHelpMessage(context.Background(), HelpRequest{Email: "jane@acme.com"})

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

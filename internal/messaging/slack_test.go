package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboardly/pkg/platform/sentinel"
)

type fakeSlackAPI struct {
	createErr  error
	pages      [][]slack.Channel
	pageIdx    int
	inviteErr  error
	lookupErr  error
	lookupUser *slack.User
	postErr    error
	invited    [][]string
}

func (f *fakeSlackAPI) CreateConversationContext(_ context.Context, params slack.CreateConversationParams) (*slack.Channel, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	ch := &slack.Channel{}
	ch.ID = "C-" + params.ChannelName
	ch.Name = params.ChannelName
	return ch, nil
}

func (f *fakeSlackAPI) GetConversationsContext(_ context.Context, _ *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	if f.pageIdx >= len(f.pages) {
		return nil, "", nil
	}
	page := f.pages[f.pageIdx]
	f.pageIdx++
	next := ""
	if f.pageIdx < len(f.pages) {
		next = "cursor"
	}
	return page, next, nil
}

func (f *fakeSlackAPI) InviteUsersToConversationContext(_ context.Context, _ string, users ...string) (*slack.Channel, error) {
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	f.invited = append(f.invited, users)
	return &slack.Channel{}, nil
}

func (f *fakeSlackAPI) GetUserByEmailContext(_ context.Context, _ string) (*slack.User, error) {
	return f.lookupUser, f.lookupErr
}

func (f *fakeSlackAPI) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	if f.postErr != nil {
		return "", "", f.postErr
	}
	return channelID, "1700000000.000100", nil
}

func newClient(api *fakeSlackAPI) *SlackClient {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSlack("xoxb-test", logger, WithAPI(api))
}

func TestCreateChannelNameTakenMapsToConflict(t *testing.T) {
	client := newClient(&fakeSlackAPI{createErr: errors.New("name_taken")})

	_, err := client.CreateChannel(context.Background(), "acme-corp")

	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestCreateChannelReturnsUpstreamNameAndID(t *testing.T) {
	client := newClient(&fakeSlackAPI{})

	ch, err := client.CreateChannel(context.Background(), "acme-corp")

	require.NoError(t, err)
	assert.Equal(t, "C-acme-corp", ch.ID)
	assert.Equal(t, "acme-corp", ch.Name)
}

func TestListChannelsFollowsCursor(t *testing.T) {
	api := &fakeSlackAPI{}
	page1 := slack.Channel{}
	page1.ID, page1.Name = "C1", "one"
	page2 := slack.Channel{}
	page2.ID, page2.Name = "C2", "two"
	api.pages = [][]slack.Channel{{page1}, {page2}}
	client := newClient(api)

	channels, err := client.ListChannels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Channel{{ID: "C1", Name: "one"}, {ID: "C2", Name: "two"}}, channels)
}

func TestInviteUsersToleratesAlreadyInChannel(t *testing.T) {
	client := newClient(&fakeSlackAPI{inviteErr: errors.New("already_in_channel")})

	err := client.InviteUsers(context.Background(), "C1", []string{"U1"})

	assert.NoError(t, err)
}

func TestInviteUsersSkipsEmptyList(t *testing.T) {
	api := &fakeSlackAPI{}
	client := newClient(api)

	require.NoError(t, client.InviteUsers(context.Background(), "C1", nil))
	assert.Empty(t, api.invited)
}

func TestLookupUserByEmailNotFound(t *testing.T) {
	client := newClient(&fakeSlackAPI{lookupErr: errors.New("users_not_found")})

	_, err := client.LookupUserByEmail(context.Background(), "nobody@acme.com")

	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestLookupUserByEmailMapsProfile(t *testing.T) {
	u := &slack.User{ID: "U1", Name: "jane", RealName: "Jane Doe"}
	u.Profile.Email = "jane@acme.com"
	client := newClient(&fakeSlackAPI{lookupUser: u})

	user, err := client.LookupUserByEmail(context.Background(), "jane@acme.com")

	require.NoError(t, err)
	assert.Equal(t, User{ID: "U1", Name: "jane", RealName: "Jane Doe", Email: "jane@acme.com"}, user)
}

func TestPostMessageReturnsTimestamp(t *testing.T) {
	client := newClient(&fakeSlackAPI{})

	ts, err := client.PostMessage(context.Background(), "C1", "hello")

	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)
}

func TestPostBlocksRejectsMalformedPayload(t *testing.T) {
	client := newClient(&fakeSlackAPI{})

	_, err := client.PostBlocks(context.Background(), "C1", json.RawMessage(`{not json`))

	assert.Error(t, err)
}

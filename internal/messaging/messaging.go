// Package messaging wraps the team-messaging platform API behind a small
// interface so the provisioner and handlers stay testable without network
// access.
package messaging

import (
	"context"
	"encoding/json"
)

// Channel is a messaging-platform channel.
type Channel struct {
	ID   string
	Name string
}

// User is a messaging-platform member.
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
}

// Client is the surface the relay needs from the messaging platform.
//
// Implementations translate platform error strings into pkg/platform/sentinel
// errors: ErrConflict for a taken channel name, ErrNotFound for an unknown
// email, ErrUnavailable for transport failures.
type Client interface {
	CreateChannel(ctx context.Context, name string) (Channel, error)
	ListChannels(ctx context.Context) ([]Channel, error)
	InviteUsers(ctx context.Context, channelID string, userIDs []string) error
	LookupUserByEmail(ctx context.Context, email string) (User, error)
	PostMessage(ctx context.Context, channelID, text string) (string, error)
	PostBlocks(ctx context.Context, channelID string, blocks json.RawMessage) (string, error)
}

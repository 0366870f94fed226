package handler

import (
	"encoding/json"
	"strings"

	dErrors "onboardly/pkg/domain-errors"
)

// CreateChannelRequest is the body for POST /api/create-slack-channel.
type CreateChannelRequest struct {
	ChannelName  string `json:"channelName"`
	BusinessName string `json:"businessName,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	ClientName   string `json:"clientName,omitempty"`
}

func (r *CreateChannelRequest) Validate() error {
	r.ChannelName = strings.TrimSpace(r.ChannelName)
	if r.ChannelName == "" {
		return dErrors.New(dErrors.CodeValidation, "channelName is required")
	}
	r.UserEmail = strings.TrimSpace(r.UserEmail)
	return nil
}

// SendMessageRequest is the body for POST /api/send-slack-message. Exactly one
// of message and blocks must be present.
type SendMessageRequest struct {
	ChannelID string          `json:"channelId"`
	Message   string          `json:"message,omitempty"`
	Blocks    json.RawMessage `json:"blocks,omitempty"`
}

func (r *SendMessageRequest) Validate() error {
	r.ChannelID = strings.TrimSpace(r.ChannelID)
	if r.ChannelID == "" {
		return dErrors.New(dErrors.CodeValidation, "channelId is required")
	}
	if r.Message == "" && len(r.Blocks) == 0 {
		return dErrors.New(dErrors.CodeValidation, "either message or blocks is required")
	}
	return nil
}

// HelpMessageRequest is the body for POST /send-slack-help-message. The
// message field accepts both "message" and the legacy "question" key.
type HelpMessageRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Message      string `json:"message,omitempty"`
	Question     string `json:"question,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BusinessName string `json:"businessName,omitempty"`
}

func (r *HelpMessageRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "firstName is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "lastName is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Body() == "" {
		return dErrors.New(dErrors.CodeValidation, "either message or question is required")
	}
	return nil
}

// Body returns the submission text, preferring "message" over "question".
func (r *HelpMessageRequest) Body() string {
	if strings.TrimSpace(r.Message) != "" {
		return strings.TrimSpace(r.Message)
	}
	return strings.TrimSpace(r.Question)
}

package slack

import (
	"context"

	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
)

// Service provides interface to the Slack Web API
type Service interface {
	interfaces.ChatPoster

	// BotIdentity returns the user the bot token belongs to. The result is
	// cached for the lifetime of the service instance.
	BotIdentity(ctx context.Context) (*Identity, error)
}

// Identity is the Slack user behind a token
type Identity struct {
	UserID string
	User   string
	BotID  string
	TeamID string
}

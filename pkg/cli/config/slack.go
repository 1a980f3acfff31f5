package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/atlas/pkg/service/slack"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	tokens        []string
	signingSecret string
	botToken      string
	botName       string
	botUserID     string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "slack-token",
			Usage:       "Verification token of outgoing webhooks and slash commands (repeatable)",
			Category:    "Slack",
			Destination: &x.tokens,
			Sources:     cli.EnvVars("ATLAS_SLACK_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (enables the Events API endpoint)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("ATLAS_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (for replies to Events API messages)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("ATLAS_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-name",
			Usage:       "Sender name whose messages are ignored",
			Category:    "Slack",
			Value:       usecase.DefaultBotName,
			Destination: &x.botName,
			Sources:     cli.EnvVars("ATLAS_SLACK_BOT_NAME"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-user-id",
			Usage:       "Sender user ID whose messages are ignored (resolved from the bot token when empty)",
			Category:    "Slack",
			Destination: &x.botUserID,
			Sources:     cli.EnvVars("ATLAS_SLACK_BOT_USER_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tokens.count", len(x.tokens)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("bot-name", x.botName),
		slog.String("bot-user-id", x.botUserID),
	)
}

// Validate checks that at least one inbound surface is usable
func (x *Slack) Validate() error {
	if len(x.tokens) == 0 && x.signingSecret == "" {
		return goerr.Wrap(ErrMissingFlag, "set --slack-token or --slack-signing-secret", goerr.V(FlagKey, "slack-token"))
	}
	if x.signingSecret != "" && x.botToken == "" {
		return goerr.Wrap(ErrMissingFlag, "--slack-signing-secret requires --slack-bot-token", goerr.V(FlagKey, "slack-bot-token"))
	}
	return nil
}

// Authenticator returns the token gate of webhooks and slash commands
func (x *Slack) Authenticator() *usecase.TokenAuthenticator {
	return usecase.NewTokenAuthenticator(x.tokens...)
}

// ConfigureService creates the Slack Web API client, or nil without a bot token
func (x *Slack) ConfigureService(opts ...slacksvc.Option) (slacksvc.Service, error) {
	if x.botToken == "" {
		return nil, nil
	}

	svc, err := slacksvc.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return svc, nil
}

// BotName returns the sender name of the bot
func (x *Slack) BotName() string {
	return x.botName
}

// BotUserID returns the configured bot user ID
func (x *Slack) BotUserID() string {
	return x.botUserID
}

// IsEventsConfigured checks if the Events API endpoint is enabled
func (x *Slack) IsEventsConfigured() bool {
	return x.signingSecret != ""
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

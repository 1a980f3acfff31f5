package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/cli/config"
	httpctrl "github.com/secmon-lab/atlas/pkg/controller/http"
	"github.com/secmon-lab/atlas/pkg/service/slack"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var mentionCfg mentionConfig
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ATLAS_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, mentionCfg.flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving Slack webhooks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := slackCfg.Validate(); err != nil {
				return err
			}
			logging.Default().Info("Slack configuration", "slack", slackCfg)

			ucOpts := []usecase.Option{
				usecase.WithAuthenticator(slackCfg.Authenticator()),
				usecase.WithBotName(slackCfg.BotName()),
			}

			slackSvc, err := slackCfg.ConfigureService()
			if err != nil {
				return err
			}
			if slackSvc != nil {
				ucOpts = append(ucOpts, usecase.WithChatPoster(slackSvc))

				botUserID, err := resolveBotUserID(ctx, slackSvc, slackCfg.BotUserID())
				if err != nil {
					return err
				}
				ucOpts = append(ucOpts, usecase.WithBotUserID(botUserID))
			}

			uc, repo, err := mentionCfg.build(ctx, ucOpts...)
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			var httpOpts []httpctrl.Options
			if slackCfg.IsEventsConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithSlackEvents(slackCfg.SigningSecret()))
				logging.Default().Info("Slack Events API endpoint enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// resolveBotUserID returns configured when set, otherwise asks Slack who the
// bot token belongs to
func resolveBotUserID(ctx context.Context, svc slack.Service, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	identity, err := svc.BotIdentity(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve bot user ID")
	}
	logging.Default().Info("Resolved Slack bot identity", "user_id", identity.UserID, "user", identity.User)
	return identity.UserID, nil
}

package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/service/jira"
	"github.com/urfave/cli/v3"
)

// Jira holds CLI flags for the issue tracker connection
type Jira struct {
	url      string
	username string
	token    string
	timeout  time.Duration
}

func (x *Jira) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jira-url",
			Usage:       "Base URL of Jira (e.g. https://example.atlassian.net)",
			Category:    "Jira",
			Sources:     cli.EnvVars("ATLAS_JIRA_URL"),
			Destination: &x.url,
		},
		&cli.StringFlag{
			Name:        "jira-username",
			Usage:       "Jira user for basic auth",
			Category:    "Jira",
			Sources:     cli.EnvVars("ATLAS_JIRA_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "jira-token",
			Usage:       "Jira API token or password",
			Category:    "Jira",
			Sources:     cli.EnvVars("ATLAS_JIRA_TOKEN"),
			Destination: &x.token,
		},
		&cli.DurationFlag{
			Name:        "jira-timeout",
			Usage:       "Timeout of one Jira API call",
			Category:    "Jira",
			Value:       jira.DefaultTimeout,
			Sources:     cli.EnvVars("ATLAS_JIRA_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

func (x Jira) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.url),
		slog.String("username", x.username),
		slog.Int("token.len", len(x.token)),
		slog.Duration("timeout", x.timeout),
	)
}

// Configure creates the issue tracker client
func (x *Jira) Configure() (interfaces.IssueTracker, error) {
	if x.url == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "jira URL is required", goerr.V(FlagKey, "jira-url"))
	}

	tracker, err := jira.New(x.url, x.username, x.token, jira.WithTimeout(x.timeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create jira client", goerr.V("url", x.url))
	}
	return tracker, nil
}

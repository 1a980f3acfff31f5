package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Dedup holds CLI flags for the blackout of repeated mentions
type Dedup struct {
	blackoutSeconds int
	failurePolicy   string
}

func (x *Dedup) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "blackout",
			Usage:       "Seconds during which an issue is not reported again in the same channel",
			Category:    "Dedup",
			Value:       int(usecase.DefaultBlackout / time.Second),
			Sources:     cli.EnvVars("ATLAS_BLACKOUT"),
			Destination: &x.blackoutSeconds,
		},
		&cli.StringFlag{
			Name:        "dedup-failure-policy",
			Usage:       "Behaviour when the dedup store fails: open (reply anyway) or closed (stay silent)",
			Category:    "Dedup",
			Value:       types.DedupFailOpen.String(),
			Sources:     cli.EnvVars("ATLAS_DEDUP_FAILURE_POLICY"),
			Destination: &x.failurePolicy,
		},
	}
}

func (x Dedup) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("blackout", x.blackoutSeconds),
		slog.String("failure-policy", x.failurePolicy),
	)
}

// Blackout returns the configured blackout period
func (x *Dedup) Blackout() time.Duration {
	return time.Duration(x.blackoutSeconds) * time.Second
}

// Configure creates the dedup cache over repo
func (x *Dedup) Configure(repo interfaces.SeenRepository) (*usecase.DedupCache, error) {
	if x.blackoutSeconds <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "blackout must be positive", goerr.V("blackout", x.blackoutSeconds))
	}

	policy := types.DedupFailurePolicy(x.failurePolicy)
	if err := policy.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V("policy", x.failurePolicy))
	}

	return usecase.NewDedupCache(repo, x.Blackout(), usecase.WithFailurePolicy(policy)), nil
}

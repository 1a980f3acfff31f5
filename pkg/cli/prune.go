package cli

import (
	"context"
	"time"

	"github.com/secmon-lab/atlas/pkg/cli/config"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdPrune() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "prune",
		Usage: "Delete expired seen records (no-op for redis, which expires keys natively)",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(repo)

			// Blackout does not matter for deletion; records carry their own expiry
			dedup := usecase.NewDedupCache(repo.Seen(), usecase.DefaultBlackout)
			n, err := dedup.Prune(ctx, time.Now())
			if err != nil {
				return err
			}

			logging.Default().Info("Pruned expired seen records", "deleted", n, "backend", repoCfg.Backend())
			return nil
		},
	}
}

package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/atlas/pkg/cli/config"
	"github.com/secmon-lab/atlas/pkg/domain/interfaces"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/secmon-lab/atlas/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// mentionConfig groups the flags every command answering mentions needs
type mentionConfig struct {
	jira   config.Jira
	repo   config.Repository
	dedup  config.Dedup
	bridge config.Bridge
}

func (x *mentionConfig) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.jira.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.dedup.Flags()...)
	flags = append(flags, x.bridge.Flags()...)
	return flags
}

// build creates the use cases. The caller is responsible for closing the
// returned repository.
func (x *mentionConfig) build(ctx context.Context, opts ...usecase.Option) (*usecase.UseCases, interfaces.Repository, error) {
	tracker, err := x.jira.Configure()
	if err != nil {
		return nil, nil, err
	}

	bridgeOpts, err := x.bridge.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load bridge configuration")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	dedup, err := x.dedup.Configure(repo.Seen())
	if err != nil {
		closeRepository(repo)
		return nil, nil, err
	}

	logging.Default().Info("Mention configuration",
		"jira", x.jira,
		"repository", x.repo,
		"dedup", x.dedup,
		"bridge", x.bridge,
	)

	return usecase.New(tracker, dedup, append(bridgeOpts, opts...)...), repo, nil
}

func closeRepository(repo interfaces.Repository) {
	if err := repo.Close(); err != nil {
		logging.Default().Error("failed to close repository", "error", err.Error())
	}
}

package config

import (
	"log/slog"
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"github.com/secmon-lab/atlas/pkg/usecase"
	"github.com/urfave/cli/v3"
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z]+$`)

// BridgeConfig is the optional TOML file tuning which mentions get a reply
type BridgeConfig struct {
	Projects    []string `toml:"projects"`
	IgnoreKeys  []string `toml:"ignore_keys"`
	Separator   *string  `toml:"separator"`
	Concurrency int      `toml:"concurrency"`
}

// Validate checks if the BridgeConfig is valid
func (b *BridgeConfig) Validate() error {
	for _, p := range b.Projects {
		if !projectKeyPattern.MatchString(p) {
			return goerr.Wrap(ErrInvalidConfig, "project key must be upper case letters", goerr.V("project", p))
		}
	}
	for _, k := range b.IgnoreKeys {
		if err := types.IssueKey(k).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid ignored key", goerr.V("key", k))
		}
	}
	if b.Separator != nil && *b.Separator == "" {
		return goerr.Wrap(ErrInvalidConfig, "separator cannot be empty")
	}
	if b.Concurrency < 0 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency cannot be negative", goerr.V("concurrency", b.Concurrency))
	}
	return nil
}

// Options converts the file into use case options
func (b *BridgeConfig) Options() []usecase.Option {
	var opts []usecase.Option
	if len(b.Projects) > 0 {
		opts = append(opts, usecase.WithProjects(b.Projects...))
	}
	if len(b.IgnoreKeys) > 0 {
		keys := make([]types.IssueKey, len(b.IgnoreKeys))
		for i, k := range b.IgnoreKeys {
			keys[i] = types.IssueKey(k)
		}
		opts = append(opts, usecase.WithIgnoreKeys(keys...))
	}
	if b.Separator != nil {
		opts = append(opts, usecase.WithSeparator(*b.Separator))
	}
	if b.Concurrency > 0 {
		opts = append(opts, usecase.WithConcurrency(b.Concurrency))
	}
	return opts
}

// LoadBridgeConfig loads the bridge configuration from a TOML file
func LoadBridgeConfig(path string) (*BridgeConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config BridgeConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Bridge holds the CLI flag pointing at the optional bridge configuration
type Bridge struct {
	path string
}

func (x *Bridge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the bridge TOML config (projects, ignore_keys, separator, concurrency)",
			Sources:     cli.EnvVars("ATLAS_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x Bridge) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure loads the file if one is set and returns the resulting options
func (x *Bridge) Configure() ([]usecase.Option, error) {
	if x.path == "" {
		return nil, nil
	}

	cfg, err := LoadBridgeConfig(x.path)
	if err != nil {
		return nil, err
	}
	return cfg.Options(), nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/urlrelay/internal/config"
	"github.com/atlanticdynamic/urlrelay/internal/config/logs"
	"github.com/atlanticdynamic/urlrelay/internal/logging"
	"github.com/urfave/cli/v3"
)

var errConfigRequired = errors.New(
	"config file path required (use the --config flag, or provide the config file as positional argument)",
)

func newConfigFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML configuration file",
	}
}

// stdout is where commands print their results.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// configPath reads --config, falling back to the first positional argument.
func configPath(cmd *cli.Command) (string, error) {
	if path := cmd.String("config"); path != "" {
		return path, nil
	}
	if cmd.Args().Len() > 0 {
		return cmd.Args().Get(0), nil
	}
	return "", errConfigRequired
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the configured handler as the slog default. The
// --log-level flag wins over the file.
func setupLogger(cmd *cli.Command, cfg logs.Config) (slog.Handler, io.Closer, error) {
	if override := cmd.String("log-level"); override != "" {
		level, err := logs.LevelFromString(override)
		if err != nil {
			return nil, nil, err
		}
		cfg.Level = level
	}
	return logging.SetupLogger(cfg)
}

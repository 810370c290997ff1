package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/atlanticdynamic/urlrelay/internal/config"
	"github.com/urfave/cli/v3"
)

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"lint"},
		Usage:   "Validate a configuration file",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.BoolFlag{
				Name:    "tree",
				Aliases: []string{"t"},
				Usage:   "Show detailed tree view of the validated configuration",
			},
		},
		Action: validateAction,
	}
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	path, err := configPath(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	fmt.Fprintf(out, "Configuration file %s is valid\n", path)
	if cmd.Bool("tree") {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cfg)
		return nil
	}
	fmt.Fprintln(out, renderConfigSummary(path, cfg))
	return nil
}

// renderConfigSummary creates a formatted summary string for the configuration
func renderConfigSummary(path string, cfg *config.Config) string {
	var summary strings.Builder

	summary.WriteString("\nConfig Summary:\n")
	summary.WriteString(fmt.Sprintf("- Path: %s\n", path))
	summary.WriteString(fmt.Sprintf("- Mode: %s\n", cfg.Deployment.Mode))
	summary.WriteString(fmt.Sprintf("- URL protocol: %s\n", cfg.Product.URLProtocol))
	summary.WriteString(fmt.Sprintf("- Mailbox: %s\n", cfg.Mailbox.Listen))
	if cfg.Bridge.Enabled() {
		summary.WriteString(fmt.Sprintf("- Bridge: %s\n", cfg.Bridge.Listen))
	}
	summary.WriteString("\nUse --tree for a more detailed view of the config.")

	return summary.String()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/prepchat/internal/config"
	"github.com/jeranaias/prepchat/internal/endpoint"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	endpoint   string
}

// NewRootCommand builds the prepchat command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "prepchat [text]",
		Short: "Chat with an interview preparation assistant",
		Long: "prepchat is a terminal client for an interview preparation chatbot.\n" +
			"Without arguments it opens an interactive chat. With text, or when\n" +
			"used in a pipe, it sends one message and prints the reply.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 || !interactive(cmd.InOrStdin(), cmd.OutOrStdout()) {
				return runAsk(cmd, opts, args)
			}
			return runTUI(cmd, opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "configuration file (default ~/.prepchat/config.toml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "endpoint URL (overrides config)")

	root.AddCommand(newAskCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// resolveConfigPath returns the --config value or the default path.
func (o *globalOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPath()
}

// loadConfig loads the configuration and applies the --endpoint flag.
func (o *globalOptions) loadConfig() (*config.Config, string, error) {
	path, err := o.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, "", err
	}
	if o.endpoint != "" {
		cfg.Endpoint.URL = o.endpoint
		if err := cfg.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid --endpoint: %w", err)
		}
	}
	return cfg, path, nil
}

// newClient builds the endpoint client for cfg.
func newClient(cfg *config.Config) *endpoint.Client {
	clientCfg := endpoint.DefaultConfig()
	clientCfg.URL = cfg.Endpoint.URL
	clientCfg.UserAgent = userAgent(cfg.Endpoint.UserAgent)
	return endpoint.NewClientWithConfig(clientCfg)
}

// userAgent appends the version to the configured product name.
func userAgent(base string) string {
	if base == "" {
		base = endpoint.DefaultUserAgent
	}
	if strings.Contains(base, "/") {
		return base
	}
	return base + "/" + Version
}

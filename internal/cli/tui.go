// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/prepchat/internal/config"
	"github.com/jeranaias/prepchat/internal/endpoint"
	"github.com/jeranaias/prepchat/internal/logging"
	"github.com/jeranaias/prepchat/internal/transcript"
	"github.com/jeranaias/prepchat/internal/ui/chat"
	"github.com/jeranaias/prepchat/internal/ui/styles"
)

// runTUI runs the interactive chat until the user quits. The TUI owns the
// terminal, so logs always go to a file.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	cfg, path, err := opts.loadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if logFile, err = config.DefaultLogFile(); err != nil {
			return err
		}
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	client := newClient(cfg)
	bridge := chat.NewBridge()
	ctrl := transcript.New(client, transcript.Options{
		Greeting:      cfg.Chat.Greeting,
		Apology:       cfg.Chat.Apology,
		MaxInputChars: cfg.Chat.MaxInputChars,
		Publish:       bridge.Publish,
		Logger:        &logger,
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view := chat.New(ctrl, styles.NewTheme(cfg.UI.Theme), chat.Options{
		Endpoint:      client.URL(),
		Markdown:      cfg.UI.Markdown,
		MaxInputChars: cfg.Chat.MaxInputChars,
		Context:       ctx,
	})
	program := tea.NewProgram(view,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	bridge.Attach(program)

	logger.Info().Str("endpoint", client.URL()).Str("version", Version).Msg("starting chat")

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		watchConfig(egCtx, path, opts.endpoint != "", client, bridge, logger)
		return nil
	})

	err = eg.Wait()
	ctrl.Cancel()
	return err
}

// watchConfig applies endpoint changes from the config file to the client.
// The --endpoint flag pins the URL, so reloads leave it alone. A missing
// config directory or watcher failure only disables reloading.
func watchConfig(ctx context.Context, path string, pinned bool, client *endpoint.Client, bridge *chat.Bridge, logger zerolog.Logger) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		logger.Debug().Str("path", path).Msg("config directory missing, not watching")
		return
	}

	err := config.Watch(ctx, path, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("config reload failed")
			return
		}
		if pinned || cfg.Endpoint.URL == client.URL() {
			return
		}
		client.SetURL(cfg.Endpoint.URL)
		logger.Info().Str("endpoint", cfg.Endpoint.URL).Msg("endpoint updated from config")
		bridge.Send(chat.EndpointChangedMsg{URL: cfg.Endpoint.URL})
	})
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("config watcher stopped")
	}
}

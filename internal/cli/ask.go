// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/prepchat/internal/logging"
	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/transcript"
)

// maxStdinBytes bounds a message read from stdin.
const maxStdinBytes = 1 << 20

// errReplyFailed is returned when the reply errored. The apology has
// already been printed as the reply.
var errReplyFailed = errors.New("reply failed")

func newAskCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [text]",
		Short: "Send one message and stream the reply to stdout",
		Example: `  prepchat ask "How should I prepare for a system design interview?"
  echo "What is Big-O notation?" | prepchat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args)
		},
	}
}

// runAsk submits one user turn and prints reply fragments as they arrive.
func runAsk(cmd *cobra.Command, opts *globalOptions, args []string) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}

	text, err := askText(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	// One-shot mode always logs to stderr; log.file applies to the chat UI.
	stderr := cmd.ErrOrStderr()
	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Console: stderr,
		NoColor: !isTerminal(stderr),
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	printer := newStreamPrinter(cmd.OutOrStdout())
	ctrl := transcript.New(newClient(cfg), transcript.Options{
		Greeting:      cfg.Chat.Greeting,
		Apology:       cfg.Chat.Apology,
		MaxInputChars: cfg.Chat.MaxInputChars,
		Publish:       printer.Publish,
		Logger:        &logger,
	})

	res := ctrl.Submit(cmd.Context(), text)
	if err := printer.Finish(res); err != nil {
		return err
	}

	switch res.Outcome {
	case transcript.OutcomeRejected:
		return fmt.Errorf("message not sent: %w", res.Err)
	case transcript.OutcomeErrored:
		return fmt.Errorf("%w: %v", errReplyFailed, res.Err)
	}
	return nil
}

// askText joins the arguments, or reads stdin when there are none and stdin
// is not a terminal.
func askText(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("nothing to ask: pass the message as arguments or on stdin")
	}

	data, err := io.ReadAll(io.LimitReader(in, maxStdinBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("nothing to ask: stdin was empty")
	}
	return string(data), nil
}

// =============================================================================
// STREAM PRINTER
// =============================================================================

// streamPrinter writes the growth of the in-flight assistant turn. Each
// snapshot extends the previous one, so only the new suffix is written.
type streamPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed string
	err     error
}

func newStreamPrinter(w io.Writer) *streamPrinter {
	return &streamPrinter{w: w}
}

// Publish receives controller snapshots.
func (p *streamPrinter) Publish(s model.Session) {
	if !s.Busy {
		return
	}
	last, ok := s.Transcript.Last()
	if !ok || last.Role != model.RoleAssistant {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil || !strings.HasPrefix(last.Content, p.printed) {
		return
	}
	if suffix := last.Content[len(p.printed):]; suffix != "" {
		if _, err := io.WriteString(p.w, suffix); err != nil {
			p.err = err
			return
		}
		p.printed = last.Content
	}
}

// Finish completes the output for res. A failed reply is replaced by the
// apology on its own line.
func (p *streamPrinter) Finish(res transcript.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return fmt.Errorf("failed to write reply: %w", p.err)
	}
	if res.Outcome == transcript.OutcomeRejected {
		return nil
	}

	var tail string
	switch {
	case p.printed == res.Content:
	case res.Outcome == transcript.OutcomeCompleted && strings.HasPrefix(res.Content, p.printed):
		tail = res.Content[len(p.printed):]
	case p.printed != "":
		tail = "\n" + res.Content
	default:
		tail = res.Content
	}
	if !strings.HasSuffix(p.printed+tail, "\n") {
		tail += "\n"
	}

	if _, err := io.WriteString(p.w, tail); err != nil {
		return fmt.Errorf("failed to write reply: %w", err)
	}
	p.printed += tail
	return nil
}

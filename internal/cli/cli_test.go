// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/prepchat/internal/config"
	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/transcript"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PREPCHAT_ENDPOINT", "PREPCHAT_LOG_LEVEL", "PREPCHAT_LOG_FILE", "PREPCHAT_NO_MARKDOWN"} {
		t.Setenv(k, "")
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the command tree with the given stdin and arguments.
func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	clearEnv(t)

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return runResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// streamServer replies with fragments, flushing after each one.
func streamServer(t *testing.T, fragments ...string) (*httptest.Server, *[]model.Turn) {
	t.Helper()
	var got []model.Turn
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher, _ := w.(http.Flusher)
		for _, f := range fragments {
			_, _ = w.Write([]byte(f))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func configFlag(t *testing.T) string {
	return filepath.Join(t.TempDir(), "config.toml")
}

// =============================================================================
// ASK TESTS
// =============================================================================

func TestAsk_StreamsReply(t *testing.T) {
	srv, got := streamServer(t, "Big", "-O notation", " describes...")

	res := run(t, "", "--config", configFlag(t), "--endpoint", srv.URL, "ask", "What", "is", "Big-O?")
	require.NoError(t, res.err)
	assert.Equal(t, "Big-O notation describes...\n", res.stdout)

	require.Len(t, *got, 2)
	assert.Equal(t, model.RoleAssistant, (*got)[0].Role)
	assert.Equal(t, model.NewUserTurn("What is Big-O?"), (*got)[1])
}

func TestAsk_ReadsStdin(t *testing.T) {
	srv, got := streamServer(t, "ok")

	res := run(t, "  Tell me about STAR answers \n", "--config", configFlag(t), "--endpoint", srv.URL, "ask")
	require.NoError(t, res.err)
	assert.Equal(t, "ok\n", res.stdout)

	require.Len(t, *got, 2)
	assert.Equal(t, "Tell me about STAR answers", (*got)[1].Content)
}

func TestAsk_EmptyStdin(t *testing.T) {
	res := run(t, "   ", "--config", configFlag(t), "ask")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "nothing to ask")
	assert.Empty(t, res.stdout)
}

func TestAsk_ServerErrorPrintsApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	res := run(t, "", "--config", configFlag(t), "--endpoint", srv.URL, "ask", "hello")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, errReplyFailed))
	assert.Equal(t, transcript.DefaultApology+"\n", res.stdout)
	assert.NotContains(t, res.stdout, "model offline", "internal detail stays out of the reply")
}

func TestAsk_ApologyFromConfig(t *testing.T) {
	path := configFlag(t)
	require.NoError(t, os.WriteFile(path, []byte("[chat]\napology = \"Try again soon.\"\n"), 0600))

	res := run(t, "", "--config", path, "--endpoint", "http://127.0.0.1:1/api/chat", "ask", "hello")
	require.Error(t, res.err)
	assert.Equal(t, "Try again soon.\n", res.stdout)
}

func TestAsk_TooLongRejected(t *testing.T) {
	path := configFlag(t)
	require.NoError(t, os.WriteFile(path, []byte("[chat]\nmax_input_chars = 3\n"), 0600))

	res := run(t, "", "--config", path, "ask", "far too long")
	require.Error(t, res.err)
	assert.True(t, errors.Is(res.err, transcript.ErrInputTooLong))
	assert.Empty(t, res.stdout)
}

func TestRoot_NonInteractiveRunsAsk(t *testing.T) {
	srv, _ := streamServer(t, "Hello!")

	res := run(t, "", "--config", configFlag(t), "--endpoint", srv.URL, "hi")
	require.NoError(t, res.err)
	assert.Equal(t, "Hello!\n", res.stdout)
}

func TestRoot_JoinsPositionalWords(t *testing.T) {
	srv, got := streamServer(t, "O(n)")

	res := run(t, "", "--config", configFlag(t), "--endpoint", srv.URL, "What", "is", "Big-O?")
	require.NoError(t, res.err)
	assert.Equal(t, "O(n)\n", res.stdout)
	require.Len(t, *got, 2)
	assert.Equal(t, "What is Big-O?", (*got)[1].Content)
}

func TestAsk_LogsToStderrEvenWithLogFile(t *testing.T) {
	srv, _ := streamServer(t, "ok")
	logPath := filepath.Join(t.TempDir(), "prepchat.log")
	path := configFlag(t)
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("[log]\nlevel = \"info\"\nfile = %q\n", logPath)), 0600))

	res := run(t, "", "--config", path, "--endpoint", srv.URL, "ask", "hello")
	require.NoError(t, res.err)
	assert.Equal(t, "ok\n", res.stdout)
	assert.Contains(t, res.stderr, "submission resolved")
	assert.NoFileExists(t, logPath)
}

func TestRoot_InvalidEndpointFlag(t *testing.T) {
	res := run(t, "", "--config", configFlag(t), "--endpoint", "ftp://example.com", "ask", "hi")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid --endpoint")
}

// =============================================================================
// CONFIG COMMAND TESTS
// =============================================================================

func TestConfigPath(t *testing.T) {
	path := configFlag(t)
	res := run(t, "", "--config", path, "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.stdout)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	res := run(t, "", "--config", path, "--endpoint", "https://prep.example.com/api/chat", "config", "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://prep.example.com/api/chat", cfg.Endpoint.URL)

	res = run(t, "", "--config", path, "config", "init")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already exists")

	res = run(t, "", "--config", path, "config", "init", "--force")
	require.NoError(t, res.err)

	res = run(t, "", "--config", path, "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "[endpoint]")
	assert.Contains(t, res.stdout, config.Default().Endpoint.URL)
}

// =============================================================================
// STREAM PRINTER TESTS
// =============================================================================

func busy(content string) model.Session {
	t := model.NewTranscript("").Append(model.NewUserTurn("q"), model.NewAssistantTurn(content))
	return model.Session{Transcript: t, Busy: true}
}

func TestStreamPrinter(t *testing.T) {
	tests := []struct {
		name      string
		snapshots []string
		result    transcript.Result
		want      string
	}{
		{
			name:      "completed",
			snapshots: []string{"", "Big", "Big-O"},
			result:    transcript.Result{Outcome: transcript.OutcomeCompleted, Content: "Big-O"},
			want:      "Big-O\n",
		},
		{
			name:      "completed with trailing newline",
			snapshots: []string{"Done.\n"},
			result:    transcript.Result{Outcome: transcript.OutcomeCompleted, Content: "Done.\n"},
			want:      "Done.\n",
		},
		{
			name:      "empty reply",
			snapshots: []string{""},
			result:    transcript.Result{Outcome: transcript.OutcomeCompleted},
			want:      "\n",
		},
		{
			name:      "errored before any fragment",
			snapshots: []string{"", "Sorry."},
			result:    transcript.Result{Outcome: transcript.OutcomeErrored, Content: "Sorry."},
			want:      "Sorry.\n",
		},
		{
			name:      "errored mid-stream",
			snapshots: []string{"", "Hel", "Sorry."},
			result:    transcript.Result{Outcome: transcript.OutcomeErrored, Content: "Sorry."},
			want:      "Hel\nSorry.\n",
		},
		{
			name:   "rejected",
			result: transcript.Result{Outcome: transcript.OutcomeRejected},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := newStreamPrinter(&buf)
			for _, s := range tt.snapshots {
				p.Publish(busy(s))
			}
			require.NoError(t, p.Finish(tt.result))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestStreamPrinter_IgnoresIdleSnapshots(t *testing.T) {
	var buf bytes.Buffer
	p := newStreamPrinter(&buf)

	idle := busy("greeting-like")
	idle.Busy = false
	p.Publish(idle)
	assert.Empty(t, buf.String())
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestUserAgent(t *testing.T) {
	old := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = old })

	assert.Equal(t, "prepchat/1.2.3", userAgent(""))
	assert.Equal(t, "acme/1.2.3", userAgent("acme"))
	assert.Equal(t, "acme/9", userAgent("acme/9"))
}

func TestAskText(t *testing.T) {
	text, err := askText([]string{"a", "b"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "a b", text)

	text, err = askText(nil, strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)
}

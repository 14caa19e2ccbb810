// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/prepchat/internal/endpoint"
	"github.com/jeranaias/prepchat/internal/model"
	"github.com/jeranaias/prepchat/internal/stream"
)

// DefaultApology replaces the in-flight reply when a submission fails.
const DefaultApology = "I'm sorry, but I encountered an error. Please try again later."

// Rejection reasons reported in Result.Err for OutcomeRejected.
var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrInputTooLong = errors.New("input is too long")
	ErrBusy         = errors.New("a reply is already in progress")
)

// =============================================================================
// COLLABORATORS AND OPTIONS
// =============================================================================

// Endpoint opens a reply stream for a transcript.
// *endpoint.Client satisfies this interface.
type Endpoint interface {
	OpenStream(ctx context.Context, turns []model.Turn, requestID string) (*endpoint.Response, error)
}

// PublishFunc receives every new session snapshot, in order.
// It is called synchronously from the goroutine that changed the state, so
// it must not call back into the Controller.
type PublishFunc func(model.Session)

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Greeting seeds the transcript (default: model.DefaultGreeting)
	Greeting string

	// Apology replaces the reply of a failed submission (default: DefaultApology)
	Apology string

	// MaxInputChars rejects longer inputs; 0 disables the limit.
	MaxInputChars int

	// Publish receives snapshots; nil disables publication.
	Publish PublishFunc

	// Logger receives internal error detail (default: disabled)
	Logger *zerolog.Logger

	// NewID generates submission IDs (default: uuid.NewString)
	NewID func() string
}

// Result describes how a call to Submit resolved.
type Result struct {
	ID      string
	Outcome Outcome
	// Err is the internal cause for Rejected and Errored outcomes. It is
	// never shown in the transcript.
	Err error

	// Content is the final assistant turn content.
	Content   string
	Fragments int
	Bytes     int64

	// FirstFragment is the time from submission to the first fragment.
	FirstFragment time.Duration
	Duration      time.Duration
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns one conversation and runs at most one submission at a time.
// All methods are safe for concurrent use.
type Controller struct {
	endpoint Endpoint
	opts     Options
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	transcript model.Transcript
	cancel     context.CancelFunc
	version    uint64

	publishMu sync.Mutex
	published uint64
}

// New creates a Controller whose transcript holds only the greeting.
func New(ep Endpoint, opts Options) *Controller {
	if opts.Apology == "" {
		opts.Apology = DefaultApology
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Controller{
		endpoint:   ep,
		opts:       opts,
		log:        logger.With().Str("component", "transcript").Logger(),
		state:      StateIdle,
		transcript: model.NewTranscript(opts.Greeting),
	}
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() model.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	return c.State().Busy()
}

// Submit sends userText and blocks until the reply is resolved.
//
// Empty (after trimming) or over-long input, or a call while another
// submission is in flight, is a no-op that returns OutcomeRejected. Otherwise
// the user turn and an empty assistant turn are appended in one snapshot, and
// the call returns once the reply has Completed or Errored and the controller
// is Idle again.
func (c *Controller) Submit(ctx context.Context, userText string) Result {
	text := strings.TrimSpace(userText)
	if text == "" {
		return Result{Outcome: OutcomeRejected, Err: ErrEmptyInput}
	}
	if c.opts.MaxInputChars > 0 && utf8.RuneCountInString(text) > c.opts.MaxInputChars {
		return Result{Outcome: OutcomeRejected, Err: ErrInputTooLong}
	}

	ctx, payload, ok := c.begin(ctx, text)
	if !ok {
		return Result{Outcome: OutcomeRejected, Err: ErrBusy}
	}
	defer c.release()

	res := Result{ID: c.opts.NewID()}
	start := time.Now()
	c.log.Debug().Str("id", res.ID).Int("turns", len(payload)).Msg("submission started")

	c.exchange(ctx, payload, &res, start)

	res.Duration = time.Since(start)
	c.logResult(res)
	return res
}

// begin atomically claims the controller, appends the user and placeholder
// turns and captures the outbound payload from that same transcript value.
func (c *Controller) begin(parent context.Context, text string) (context.Context, []model.Turn, bool) {
	c.mu.Lock()
	if err := checkTransition(c.state, StateSending); err != nil {
		c.mu.Unlock()
		return nil, nil, false
	}
	c.state = StateSending

	c.transcript = c.transcript.Append(model.NewUserTurn(text), model.NewAssistantTurn(""))
	payload := c.transcript.WithoutLast().Turns()

	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	c.publish(snap, v)
	return ctx, payload, true
}

// exchange opens the reply stream and folds it into the transcript.
// It resolves res to Completed or Errored.
func (c *Controller) exchange(ctx context.Context, payload []model.Turn, res *Result, start time.Time) {
	resp, err := c.endpoint.OpenStream(ctx, payload, res.ID)
	if err != nil {
		c.fail(res, err)
		return
	}
	dec := stream.OpenCharset(resp.Body, resp.Charset)
	defer dec.Close()

	if err := c.setState(StateStreaming); err != nil {
		c.fail(res, err)
		return
	}

	var acc strings.Builder
	for {
		fragment, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Fragments = dec.Fragments()
			res.Bytes = dec.BytesRead()
			c.fail(res, err)
			return
		}
		if acc.Len() == 0 {
			res.FirstFragment = time.Since(start)
		}
		acc.WriteString(fragment)
		c.fold(acc.String())
	}

	res.Fragments = dec.Fragments()
	res.Bytes = dec.BytesRead()
	c.complete(res, acc.String())
}

// fold publishes a snapshot whose last turn holds the accumulated reply.
func (c *Controller) fold(content string) {
	c.mu.Lock()
	c.transcript = c.transcript.ReplaceLast(content)
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	c.publish(snap, v)
}

// complete resolves the submission as Completed.
func (c *Controller) complete(res *Result, content string) {
	c.mu.Lock()
	if err := checkTransition(c.state, StateCompleted); err != nil {
		c.mu.Unlock()
		c.fail(res, err)
		return
	}
	c.state = StateCompleted
	c.transcript = c.transcript.ReplaceLast(content)
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	res.Outcome = OutcomeCompleted
	res.Content = content
	c.publish(snap, v)
}

// fail resolves the submission as Errored. The in-flight reply is replaced
// by the apology; the cause is kept in res for logging only.
func (c *Controller) fail(res *Result, cause error) {
	c.mu.Lock()
	if err := checkTransition(c.state, StateErrored); err != nil {
		c.log.Error().Err(err).Str("id", res.ID).Msg("cannot mark submission errored")
	} else {
		c.state = StateErrored
	}
	c.transcript = c.transcript.ReplaceLast(c.opts.Apology)
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	res.Outcome = OutcomeErrored
	res.Err = cause
	res.Content = c.opts.Apology
	c.publish(snap, v)
}

// release returns the controller to Idle. It runs deferred, so it also runs
// when the exchange panics.
func (c *Controller) release() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = StateIdle
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	c.publish(snap, v)
}

// setState moves to a new state and publishes.
func (c *Controller) setState(to State) error {
	c.mu.Lock()
	if err := checkTransition(c.state, to); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = to
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	c.publish(snap, v)
	return nil
}

// Cancel aborts the in-flight submission by cancelling its request context,
// which closes the reply body and unblocks the pending read. The submission
// resolves as Errored. Cancel returns false when nothing is in flight.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil || c.state == StateIdle {
		return false
	}
	c.cancel()
	return true
}

// Reset restores the greeting-only transcript. It fails with ErrBusy while a
// submission is in flight.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.transcript = model.NewTranscript(c.opts.Greeting)
	snap, v := c.bumpLocked()
	c.mu.Unlock()

	c.publish(snap, v)
	return nil
}

// =============================================================================
// PUBLICATION
// =============================================================================

// sessionLocked builds the current view. Caller must hold c.mu.
func (c *Controller) sessionLocked() model.Session {
	return model.Session{Transcript: c.transcript, Busy: c.state.Busy()}
}

// bumpLocked versions a new snapshot. Caller must hold c.mu.
func (c *Controller) bumpLocked() (model.Session, uint64) {
	c.version++
	return c.sessionLocked(), c.version
}

// publish delivers snap unless a newer snapshot was already delivered, so
// a renderer never moves backwards when publications race across goroutines.
func (c *Controller) publish(snap model.Session, version uint64) {
	if c.opts.Publish == nil {
		return
	}
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if version <= c.published {
		return
	}
	c.published = version
	c.opts.Publish(snap)
}

// logResult records the resolution with its internal error detail.
func (c *Controller) logResult(res Result) {
	var ev *zerolog.Event
	if res.Outcome != OutcomeErrored {
		ev = c.log.Info()
	} else {
		ev = c.log.Warn().Err(res.Err)
		var reqErr *endpoint.RequestError
		if errors.As(res.Err, &reqErr) {
			ev = ev.Str("kind", reqErr.Kind.String())
			if endpoint.IsStatus(reqErr) {
				ev = ev.Int("status", reqErr.StatusCode).Str("body", reqErr.Body)
			}
		}
	}
	ev.Str("id", res.ID).
		Stringer("outcome", res.Outcome).
		Int("fragments", res.Fragments).
		Int64("bytes", res.Bytes).
		Dur("first_fragment", res.FirstFragment).
		Dur("duration", res.Duration).
		Msg("submission resolved")
}

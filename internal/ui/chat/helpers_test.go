// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"

	"github.com/jeranaias/prepchat/internal/endpoint"
	"github.com/jeranaias/prepchat/internal/model"
)

// endpointFunc adapts a function to transcript.Endpoint.
type endpointFunc func(ctx context.Context, turns []model.Turn, requestID string) (*endpoint.Response, error)

func (f endpointFunc) OpenStream(ctx context.Context, turns []model.Turn, requestID string) (*endpoint.Response, error) {
	return f(ctx, turns, requestID)
}

// fragmentBody returns one fragment per Read call.
type fragmentBody struct {
	fragments []string
}

func newFragmentBody(fragments []string) io.ReadCloser {
	return &fragmentBody{fragments: fragments}
}

func (b *fragmentBody) Read(p []byte) (int, error) {
	if len(b.fragments) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.fragments[0])
	b.fragments[0] = b.fragments[0][n:]
	if b.fragments[0] == "" {
		b.fragments = b.fragments[1:]
	}
	return n, nil
}

func (b *fragmentBody) Close() error { return nil }

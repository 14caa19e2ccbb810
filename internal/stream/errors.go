// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/hex"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// StreamReadError reports a failure of the underlying byte source mid-read.
type StreamReadError struct {
	// Offset is the number of bytes successfully read before the failure.
	Offset int64
	Cause  error
}

func (e *StreamReadError) Error() string {
	return "stream read failed after " + strconv.FormatInt(e.Offset, 10) + " bytes: " + e.Cause.Error()
}

func (e *StreamReadError) Unwrap() error {
	return e.Cause
}

// DecodeError reports bytes left in the carry buffer at end of stream that
// do not form a complete character.
type DecodeError struct {
	Trailing []byte
}

func (e *DecodeError) Error() string {
	return "stream ended with incomplete UTF-8 sequence: " + hex.EncodeToString(e.Trailing)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package endpoint

import (
	"context"
	"errors"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes request errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindMarshal
	ErrKindConnection
	ErrKindStatus
	ErrKindNoBody
	ErrKindCanceled
)

// String returns a short name for the kind, used in log fields.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindMarshal:
		return "marshal"
	case ErrKindConnection:
		return "connection"
	case ErrKindStatus:
		return "status"
	case ErrKindNoBody:
		return "no_body"
	case ErrKindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// RequestError reports that a reply stream could not be opened.
type RequestError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	// Body holds a bounded prefix of a failed response body, for logs only.
	Body  string
	Cause error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg += " (status " + strconv.Itoa(e.StatusCode) + ")"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// IsStatus reports whether err is a RequestError for a non-success status.
func IsStatus(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == ErrKindStatus
}

// connectionError classifies a transport failure from http.Client.Do.
func connectionError(ctx context.Context, err error) *RequestError {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &RequestError{Kind: ErrKindCanceled, Message: "request canceled", Cause: err}
	}
	return &RequestError{Kind: ErrKindConnection, Message: "could not reach endpoint", Cause: err}
}

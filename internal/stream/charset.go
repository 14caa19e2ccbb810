// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// OpenCharset wraps r in a Decoder, transcoding from the named charset to
// UTF-8 first when the charset is known and is not UTF-8 already.
// Empty or unrecognised names are treated as UTF-8.
func OpenCharset(r io.Reader, charset string) *Decoder {
	return Open(transcode(r, charset))
}

// transcode returns a reader yielding UTF-8 for the given charset.
// The returned reader still closes the underlying source through Decoder.Close.
func transcode(r io.Reader, charset string) io.Reader {
	charset = strings.TrimSpace(strings.ToLower(charset))
	if charset == "" {
		return r
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return r
	}
	if name, err := htmlindex.Name(enc); err == nil && name == "utf-8" {
		return r
	}
	tr := transform.NewReader(r, enc.NewDecoder())
	if c, ok := r.(io.Closer); ok {
		return readCloser{Reader: tr, Closer: c}
	}
	return tr
}

type readCloser struct {
	io.Reader
	io.Closer
}

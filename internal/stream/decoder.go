// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the read buffer size used by Open.
const DefaultChunkSize = 4096

const byteOrderMark = "\uFEFF"

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a byte stream into a lazy, forward-only sequence of text
// fragments. A Decoder is single-pass and not safe for concurrent use; a new
// byte stream requires a new Decoder.
type Decoder struct {
	src   io.Reader
	buf   []byte
	carry []byte

	// pending holds an error returned together with data by the last Read;
	// it is surfaced on the following call to Next.
	pending error
	err     error

	bomChecked bool
	bytesRead  int64
	fragments  int
}

// Open wraps r in a Decoder with the default chunk size.
func Open(r io.Reader) *Decoder {
	return OpenSize(r, DefaultChunkSize)
}

// OpenSize wraps r in a Decoder that reads at most size bytes per pull.
func OpenSize(r io.Reader, size int) *Decoder {
	if size < utf8.UTFMax {
		size = utf8.UTFMax
	}
	return &Decoder{
		src: r,
		buf: make([]byte, size),
	}
}

// Next blocks until the next non-empty fragment is available.
//
// It returns io.EOF once the source is exhausted and every held-back byte
// has been flushed. A *StreamReadError is returned when the source fails,
// and a *DecodeError when the stream ends inside a multi-byte character.
// After any error, Next keeps returning that error.
func (d *Decoder) Next() (string, error) {
	if d.err != nil {
		return "", d.err
	}

	for {
		if d.pending != nil {
			return "", d.finish(d.pending)
		}

		n, err := d.src.Read(d.buf)
		if n > 0 {
			d.bytesRead += int64(n)
			text := d.decode(d.buf[:n])
			if text != "" {
				d.pending = err
				d.fragments++
				return text, nil
			}
		}
		if err != nil {
			return "", d.finish(err)
		}
	}
}

// finish resolves the terminal state for a source error or end of data.
func (d *Decoder) finish(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		if len(d.carry) > 0 {
			trailing := make([]byte, len(d.carry))
			copy(trailing, d.carry)
			d.carry = nil
			d.err = &DecodeError{Trailing: trailing}
		} else {
			d.err = io.EOF
		}
	default:
		d.err = &StreamReadError{Offset: d.bytesRead, Cause: err}
	}
	return d.err
}

// decode prefixes the carry buffer onto chunk and returns the text of every
// complete character. An incomplete sequence at the end is kept in the carry
// buffer. Each maximal ill-formed subsequence elsewhere decodes to a single
// U+FFFD.
func (d *Decoder) decode(chunk []byte) string {
	data := chunk
	if len(d.carry) > 0 {
		data = append(d.carry, chunk...)
		d.carry = nil
	}

	var sb strings.Builder
	sb.Grow(len(data))
	i := 0
	for i < len(data) {
		if !utf8.FullRune(data[i:]) {
			d.carry = append([]byte(nil), data[i:]...)
			break
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
			size = maximalSubpart(data[i:])
		} else {
			sb.Write(data[i : i+size])
		}
		i += size
	}

	text := sb.String()
	if !d.bomChecked && text != "" {
		d.bomChecked = true
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	return text
}

// maximalSubpart returns the length of the longest prefix of an ill-formed
// sequence at the start of b that could begin a well-formed character, or 1
// when the lead byte cannot start one.
func maximalSubpart(b []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c == 0xF4:
		need, hi = 3, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	default:
		return 1
	}

	n := 1
	for ; n <= need && n < len(b); n++ {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
	}
	return n
}

// Close closes the underlying source when it implements io.Closer. Closing
// unblocks a pending Next, which then fails with a *StreamReadError.
func (d *Decoder) Close() error {
	if c, ok := d.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// BytesRead returns the number of raw bytes consumed from the source.
func (d *Decoder) BytesRead() int64 {
	return d.bytesRead
}

// Fragments returns the number of fragments returned so far.
func (d *Decoder) Fragments() int {
	return d.fragments
}

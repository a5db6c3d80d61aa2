// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a slice-backed reader with zero-copy
// options, tailored to decoding records out of a fixed byte window.
//
// Standard io.Reader methods require that data be copied into a target
// buffer. The zero-copy options, Peek and Take, return slices of R's
// underlying Buffer instead.
//
// Holding a reference into an underlying Buffer means that the Buffer must
// persist as long as that reference is valid. Decoders that need values to
// outlive the window (e.g., when the window belongs to a stream buffer that
// will be consumed and refilled) should set AlwaysCopy.
package byteslicereader

import (
	"io"
)

// R is an io.Reader-inspired cursor over a byte window.
//
// Unlike an io.Reader, R's slice-returning methods are exact: a request for
// n bytes either returns n bytes or fails with io.EOF, leaving the cursor
// where it was. This matches record decoding, where a short read means the
// record is not fully present rather than partially consumable.
//
// R can be copied, creating a snapshot of its current state.
type R struct {
	// Buffer is the backing window for this reader.
	Buffer []byte

	// AlwaysCopy, if true, causes zero-copy methods to return copies of their
	// backing data instead of direct references into Buffer.
	AlwaysCopy bool

	pos int
}

var _ interface {
	io.Reader
	io.ByteReader
} = (*R)(nil)

// Offset returns the number of bytes consumed so far.
func (r *R) Offset() int { return r.pos }

// Remaining returns the number of unconsumed bytes.
func (r *R) Remaining() int {
	if r.pos >= len(r.Buffer) {
		return 0
	}
	return len(r.Buffer) - r.pos
}

// Read implements io.Reader.
//
// Note that Read copies data. It exists so R can be handed to APIs that
// accept an io.Reader (e.g., struc.Unpack).
func (r *R) Read(b []byte) (amt int, err error) {
	amt = copy(b, r.rest())
	r.pos += amt
	if r.pos >= len(r.Buffer) {
		err = io.EOF
	}
	return
}

// ReadByte implements io.ByteReader.
func (r *R) ReadByte() (byte, error) {
	if r.pos >= len(r.Buffer) {
		return 0, io.EOF
	}
	b := r.Buffer[r.pos]
	r.pos++
	return b, nil
}

// Peek returns the next n bytes without advancing the cursor, or io.EOF if
// fewer than n bytes remain.
//
// Peek is zero-copy unless AlwaysCopy is set.
func (r *R) Peek(n int) ([]byte, error) {
	rest := r.rest()
	if n > len(rest) {
		return nil, io.EOF
	}
	return r.maybeCopy(rest[:n]), nil
}

// Take returns the next n bytes and advances the cursor past them.
//
// If fewer than n bytes remain, Take returns io.EOF and consumes nothing.
// Take is zero-copy unless AlwaysCopy is set.
func (r *R) Take(n int) ([]byte, error) {
	v, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return v, nil
}

// Skip advances the cursor by n bytes, or returns io.EOF without moving if
// fewer than n bytes remain.
func (r *R) Skip(n int) error {
	if n > r.Remaining() {
		return io.EOF
	}
	r.pos += n
	return nil
}

func (r *R) rest() []byte {
	if r.pos >= len(r.Buffer) {
		return nil
	}
	return r.Buffer[r.pos:]
}

func (r *R) maybeCopy(v []byte) []byte {
	if r.AlwaysCopy {
		return append([]byte(nil), v...)
	}
	return v
}

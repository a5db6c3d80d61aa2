// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrIncompleteRecord is returned by DecodeHeaders when the available data
// cannot cover the record's headers or its declared total length.
//
// In stream mode this means "wait for more bytes and retry"; it is absorbed
// by the retry loop and never surfaces to callers. In file mode the total
// input length is known, so an incomplete record can never complete and is
// treated as corrupt.
var ErrIncompleteRecord = errors.New("incomplete record")

// CorruptFrameError indicates that the bytes at a presumed record start do
// not form a valid record: a bad storage signature, or a declared length
// that cannot cover the record's own headers.
//
// Corrupt frames are recoverable by resynchronization; they do not terminate
// iteration.
type CorruptFrameError struct {
	// Off is the byte offset of the inconsistency, relative to the presumed
	// record start. Readers add their absolute position when logging.
	Off int

	// Reason describes the inconsistency.
	Reason string
}

func (e *CorruptFrameError) Error() string {
	return fmt.Sprintf("corrupt frame at +%d: %s", e.Off, e.Reason)
}

// UnsupportedTagError indicates a payload type-info tag that does not
// describe any decodable kind. It aborts the payload item sequence of the
// message it occurs in.
type UnsupportedTagError struct {
	// Off is the byte offset of the tag within the payload.
	Off int

	// TypeInfo is the offending tag value.
	TypeInfo uint32
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("unsupported payload tag 0x%08X at offset %d", e.TypeInfo, e.Off)
}

// MalformedStringError indicates a string payload item whose declared extent
// does not end in the mandatory NUL terminator.
type MalformedStringError struct {
	// Off is the byte offset of the item's tag within the payload.
	Off int
}

func (e *MalformedStringError) Error() string {
	return fmt.Sprintf("string item at offset %d is missing its NUL terminator", e.Off)
}

// IsIncomplete returns whether err (or its cause) is ErrIncompleteRecord.
func IsIncomplete(err error) bool {
	return errors.Cause(err) == ErrIncompleteRecord
}

// IsCorruptFrame returns whether err (or its cause) is a *CorruptFrameError.
func IsCorruptFrame(err error) bool {
	_, ok := errors.Cause(err).(*CorruptFrameError)
	return ok
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/danjacques/godlt/support/byteslicereader"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Headers is the decoded framing of a single record.
//
// A Headers value is transient: it borrows nothing from the window it was
// decoded from and exists only to describe the record's layout to the
// assembler that builds the decoded message.
type Headers struct {
	// Storage is the storage header, or nil when the input carries none
	// (live daemon streams).
	Storage *StorageHeader

	// Standard is the mandatory standard header.
	Standard StandardHeader

	// Extended is the optional extended header, or nil when the standard
	// header does not flag its presence. Without it, the application id,
	// context id and verbosity of the record are unknown; verbosity
	// defaults to false.
	Extended *ExtendedHeader

	headerLen int
	totalLen  int
}

// TotalLen returns the total record length in bytes, including the storage
// header when present.
func (h *Headers) TotalLen() int { return h.totalLen }

// PayloadStart returns the payload's byte offset from the record start.
func (h *Headers) PayloadStart() int { return h.headerLen }

// PayloadLen returns the payload length in bytes.
func (h *Headers) PayloadLen() int { return h.totalLen - h.headerLen }

// DecodeHeaders decodes the headers of the record beginning at win[0].
//
// win holds the bytes currently available at the record start; avail is the
// total number of bytes that can ever become available there (the buffered
// length in stream mode, the remaining file length in file mode). win need
// not cover the whole record, but may not exceed avail.
//
// DecodeHeaders returns ErrIncompleteRecord when win is too short to hold
// the headers, or when the declared record length exceeds avail. It returns
// a *CorruptFrameError when the bytes cannot be a valid record: a storage
// signature mismatch, or a declared length too small to cover the record's
// own headers.
func DecodeHeaders(win []byte, avail int64, withStorage bool) (*Headers, error) {
	r := byteslicereader.R{Buffer: win}

	var h Headers
	if withStorage {
		if r.Remaining() < StorageHeaderLen {
			return nil, ErrIncompleteRecord
		}

		var sh StorageHeader
		if err := struc.Unpack(&r, &sh); err != nil {
			return nil, errors.Wrap(err, "unpacking storage header")
		}
		if !bytes.Equal(sh.Pattern[:], Signature) {
			return nil, &CorruptFrameError{Off: 0, Reason: "bad storage signature"}
		}
		h.Storage = &sh
	}

	// Mandatory standard header fields.
	base, err := r.Take(standardHeaderBaseLen)
	if err != nil {
		return nil, ErrIncompleteRecord
	}
	h.Standard.HeaderType = base[0]
	h.Standard.MessageCounter = base[1]
	h.Standard.Length = binary.BigEndian.Uint16(base[2:4])

	storageLen := 0
	if h.Storage != nil {
		storageLen = StorageHeaderLen
	}

	// The declared length must cover the headers it frames.
	declared := int(h.Standard.Length)
	needed := h.Standard.size()
	if h.Standard.HasExtendedHeader() {
		needed += ExtendedHeaderLen
	}
	if declared < needed {
		return nil, &CorruptFrameError{
			Off:    storageLen + 2,
			Reason: fmt.Sprintf("declared length %d smaller than headers (%d bytes)", declared, needed),
		}
	}

	h.headerLen = storageLen + needed
	h.totalLen = storageLen + declared
	if int64(h.totalLen) > avail {
		return nil, ErrIncompleteRecord
	}
	if h.headerLen > len(win) {
		return nil, ErrIncompleteRecord
	}

	// Optional standard header fields, big-endian.
	if h.Standard.WithEcuID() {
		v, _ := r.Take(4)
		copy(h.Standard.EcuID[:], v)
	}
	if h.Standard.WithSessionID() {
		v, _ := r.Take(4)
		h.Standard.SessionID = binary.BigEndian.Uint32(v)
	}
	if h.Standard.WithTimestamp() {
		v, _ := r.Take(4)
		h.Standard.Timestamp = binary.BigEndian.Uint32(v)
	}

	if h.Standard.HasExtendedHeader() {
		var eh ExtendedHeader
		if err := struc.Unpack(&r, &eh); err != nil {
			return nil, errors.Wrap(err, "unpacking extended header")
		}
		h.Extended = &eh
	}

	return &h, nil
}

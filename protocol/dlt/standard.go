// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"encoding/binary"
	"time"
)

// HTYP flag bits of the standard header.
const (
	htypUseExtendedHeader = 0x01 // UEH
	htypMSBFirst          = 0x02 // MSBF: payload is big-endian
	htypWithEcuID         = 0x04 // WEID
	htypWithSessionID     = 0x08 // WSID
	htypWithTimestamp     = 0x10 // WTMS

	htypVersionShift = 5
)

const (
	// standardHeaderBaseLen is the size of the mandatory standard header
	// fields (HTYP, counter, length).
	standardHeaderBaseLen = 4

	// MaxStandardHeaderLen is the size of a standard header with every
	// optional field present.
	MaxStandardHeaderLen = standardHeaderBaseLen + 4 + 4 + 4

	// timestampTick is the unit of the standard header's monotonic
	// timestamp field. Treated as an external units contract: 0.1 ms ticks.
	timestampTick = 100 * time.Microsecond
)

// StandardHeader is the mandatory per-record metadata block.
//
// All multi-byte fields are big-endian on the wire. The optional fields are
// only meaningful when the corresponding HTYP flag reports their presence.
type StandardHeader struct {
	// HeaderType is the HTYP flag byte.
	HeaderType uint8

	// MessageCounter is the per-session record counter.
	MessageCounter uint8

	// Length is the declared record length: standard header, optional
	// extended header and payload. The storage header is not included.
	Length uint16

	// EcuID is present when WithEcuID reports true.
	EcuID [4]byte

	// SessionID is present when WithSessionID reports true.
	SessionID uint32

	// Timestamp is the monotonic device timestamp in 0.1 ms ticks, present
	// when WithTimestamp reports true.
	Timestamp uint32
}

// HasExtendedHeader returns whether an extended header follows.
func (h *StandardHeader) HasExtendedHeader() bool { return h.HeaderType&htypUseExtendedHeader != 0 }

// WithEcuID returns whether the optional ECU id field is present.
func (h *StandardHeader) WithEcuID() bool { return h.HeaderType&htypWithEcuID != 0 }

// WithSessionID returns whether the optional session id field is present.
func (h *StandardHeader) WithSessionID() bool { return h.HeaderType&htypWithSessionID != 0 }

// WithTimestamp returns whether the optional monotonic timestamp is present.
func (h *StandardHeader) WithTimestamp() bool { return h.HeaderType&htypWithTimestamp != 0 }

// Version returns the header version bits.
func (h *StandardHeader) Version() int { return int(h.HeaderType >> htypVersionShift) }

// ByteOrder returns the byte order governing this record's payload, per the
// MSBF flag.
func (h *StandardHeader) ByteOrder() binary.ByteOrder {
	if h.HeaderType&htypMSBFirst != 0 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// DeviceTimestamp returns the monotonic timestamp as a duration since device
// start. Only meaningful when WithTimestamp reports true.
func (h *StandardHeader) DeviceTimestamp() time.Duration {
	return time.Duration(h.Timestamp) * timestampTick
}

// Ecu returns the optional ECU id with NUL padding stripped.
func (h *StandardHeader) Ecu() string { return trimID(h.EcuID) }

// size returns the encoded size of the header, per its HTYP flags.
func (h *StandardHeader) size() int {
	s := standardHeaderBaseLen
	if h.WithEcuID() {
		s += 4
	}
	if h.WithSessionID() {
		s += 4
	}
	if h.WithTimestamp() {
		s += 4
	}
	return s
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dlttest builds DLT record fixtures for tests.
//
// The builders here are test support, not an encoding API: they write just
// enough of the wire format to exercise the decoders, in whatever state of
// disrepair a test needs.
package dlttest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// HTYP/MSIN bits, restated locally so fixtures stay independent of the
// package under test.
const (
	htypUEH  = 0x01
	htypMSBF = 0x02
	htypWEID = 0x04
	htypWSID = 0x08
	htypWTMS = 0x10

	msinVerbose = 0x01
)

// Record accumulates one DLT record and renders it to wire bytes.
//
// The zero value is a verbose little-endian record with no ids and an empty
// payload. Fields may be set freely before calling Bytes.
type Record struct {
	// App and Ctx are the extended header ids (at most 4 ASCII bytes each).
	App, Ctx string

	// NonVerbose clears the extended header's verbosity bit.
	NonVerbose bool

	// NoExtendedHeader omits the extended header entirely. App, Ctx and
	// NonVerbose are ignored.
	NoExtendedHeader bool

	// BigEndianPayload sets the MSBF flag and encodes payload values
	// big-endian.
	BigEndianPayload bool

	// Seconds, Milliseconds and Ecu populate the storage header.
	Seconds      uint32
	Milliseconds uint32
	Ecu          string

	// DeviceTicks, when HasDeviceTicks is set, is written as the standard
	// header's optional monotonic timestamp (0.1 ms ticks).
	DeviceTicks    uint32
	HasDeviceTicks bool

	// SessionID, when HasSessionID is set, is written as the standard
	// header's optional session id.
	SessionID    uint32
	HasSessionID bool

	// StandardEcu, when HasStandardEcu is set, is written as the standard
	// header's optional ECU id.
	StandardEcu    string
	HasStandardEcu bool

	// Counter is the standard header message counter.
	Counter uint8

	// LengthDelta is added to the computed length field, to fabricate
	// records whose declared length is wrong.
	LengthDelta int

	payload bytes.Buffer
	args    int
}

// Order returns the byte order payload values are encoded with.
func (r *Record) Order() binary.ByteOrder {
	if r.BigEndianPayload {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// AddString appends a well-formed string item: STRG tag, u16 length, data,
// NUL terminator.
func (r *Record) AddString(s string) *Record {
	r.tag(0x00000200)
	r.u16(uint16(len(s) + 1))
	r.payload.WriteString(s)
	r.payload.WriteByte(0)
	return r
}

// AddStringMissingNul appends a string item whose declared extent omits the
// terminator, which decoders must reject.
func (r *Record) AddStringMissingNul(s string) *Record {
	r.tag(0x00000200)
	r.u16(uint16(len(s)))
	r.payload.WriteString(s)
	return r
}

// AddUint32 appends a 32-bit unsigned item.
func (r *Record) AddUint32(v uint32) *Record {
	r.tag(0x00000040 | 3)
	r.u32(v)
	return r
}

// AddSint32 appends a 32-bit signed item.
func (r *Record) AddSint32(v int32) *Record {
	r.tag(0x00000020 | 3)
	r.u32(uint32(v))
	return r
}

// AddSint16 appends a 16-bit signed item.
func (r *Record) AddSint16(v int16) *Record {
	r.tag(0x00000020 | 2)
	r.u16(uint16(v))
	return r
}

// AddFloat64 appends a 64-bit float item.
func (r *Record) AddFloat64(v float64) *Record {
	r.tag(0x00000080 | 4)
	var b [8]byte
	r.Order().PutUint64(b[:], math.Float64bits(v))
	r.payload.Write(b[:])
	return r
}

// AddFloat32 appends a 32-bit float item.
func (r *Record) AddFloat32(v float32) *Record {
	r.tag(0x00000080 | 3)
	r.u32(math.Float32bits(v))
	return r
}

// AddBool appends a boolean item.
func (r *Record) AddBool(v bool) *Record {
	r.tag(0x00000010 | 1)
	b := byte(0)
	if v {
		b = 1
	}
	r.payload.WriteByte(b)
	return r
}

// AddRawTag appends an arbitrary type-info tag followed by data, for
// fabricating unsupported or truncated items.
func (r *Record) AddRawTag(ti uint32, data []byte) *Record {
	r.tag(ti)
	r.payload.Write(data)
	return r
}

// SetRawPayload replaces the accumulated payload with raw bytes.
func (r *Record) SetRawPayload(p []byte) *Record {
	r.payload.Reset()
	r.payload.Write(p)
	r.args = 0
	return r
}

// Bytes renders the record with a storage header prologue.
func (r *Record) Bytes() []byte {
	var out bytes.Buffer
	out.Write([]byte{'D', 'L', 'T', 0x01})

	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], r.Seconds)
	out.Write(le[:])
	binary.LittleEndian.PutUint32(le[:], r.Milliseconds)
	out.Write(le[:])
	out.Write(padID(r.Ecu))

	out.Write(r.BytesNoStorage())
	return out.Bytes()
}

// BytesNoStorage renders the record without a storage header, as a logging
// daemon would emit it on a live connection.
func (r *Record) BytesNoStorage() []byte {
	htyp := byte(0)
	if !r.NoExtendedHeader {
		htyp |= htypUEH
	}
	if r.BigEndianPayload {
		htyp |= htypMSBF
	}
	if r.HasStandardEcu {
		htyp |= htypWEID
	}
	if r.HasSessionID {
		htyp |= htypWSID
	}
	if r.HasDeviceTicks {
		htyp |= htypWTMS
	}

	length := 4 + r.payload.Len()
	if r.HasStandardEcu {
		length += 4
	}
	if r.HasSessionID {
		length += 4
	}
	if r.HasDeviceTicks {
		length += 4
	}
	if !r.NoExtendedHeader {
		length += 10
	}
	length += r.LengthDelta

	var out bytes.Buffer
	out.WriteByte(htyp)
	out.WriteByte(r.Counter)

	var be [4]byte
	binary.BigEndian.PutUint16(be[:2], uint16(length))
	out.Write(be[:2])

	if r.HasStandardEcu {
		out.Write(padID(r.StandardEcu))
	}
	if r.HasSessionID {
		binary.BigEndian.PutUint32(be[:], r.SessionID)
		out.Write(be[:])
	}
	if r.HasDeviceTicks {
		binary.BigEndian.PutUint32(be[:], r.DeviceTicks)
		out.Write(be[:])
	}

	if !r.NoExtendedHeader {
		msin := byte(0)
		if !r.NonVerbose {
			msin |= msinVerbose
		}
		out.WriteByte(msin)
		out.WriteByte(uint8(r.args))
		out.Write(padID(r.App))
		out.Write(padID(r.Ctx))
	}

	out.Write(r.payload.Bytes())
	return out.Bytes()
}

// Concat joins record renderings (or arbitrary garbage) into one input.
func Concat(chunks ...[]byte) []byte {
	return bytes.Join(chunks, nil)
}

func (r *Record) tag(ti uint32) {
	var b [4]byte
	r.Order().PutUint32(b[:], ti)
	r.payload.Write(b[:])
	r.args++
}

func (r *Record) u16(v uint16) {
	var b [2]byte
	r.Order().PutUint16(b[:], v)
	r.payload.Write(b[:])
}

func (r *Record) u32(v uint32) {
	var b [4]byte
	r.Order().PutUint32(b[:], v)
	r.payload.Write(b[:])
}

func padID(s string) []byte {
	b := make([]byte, 4)
	copy(b, s)
	return b
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package message defines the decoded DLT message handed to consumers, and
// the app/context filtering applied during iteration.
package message

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/danjacques/godlt/protocol/dlt"
	"github.com/danjacques/godlt/support/fmtutil"
)

// Message is one fully decoded DLT record.
//
// A Message is immutable after construction, except for its payload cache,
// which is computed on first access and never recomputed. Once handed to the
// caller the decoder holds no reference to it.
type Message struct {
	// App and Ctx are the application and context ids from the extended
	// header, NUL padding stripped. Empty when the record carries no
	// extended header.
	App string
	Ctx string

	// Verbose is the extended header's verbosity flag. False when the
	// record carries no extended header.
	Verbose bool

	// Ecu is the ECU id, from the storage header or, failing that, the
	// standard header's optional field.
	Ecu string

	// Date is the storage timestamp: when the record was persisted. Zero
	// when the input carries no storage headers.
	Date time.Time

	// Timestamp is the device's monotonic timestamp at emission, valid only
	// when HasTimestamp is true.
	Timestamp    time.Duration
	HasTimestamp bool

	// Session is the standard header's optional session id, or zero.
	Session uint32

	// RawPayload is the undecoded payload bytes. The Message owns it.
	RawPayload []byte

	// Raw is the complete raw record, populated only when raw capture was
	// requested.
	Raw []byte

	order binary.ByteOrder

	payloadReady bool
	payload      []dlt.Value
	payloadErr   error

	// payloadDecodes counts decode passes; tests use it to observe
	// memoization.
	payloadDecodes int
}

// New builds a Message from decoded headers and its payload bytes.
//
// payload must be owned by the message: callers decoding out of a reusable
// buffer pass a copy.
func New(h *dlt.Headers, payload []byte) *Message {
	m := Message{
		RawPayload: payload,
		order:      h.Standard.ByteOrder(),
	}

	if h.Extended != nil {
		m.App = h.Extended.App()
		m.Ctx = h.Extended.Ctx()
		m.Verbose = h.Extended.Verbose()
	}

	if h.Standard.WithTimestamp() {
		m.Timestamp = h.Standard.DeviceTimestamp()
		m.HasTimestamp = true
	}
	if h.Standard.WithSessionID() {
		m.Session = h.Standard.SessionID
	}

	switch {
	case h.Storage != nil:
		m.Date = h.Storage.Time()
		m.Ecu = h.Storage.Ecu()
	case h.Standard.WithEcuID():
		m.Ecu = h.Standard.Ecu()
	}

	return &m
}

// Payload returns the decoded payload item sequence.
//
// The payload is decoded on first access and memoized: repeated calls return
// the identical sequence without re-parsing. The payload of a non-verbose
// record is not type-tagged and will not decode; use RawPayload for those.
func (m *Message) Payload() ([]dlt.Value, error) {
	if !m.payloadReady {
		m.payloadDecodes++
		m.payload, m.payloadErr = dlt.DecodePayload(m.RawPayload, m.order)
		m.payloadReady = true
	}
	return m.payload, m.payloadErr
}

// HumanFriendly returns a best-effort text rendering of the payload.
//
// A payload consisting of a single string item renders as that string,
// whitespace-trimmed. Other payloads render item by item. Payloads that do
// not decode render as a hex preview of the raw bytes.
func (m *Message) HumanFriendly() string {
	items, err := m.Payload()
	if err != nil {
		return fmt.Sprintf("(undecoded %s)", fmtutil.HexPrefix{B: m.RawPayload, N: 16})
	}

	if len(items) == 1 && items[0].Kind == dlt.KindString {
		return strings.TrimSpace(items[0].Str)
	}

	parts := make([]string, len(items))
	for i := range items {
		parts[i] = items[i].String()
	}
	return strings.Join(parts, " ")
}

func (m *Message) String() string {
	ts := "-"
	if m.HasTimestamp {
		ts = m.Timestamp.String()
	}
	return fmt.Sprintf("Message{app=%q, ctx=%q, ts=%s}", m.App, m.Ctx, ts)
}

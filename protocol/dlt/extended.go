// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

// MSIN bit layout of the extended header.
const (
	msinVerbose = 0x01 // VERB

	msinTypeShift = 1
	msinTypeMask  = 0x07 // MSTP, after shift

	msinTypeInfoShift = 4
	msinTypeInfoMask  = 0x0F // MTIN, after shift
)

// ExtendedHeaderLen is the fixed size of an extended header.
const ExtendedHeaderLen = 10

// ExtendedHeader identifies the producing application and context of a
// record. It is present only when the standard header's UEH flag is set.
//
// /**
//  * Extended header format:
//  * uint8_t msin;        // verbosity bit, message type, type info
//  * uint8_t noar;        // number of payload arguments
//  * uint8_t app_id[4];   // NUL-padded ASCII
//  * uint8_t ctx_id[4];   // NUL-padded ASCII
//  */
type ExtendedHeader struct {
	MessageInfo uint8
	ArgCount    uint8
	AppID       [4]byte
	CtxID       [4]byte
}

// Verbose returns whether the record's payload is self-describing
// (type-tagged).
func (h *ExtendedHeader) Verbose() bool { return h.MessageInfo&msinVerbose != 0 }

// MessageType returns the MSTP message type bits.
func (h *ExtendedHeader) MessageType() uint8 {
	return (h.MessageInfo >> msinTypeShift) & msinTypeMask
}

// MessageTypeInfo returns the MTIN message subtype bits.
func (h *ExtendedHeader) MessageTypeInfo() uint8 {
	return (h.MessageInfo >> msinTypeInfoShift) & msinTypeInfoMask
}

// App returns the application id with NUL padding stripped.
func (h *ExtendedHeader) App() string { return trimID(h.AppID) }

// Ctx returns the context id with NUL padding stripped.
func (h *ExtendedHeader) Ctx() string { return trimID(h.CtxID) }

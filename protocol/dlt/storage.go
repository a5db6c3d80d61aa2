// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"bytes"
	"time"
)

// Signature is the 4-byte pattern that begins every stored record.
var Signature = []byte{'D', 'L', 'T', 0x01}

const (
	// SignatureLen is the length of Signature.
	SignatureLen = 4

	// StorageHeaderLen is the fixed size of a storage header.
	StorageHeaderLen = 16
)

// StorageHeader is the fixed prologue added to a record when it is persisted.
//
// /**
//  * Storage header format (little-endian):
//  * uint8_t  pattern[4];      // "DLT" 0x01
//  * uint32_t seconds;         // wall-clock seconds at storage time
//  * uint32_t milliseconds;    // sub-second component
//  * uint8_t  ecu_id[4];       // NUL-padded ASCII
//  */
type StorageHeader struct {
	Pattern      [4]byte
	Seconds      uint32 `struc:",little"`
	Milliseconds uint32 `struc:",little"`
	EcuID        [4]byte
}

// Time returns the storage timestamp as a time.Time.
func (h *StorageHeader) Time() time.Time {
	return time.Unix(int64(h.Seconds), int64(h.Milliseconds)*int64(time.Millisecond))
}

// Ecu returns the ECU id with NUL padding stripped.
func (h *StorageHeader) Ecu() string { return trimID(h.EcuID) }

// trimID renders a 4-byte NUL-padded ASCII identifier as a string.
func trimID(id [4]byte) string {
	return string(bytes.TrimRight(id[:], "\x00"))
}

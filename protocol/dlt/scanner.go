// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dlt

import (
	"bytes"
)

// FindSignature locates the next storage-header signature in buf at or after
// from, returning its offset.
//
// A false result means no signature exists in the available data, not that
// the data is invalid. Stream-mode callers should retain the last
// SignatureLen-1 bytes and request more input, since a signature may
// straddle the window edge; file-mode callers are done.
//
// Resynchronization after a failed record start begins at from =
// failedStart+1, so the failed bytes are skipped and never re-parsed.
func FindSignature(buf []byte, from int) (int, bool) {
	if from < 0 || from >= len(buf) {
		return 0, false
	}
	i := bytes.Index(buf[from:], Signature)
	if i < 0 {
		return 0, false
	}
	return from + i, true
}

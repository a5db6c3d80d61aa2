// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Hex is a byte slice that renders as a hex-dumped string.
//
// It can be used for easy lazy hex dumping.
type Hex []byte

func (h Hex) String() string { return hex.Dump([]byte(h)) }

// HexPrefix renders at most n leading bytes of b as a compact hex string,
// with an ellipsis when b is longer.
//
// Output as: "0x10 0x20 0x30 ... (47 bytes)"
//
// It is used when logging corrupt frames, where dumping a whole record would
// drown the offset information that actually matters.
type HexPrefix struct {
	B []byte
	N int
}

func (hp HexPrefix) String() string {
	n := hp.N
	if n <= 0 {
		n = 8
	}

	var sb bytes.Buffer
	truncated := false
	if len(hp.B) > n {
		truncated = true
	} else {
		n = len(hp.B)
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "0x%02X", hp.B[i])
	}
	if truncated {
		fmt.Fprintf(&sb, " ... (%d bytes)", len(hp.B))
	}
	return sb.String()
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"io"
)

// streamBufferMinSize is the initial capacity of a streamBuffer, and the
// smallest amount it will grow by.
const streamBufferMinSize = 4096

// streamBuffer owns the bytes read from a stream source but not yet decoded.
//
// It exposes a single contiguous valid region, [0, valid), to decoders;
// bytes beyond it are spare capacity and are never visible. A streamBuffer
// is owned by exactly one Stream and is never accessed concurrently.
type streamBuffer struct {
	data  []byte
	valid int
}

// window returns the valid region.
func (sb *streamBuffer) window() []byte { return sb.data[:sb.valid] }

// len returns the number of valid bytes.
func (sb *streamBuffer) len() int { return sb.valid }

// fill reads more bytes from src into spare capacity, growing the buffer
// when none remains, and returns the number of bytes added.
//
// A return of 0 with a nil error means the source is exhausted: no complete
// record can ever arrive.
func (sb *streamBuffer) fill(src io.Reader) (int, error) {
	if sb.valid == len(sb.data) {
		sb.grow()
	}

	for {
		n, err := src.Read(sb.data[sb.valid:])
		sb.valid += n
		switch {
		case err == io.EOF:
			return n, nil
		case err != nil:
			return n, err
		case n > 0:
			return n, nil
		}
		// A (0, nil) read is allowed by the io.Reader contract; retry.
	}
}

// consume discards the first n valid bytes, reclaiming their space.
func (sb *streamBuffer) consume(n int) {
	if n > sb.valid {
		panic("consuming past the valid region")
	}
	copy(sb.data, sb.data[n:sb.valid])
	sb.valid -= n
}

func (sb *streamBuffer) grow() {
	newSize := 2 * len(sb.data)
	if newSize < streamBufferMinSize {
		newSize = streamBufferMinSize
	}

	data := make([]byte, newSize)
	copy(data, sb.data[:sb.valid])
	sb.data = data
}

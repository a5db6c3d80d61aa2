// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"io"

	"github.com/danjacques/godlt/message"
	"github.com/danjacques/godlt/protocol/dlt"
	"github.com/danjacques/godlt/support/logging"

	"github.com/pkg/errors"
)

// StreamOptions configures a Stream.
type StreamOptions struct {
	// Filters is the (app, ctx) allow-list. Empty means no filtering.
	Filters message.FilterSet

	// ExpectStorageHeader declares whether records in the source begin with
	// a storage header.
	//
	// Live daemon streams carry none; with it absent there is no signature
	// to resynchronize on, so a corrupt frame advances a single byte before
	// re-attempting.
	ExpectStorageHeader bool

	// Logger receives corrupt-frame and resynchronization logs. If nil, a
	// no-op logger is used.
	Logger logging.L
}

// Stream decodes DLT messages from an append-only byte source.
//
// Stream iteration surfaces only verbose messages; non-verbose records are
// decoded, counted and dropped regardless of the filter set. Stream is not
// safe for concurrent use.
type Stream struct {
	src    io.Reader
	opts   StreamOptions
	logger logging.L

	buf streamBuffer

	// offset is the absolute source offset of the buffer's first byte.
	offset int64
}

// NewStream wraps an append-only byte source.
//
// A Read against src may block; that is the source's concern to bound. The
// returned Stream owns its buffer exclusively.
func NewStream(src io.Reader, opts *StreamOptions) *Stream {
	s := Stream{src: src}
	if opts != nil {
		s.opts = *opts
	}
	s.logger = logging.Must(s.opts.Logger)
	return &s
}

// Offset returns the absolute source offset of the next undecoded byte.
func (s *Stream) Offset() int64 { return s.offset }

// Next returns the next retained message.
//
// Next blocks on the source while a record is incomplete. Corrupt frames
// are logged, skipped by resynchronization, and do not end iteration. When
// the source is exhausted, Next returns io.EOF.
func (s *Stream) Next() (*message.Message, error) {
	for {
		hdrs, err := dlt.DecodeHeaders(s.buf.window(), int64(s.buf.len()), s.opts.ExpectStorageHeader)
		switch {
		case err == nil:
			msg := s.assemble(hdrs)
			s.buf.consume(hdrs.TotalLen())
			s.offset += int64(hdrs.TotalLen())
			decodedRecords.WithLabelValues(modeStream).Inc()

			if !msg.Verbose || !s.opts.Filters.Match(msg.App, msg.Ctx) {
				droppedMessages.WithLabelValues(modeStream).Inc()
				continue
			}
			emittedMessages.WithLabelValues(modeStream).Inc()
			return msg, nil

		case dlt.IsIncomplete(err):
			n, ferr := s.buf.fill(s.src)
			if ferr != nil {
				return nil, errors.Wrap(ferr, "reading from stream source")
			}
			if n == 0 {
				// Source exhausted. Any buffered partial record can never
				// complete.
				if s.buf.len() > 0 {
					s.logger.Debugf("discarding %d-byte partial record at end of stream (offset %d)",
						s.buf.len(), s.offset)
				}
				return nil, io.EOF
			}

		case dlt.IsCorruptFrame(err):
			s.resync(err)

		default:
			return nil, err
		}
	}
}

// assemble builds a Message from the record at the front of the buffer.
//
// The buffer is about to be consumed and refilled, so the payload (and raw
// capture, if any) must be copied out of it.
func (s *Stream) assemble(hdrs *dlt.Headers) *message.Message {
	win := s.buf.window()
	payload := append([]byte(nil), win[hdrs.PayloadStart():hdrs.TotalLen()]...)
	return message.New(hdrs, payload)
}

// resync discards buffered bytes up to the next possible record start.
func (s *Stream) resync(cause error) {
	corruptFrames.WithLabelValues(modeStream).Inc()
	s.logger.Warnf("corrupt frame at offset %d, resynchronizing: %s", s.offset, cause)

	win := s.buf.window()
	var skip int
	if s.opts.ExpectStorageHeader {
		if idx, ok := dlt.FindSignature(win, 1); ok {
			skip = idx
		} else {
			// No signature in buffered data. Keep a signature-sized tail in
			// case one straddles the next fill.
			skip = len(win) - (dlt.SignatureLen - 1)
			if skip < 1 {
				skip = 1
			}
		}
	} else {
		// Without storage headers there is no signature to hunt for.
		skip = 1
	}

	s.buf.consume(skip)
	s.offset += int64(skip)
	resyncSkippedBytes.WithLabelValues(modeStream).Add(float64(skip))
}

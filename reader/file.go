// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"io"
	"os"

	"github.com/danjacques/godlt/message"
	"github.com/danjacques/godlt/protocol/dlt"
	"github.com/danjacques/godlt/support/fmtutil"
	"github.com/danjacques/godlt/support/logging"

	"github.com/pkg/errors"
)

// maxHeaderLen is the largest possible header region of a stored record:
// storage header, standard header with every optional field, extended
// header.
const maxHeaderLen = dlt.StorageHeaderLen + dlt.MaxStandardHeaderLen + dlt.ExtendedHeaderLen

// resyncChunkSize is the read granularity of the file-mode signature scan.
const resyncChunkSize = 4096

// FileOptions configures a File.
type FileOptions struct {
	// Filters is the (app, ctx) allow-list. Empty means no filtering.
	Filters message.FilterSet

	// CaptureRaw copies each emitted record's complete raw bytes onto the
	// message.
	CaptureRaw bool

	// IncludeNonVerbose emits records without the verbose flag (including
	// records with no extended header at all) instead of dropping them.
	// Filters still apply.
	IncludeNonVerbose bool

	// Logger receives corrupt-frame and resynchronization logs. If nil, a
	// no-op logger is used.
	Logger logging.L
}

// File decodes DLT messages from a seekable file of stored records.
//
// Because the file's total length is known, a record whose declared length
// extends past the end can never complete and is treated as corrupt.
// Recovery scans forward for the next storage signature, so a corrupt
// record in the middle of a file never costs the records after it.
//
// File is not safe for concurrent use.
type File struct {
	f      *os.File
	size   int64
	offset int64

	opts   FileOptions
	logger logging.L

	hdrBuf [maxHeaderLen]byte
}

// OpenFile opens a stored DLT file for decoding.
func OpenFile(path string, opts *FileOptions) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening DLT file")
	}

	st, err := fd.Stat()
	if err != nil {
		_ = fd.Close()
		return nil, errors.Wrap(err, "statting DLT file")
	}

	f := File{
		f:    fd,
		size: st.Size(),
	}
	if opts != nil {
		f.opts = *opts
	}
	f.logger = logging.Must(f.opts.Logger)
	return &f, nil
}

// Size returns the total file size in bytes, for progress reporting.
func (f *File) Size() int64 { return f.size }

// Offset returns the byte offset decoding has reached.
func (f *File) Offset() int64 { return f.offset }

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// Next returns the next retained message, or io.EOF at end of file.
//
// Corrupt frames are logged with their offset and skipped by
// resynchronization; they never end iteration early.
func (f *File) Next() (*message.Message, error) {
	for f.offset < f.size {
		hdrs, err := f.decodeHeadersAt(f.offset)
		if err != nil {
			if !dlt.IsCorruptFrame(err) && !dlt.IsIncomplete(err) {
				return nil, err
			}
			// An incomplete record at known file size is corrupt: no more
			// bytes will ever arrive.
			f.recover(err)
			continue
		}

		rec := make([]byte, hdrs.TotalLen())
		if _, err := io.ReadFull(io.NewSectionReader(f.f, f.offset, int64(len(rec))), rec); err != nil {
			return nil, errors.Wrapf(err, "reading record at offset %d", f.offset)
		}
		f.offset += int64(hdrs.TotalLen())
		decodedRecords.WithLabelValues(modeFile).Inc()

		msg := message.New(hdrs, rec[hdrs.PayloadStart():])
		if f.opts.CaptureRaw {
			msg.Raw = rec
		}

		if (!msg.Verbose && !f.opts.IncludeNonVerbose) || !f.opts.Filters.Match(msg.App, msg.Ctx) {
			droppedMessages.WithLabelValues(modeFile).Inc()
			continue
		}
		emittedMessages.WithLabelValues(modeFile).Inc()
		return msg, nil
	}
	return nil, io.EOF
}

// decodeHeadersAt decodes record headers from a bounded window at off.
func (f *File) decodeHeadersAt(off int64) (*dlt.Headers, error) {
	win := f.hdrBuf[:]
	if rest := f.size - off; rest < int64(len(win)) {
		win = win[:rest]
	}
	if _, err := io.ReadFull(io.NewSectionReader(f.f, off, int64(len(win))), win); err != nil {
		return nil, errors.Wrapf(err, "reading headers at offset %d", off)
	}
	return dlt.DecodeHeaders(win, f.size-off, true)
}

// recover advances past a corrupt record start to the next storage
// signature, or to end of file when none remains.
func (f *File) recover(cause error) {
	corruptFrames.WithLabelValues(modeFile).Inc()
	f.logger.Warnf("corrupt frame at offset %d (%s), resynchronizing: %s",
		f.offset, fmtutil.HexPrefix{B: f.hdrBuf[:], N: 8}, cause)

	next, ok := f.scanSignature(f.offset + 1)
	if !ok {
		resyncSkippedBytes.WithLabelValues(modeFile).Add(float64(f.size - f.offset))
		f.logger.Warnf("no further signature after offset %d, ending iteration", f.offset)
		f.offset = f.size
		return
	}

	resyncSkippedBytes.WithLabelValues(modeFile).Add(float64(next - f.offset))
	f.logger.Infof("signature found at offset %d, continuing", next)
	f.offset = next
}

// scanSignature searches the file for the next storage signature at or
// after from.
func (f *File) scanSignature(from int64) (int64, bool) {
	buf := make([]byte, resyncChunkSize)
	for off := from; off < f.size; {
		n, err := f.f.ReadAt(buf, off)
		if n > 0 {
			if idx, ok := dlt.FindSignature(buf[:n], 0); ok {
				return off + int64(idx), true
			}
		}
		if err != nil || n == 0 {
			break
		}

		// Overlap by SignatureLen-1 so a signature straddling two chunks is
		// still found.
		step := n - (dlt.SignatureLen - 1)
		if step < 1 {
			step = 1
		}
		off += int64(step)
	}
	return 0, false
}

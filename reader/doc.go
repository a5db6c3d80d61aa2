// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package reader assembles decoded DLT messages out of byte sources.
//
// Two modes are provided. File reads a seekable file of stored records,
// where the total length is known: a record that cannot complete is corrupt,
// and recovery seeks forward to the next storage signature. Stream reads an
// append-only source incrementally, buffering bytes until whole records are
// available and resynchronizing within the buffer after corruption.
//
// Both are single-threaded and pull-based: the caller drives decoding by
// calling Next, and the only blocking happens at the byte source. Iteration
// ends with io.EOF; corrupt frames are logged and skipped, never fatal.
package reader

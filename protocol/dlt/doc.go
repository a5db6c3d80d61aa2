// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dlt implements the DLT (Diagnostic Log and Trace) binary record
// layout: the storage header prologue added when records are persisted, the
// standard header with its optional fields, the optional extended header
// identifying the producing application and context, and the type-tagged
// verbose payload encoding.
//
// The package decodes single records out of byte windows. It does not own
// buffering or iteration; see the reader package for file- and stream-mode
// record assembly built on top of these decoders.
package dlt

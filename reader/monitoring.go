// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package reader

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	decodedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "godlt_reader_decoded_records",
		Help: "Count of records decoded, before verbosity and filter checks.",
	}, []string{"mode"})

	emittedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "godlt_reader_emitted_messages",
		Help: "Count of messages returned to the caller.",
	}, []string{"mode"})

	droppedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "godlt_reader_dropped_messages",
		Help: "Count of decoded records dropped by verbosity or filters.",
	}, []string{"mode"})

	corruptFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "godlt_reader_corrupt_frames",
		Help: "Count of corrupt frames encountered.",
	}, []string{"mode"})

	resyncSkippedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "godlt_reader_resync_skipped_bytes",
		Help: "Count of bytes discarded while resynchronizing to a signature.",
	}, []string{"mode"})
)

// Mode label values.
const (
	modeFile   = "file"
	modeStream = "stream"
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		decodedRecords,
		emittedMessages,
		droppedMessages,
		corruptFrames,
		resyncSkippedBytes,
	)
}

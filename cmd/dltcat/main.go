// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command dltcat decodes DLT log input and prints each retained message.
//
// With file arguments, each file is decoded in file mode (resynchronizing
// past corruption). With no arguments, stdin is decoded in stream mode.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/danjacques/godlt/message"
	"github.com/danjacques/godlt/reader"
	"github.com/danjacques/godlt/support/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	filters         message.FilterSetFlag
	noStorageHeader = pflag.Bool("no-storage-header", false,
		"Stream input carries no storage headers (live daemon capture).")
	includeNonVerbose = pflag.Bool("include-non-verbose", false,
		"In file mode, also print non-verbose records.")
	verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
)

func main() {
	pflag.Var(&filters, "filter",
		"Retain only messages matching APP:CTX (repeatable; * is a wildcard).")
	pflag.Parse()

	zcfg := zap.NewProductionConfig()
	if *verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zl, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()
	logger := zl.Sugar()

	reader.RegisterMonitoring(prometheus.DefaultRegisterer)

	if err := run(logger); err != nil {
		logger.Errorf("dltcat failed: %s", err)
		os.Exit(1)
	}
}

func run(logger logging.L) error {
	args := pflag.Args()
	if len(args) == 0 {
		return catStream(os.Stdin, logger)
	}

	for _, path := range args {
		if err := catFile(path, logger); err != nil {
			return err
		}
	}
	return nil
}

func catFile(path string, logger logging.L) error {
	f, err := reader.OpenFile(path, &reader.FileOptions{
		Filters:           filters.FilterSet,
		IncludeNonVerbose: *includeNonVerbose,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	for {
		msg, err := f.Next()
		if err == io.EOF {
			logger.Debugf("%s: decoded %d of %d bytes", path, f.Offset(), f.Size())
			return nil
		}
		if err != nil {
			return err
		}
		printMessage(msg)
	}
}

func catStream(src io.Reader, logger logging.L) error {
	s := reader.NewStream(src, &reader.StreamOptions{
		Filters:             filters.FilterSet,
		ExpectStorageHeader: !*noStorageHeader,
		Logger:              logger,
	})

	for {
		msg, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		printMessage(msg)
	}
}

func printMessage(m *message.Message) {
	ts := "-"
	if m.HasTimestamp {
		ts = fmt.Sprintf("%.4f", m.Timestamp.Seconds())
	}
	date := "-"
	if !m.Date.IsZero() {
		date = m.Date.UTC().Format("2006-01-02 15:04:05.000")
	}
	fmt.Printf("%s %s %-4s %-4s %s\n", date, ts, m.App, m.Ctx, m.HumanFriendly())
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// FilterSetFlag is a pflag.Value implementation that accumulates a
// FilterSet.
//
// Each occurrence adds one "APP:CTX" pair. Either side may be empty or "*"
// for a wildcard: "APP:", ":CTX" and "*:*" are all valid.
type FilterSetFlag struct {
	FilterSet
}

var _ pflag.Value = (*FilterSetFlag)(nil)

func (ff *FilterSetFlag) String() string {
	parts := make([]string, len(ff.FilterSet))
	for i, f := range ff.FilterSet {
		parts[i] = renderSide(f.App) + ":" + renderSide(f.Ctx)
	}
	return strings.Join(parts, ",")
}

// Set implements pflag.Value.
func (ff *FilterSetFlag) Set(v string) error {
	idx := strings.IndexByte(v, ':')
	if idx < 0 {
		return errors.Errorf("filter %q is not of the form APP:CTX", v)
	}

	app, err := parseSide(v[:idx])
	if err != nil {
		return errors.Wrapf(err, "filter %q", v)
	}
	ctx, err := parseSide(v[idx+1:])
	if err != nil {
		return errors.Wrapf(err, "filter %q", v)
	}

	ff.FilterSet = append(ff.FilterSet, Filter{App: app, Ctx: ctx})
	return nil
}

// Type implements pflag.Value.
func (ff *FilterSetFlag) Type() string { return "message.Filter" }

func parseSide(s string) (string, error) {
	if s == "*" {
		s = ""
	}
	if len(s) > 4 {
		return "", errors.Errorf("id %q exceeds 4 characters", s)
	}
	return s, nil
}

func renderSide(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

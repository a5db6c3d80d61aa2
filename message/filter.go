// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package message

// Filter is one (application id, context id) retention pair. An empty field
// is a wildcard and matches any value; a non-empty field must equal the
// message's NUL-stripped id exactly, case-sensitive.
type Filter struct {
	App string
	Ctx string
}

// Match returns whether both of the filter's fields accept the given ids.
func (f Filter) Match(app, ctx string) bool {
	if f.App != "" && f.App != app {
		return false
	}
	if f.Ctx != "" && f.Ctx != ctx {
		return false
	}
	return true
}

// FilterSet is an ordered allow-list of Filters.
//
// An empty set means no filtering is configured and matches everything;
// otherwise a message is retained when any one pair matches.
type FilterSet []Filter

// Match returns whether a message with the given ids should be retained.
func (fs FilterSet) Match(app, ctx string) bool {
	if len(fs) == 0 {
		return true
	}
	for _, f := range fs {
		if f.Match(app, ctx) {
			return true
		}
	}
	return false
}

// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package timeparse parses the relative-duration, absolute-date and
// absolute-date-time value grammar accepted by temporal selectors, per
// spec §4.6. No pack repo parses this exact vocabulary, so it is
// hand-written rather than grounded on an external library.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Error is returned for any input that doesn't match one of the three
// accepted forms. Its message lists the supported formats verbatim, per
// spec §4.6.
type Error struct {
	Input string
}

func (e *Error) Error() string {
	return fmt.Sprintf(
		"invalid time value %q: expected a relative duration (e.g. -7d, 3.hours), "+
			"an absolute date (YYYY-MM-DD), or an absolute date-time "+
			"(YYYY-MM-DDTHH:MM:SS[Z|±HH:MM])", e.Input)
}

var unitSeconds = map[string]int64{
	"s": 1, "sec": 1, "secs": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "mins": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hr": 3600, "hrs": 3600, "hour": 3600, "hours": 3600,
	"d": 86400, "day": 86400, "days": 86400,
	"w": 604800, "week": 604800, "weeks": 604800,
}

// Parse parses s relative to now, per spec §4.6's disambiguation rule:
// digits followed by a letter (or '.'+letter) must parse as a relative
// duration; the digit-dash-digit shape of absolute dates excludes it.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &Error{Input: s}
	}

	if looksRelative(s) {
		return parseRelative(s, now)
	}

	if t, ok := parseAbsolute(s); ok {
		return t, nil
	}

	return time.Time{}, &Error{Input: s}
}

// looksRelative reports whether s begins with an optional '-', then
// digits, then immediately a letter or a '.' followed by a letter —
// the shape that excludes the digit-dash-digit absolute-date form.
func looksRelative(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digitsStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return false
	}
	if i >= len(s) {
		return false
	}
	if isLetter(s[i]) {
		return true
	}
	if s[i] == '.' && i+1 < len(s) && isLetter(s[i+1]) {
		return true
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func parseRelative(s string, now time.Time) (time.Time, error) {
	neg := false
	rest := s
	if strings.HasPrefix(rest, "-") {
		neg = true
		rest = rest[1:]
	}

	digitsEnd := 0
	for digitsEnd < len(rest) && rest[digitsEnd] >= '0' && rest[digitsEnd] <= '9' {
		digitsEnd++
	}
	numPart := rest[:digitsEnd]
	unitPart := rest[digitsEnd:]
	unitPart = strings.TrimPrefix(unitPart, ".") // period form: <digits>.<unit>

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return time.Time{}, &Error{Input: s}
	}

	secPerUnit, ok := unitSeconds[strings.ToLower(unitPart)]
	if !ok {
		return time.Time{}, &Error{Input: s}
	}

	delta := time.Duration(n*secPerUnit) * time.Second
	if neg {
		return now.Add(-delta), nil
	}
	return now.Add(delta), nil
}

func parseAbsolute(s string) (time.Time, bool) {
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if layout == "2006-01-02T15:04:05Z07:00" {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
			continue
		}
		// Local-time forms: plain date and local date-time.
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

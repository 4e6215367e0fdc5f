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

// Package sizeparse parses the decimal size literals with
// binary-prefixed units described by spec §4.7.
//
// This is hand-written rather than delegated to
// github.com/dustin/go-humanize's ParseBytes: that function treats a
// bare "kb"/"mb" as a *decimal* (1000-based) unit and only "kib"/"mib" as
// binary, which is the opposite of this grammar's fixed binary policy
// (1 KiB = 1024 B for every accepted unit spelling). go-humanize is still
// used elsewhere in this module (CLI/log output) for the formatting
// direction, where its behavior is exactly what's wanted.
package sizeparse

import (
	"fmt"
	"strconv"
	"strings"
)

// Error reports a malformed size literal.
type Error struct {
	Input string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid size value %q: expected <number><unit> with unit one of "+
		"b, k/kb, m/mb, g/gb, t/tb", e.Input)
}

var unitMultiplier = map[string]int64{
	"b": 1, "bytes": 1,
	"k": 1024, "kb": 1024,
	"m": 1024 * 1024, "mb": 1024 * 1024,
	"g": 1024 * 1024 * 1024, "gb": 1024 * 1024 * 1024,
	"t": 1024 * 1024 * 1024 * 1024, "tb": 1024 * 1024 * 1024 * 1024,
}

// Parse parses s as a non-negative byte count. A bare number (no unit) is
// bytes. The result is rounded toward zero, per spec §4.7.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &Error{Input: s}
	}

	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	numPart := s[:i]
	unitPart := strings.ToLower(strings.TrimSpace(s[i:]))

	if numPart == "" {
		return 0, &Error{Input: s}
	}

	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil || f < 0 {
		return 0, &Error{Input: s}
	}

	mult := int64(1)
	if unitPart != "" {
		m, ok := unitMultiplier[unitPart]
		if !ok {
			return 0, &Error{Input: s}
		}
		mult = m
	}

	return int64(f * float64(mult)), nil
}

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

package query

import (
	"strings"
	"time"
)

// stringOp discriminates StringMatcher variants.
type stringOp int

const (
	StringEquals stringOp = iota
	StringNotEquals
	StringContains
	StringRegex
	StringIn
)

// StringMatcher is one of Equals | NotEquals | Contains | Regex | In, per
// spec §3.5.
type StringMatcher struct {
	Op      stringOp
	Operand string
	Regex   *HybridRegex
	Set     map[string]struct{}
}

func NewStringEquals(s string) StringMatcher    { return StringMatcher{Op: StringEquals, Operand: s} }
func NewStringNotEquals(s string) StringMatcher { return StringMatcher{Op: StringNotEquals, Operand: s} }
func NewStringContains(s string) StringMatcher  { return StringMatcher{Op: StringContains, Operand: s} }

func NewStringRegex(re *HybridRegex) StringMatcher {
	return StringMatcher{Op: StringRegex, Regex: re}
}

func NewStringIn(items []string) StringMatcher {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return StringMatcher{Op: StringIn, Set: set}
}

// Match evaluates the matcher against s.
func (m StringMatcher) Match(s string) bool {
	switch m.Op {
	case StringEquals:
		return s == m.Operand
	case StringNotEquals:
		return s != m.Operand
	case StringContains:
		return strings.Contains(s, m.Operand)
	case StringRegex:
		return m.Regex.MatchString(s)
	case StringIn:
		_, ok := m.Set[s]
		return ok
	}
	return false
}

// Bound is a closed-left, open-right integer range that may be left-,
// right-, or both-bounded, per spec §3.5.
type Bound struct {
	HasLow  bool
	Low     int64
	HasHigh bool
	High    int64
}

func (b Bound) Contains(n int64) bool {
	if b.HasLow && n < b.Low {
		return false
	}
	if b.HasHigh && n >= b.High {
		return false
	}
	return true
}

// BoundLeft builds the half-open range [low, +inf).
func BoundLeft(low int64) Bound { return Bound{HasLow: true, Low: low} }

// BoundRight builds the half-open range (-inf, high).
func BoundRight(high int64) Bound { return Bound{HasHigh: true, High: high} }

type numberOp int

const (
	NumberEquals numberOp = iota
	NumberNotEquals
	NumberIn
)

// NumberMatcher is Equals | NotEquals | In(Bound), per spec §3.5.
type NumberMatcher struct {
	Op      numberOp
	Operand int64
	Bound   Bound
}

func NewNumberEquals(n int64) NumberMatcher    { return NumberMatcher{Op: NumberEquals, Operand: n} }
func NewNumberNotEquals(n int64) NumberMatcher { return NumberMatcher{Op: NumberNotEquals, Operand: n} }
func NewNumberIn(b Bound) NumberMatcher        { return NumberMatcher{Op: NumberIn, Bound: b} }

func (m NumberMatcher) Match(n int64) bool {
	switch m.Op {
	case NumberEquals:
		return n == m.Operand
	case NumberNotEquals:
		return n != m.Operand
	case NumberIn:
		return m.Bound.Contains(n)
	}
	return false
}

type timeOp int

const (
	TimeBefore timeOp = iota
	TimeAfter
	TimeBeforeOrEqual
	TimeAfterOrEqual
	TimeEquals
	TimeNotEquals
)

// TimeMatcher compares an instant against an operand in local time. Equals
// and NotEquals compare at day granularity; the others at instant
// granularity, per spec §3.5.
type TimeMatcher struct {
	Op      timeOp
	Operand time.Time
}

func (m TimeMatcher) Match(t time.Time) bool {
	switch m.Op {
	case TimeBefore:
		return t.Before(m.Operand)
	case TimeAfter:
		return t.After(m.Operand)
	case TimeBeforeOrEqual:
		return !t.After(m.Operand)
	case TimeAfterOrEqual:
		return !t.Before(m.Operand)
	case TimeEquals:
		return sameDay(t, m.Operand)
	case TimeNotEquals:
		return !sameDay(t, m.Operand)
	}
	return false
}

func sameDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type enumOp int

const (
	EnumEquals enumOp = iota
	EnumNotEquals
	EnumIn
)

// EnumMatcher is Equals | NotEquals | In(Set<FileType>), per spec §3.5.
type EnumMatcher struct {
	Op      enumOp
	Operand FileType
	Set     map[FileType]struct{}
}

func NewEnumEquals(t FileType) EnumMatcher    { return EnumMatcher{Op: EnumEquals, Operand: t} }
func NewEnumNotEquals(t FileType) EnumMatcher { return EnumMatcher{Op: EnumNotEquals, Operand: t} }

func NewEnumIn(items []FileType) EnumMatcher {
	set := make(map[FileType]struct{}, len(items))
	for _, t := range items {
		set[t] = struct{}{}
	}
	return EnumMatcher{Op: EnumIn, Set: set}
}

func (m EnumMatcher) Match(t FileType) bool {
	switch m.Op {
	case EnumEquals:
		return t == m.Operand
	case EnumNotEquals:
		return t != m.Operand
	case EnumIn:
		_, ok := m.Set[t]
		return ok
	}
	return false
}

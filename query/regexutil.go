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
	"github.com/dlclark/regexp2"
	"github.com/grafana/regexp"
)

// HybridRegex wraps a pattern compiled by one of two engines: a
// DFA-capable automaton engine (github.com/grafana/regexp, a drop-in RE2
// port) tried first, and a Perl-compatible backtracking engine
// (github.com/dlclark/regexp2) used as a silent fallback when RE2 rejects
// the pattern (backreferences, look-arounds). Equality of two HybridRegex
// values is defined as equality of their source patterns, per spec.
type HybridRegex struct {
	source string
	re2    *regexp.Regexp // non-nil when the native engine compiled it
	pcre   *regexp2.Regexp
}

// NewHybridRegex compiles pattern, trying the native engine first.
func NewHybridRegex(pattern string) (*HybridRegex, error) {
	if re, err := regexp.Compile(pattern); err == nil {
		return &HybridRegex{source: pattern, re2: re}, nil
	}
	pcre, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, err
	}
	return &HybridRegex{source: pattern, pcre: pcre}, nil
}

// Source returns the original pattern text.
func (h *HybridRegex) Source() string { return h.source }

// MatchString reports whether the pattern occurs anywhere in s.
func (h *HybridRegex) MatchString(s string) bool {
	if h.re2 != nil {
		return h.re2.MatchString(s)
	}
	ok, _ := h.pcre.MatchString(s)
	return ok
}

// MatchBytes reports whether the pattern occurs anywhere in b.
func (h *HybridRegex) MatchBytes(b []byte) bool {
	if h.re2 != nil {
		return h.re2.Match(b)
	}
	ok, _ := h.pcre.MatchString(string(b))
	return ok
}

// Equal implements the spec's "equality of compiled regexes is structural
// equality of the source string" rule.
func (h *HybridRegex) Equal(other *HybridRegex) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.source == other.source
}

// IsPCREFallback reports whether compilation fell back to the
// Perl-compatible engine. Exposed only for diagnostics/tests.
func (h *HybridRegex) IsPCREFallback() bool { return h.pcre != nil }

// StreamMatcher accepts successive byte chunks and reports whether a
// match has been seen in the cumulative stream, without buffering the
// full input. It is the DFA-backed streaming form described in spec
// §3.6/§4.3.
//
// Because neither grafana/regexp nor regexp2 expose a true incremental
// automaton across an API boundary, the streamer keeps a bounded
// overlap buffer between chunks (sized to the longest literal factor we
// can cheaply bound: twice the pattern's source length, floored at 64
// bytes) so a match straddling a chunk boundary is still found, while
// each chunk is still discarded from memory once consumed. This
// preserves the contract's O(chunk-size) amortized per-chunk work.
type StreamMatcher struct {
	re       *HybridRegex
	negate   bool
	overlap  []byte
	found    bool
	overlapN int
}

// NewStreamMatcher builds a streaming content matcher. negate inverts the
// reported outcome, used to encode `!=` on contents as `!contains_match`.
func NewStreamMatcher(re *HybridRegex, negate bool) *StreamMatcher {
	n := len(re.Source()) * 2
	if n < 64 {
		n = 64
	}
	return &StreamMatcher{re: re, negate: negate, overlapN: n}
}

// Feed processes one chunk of the stream. It returns true once the
// matcher's outcome is definitely known (a "Known" result in the
// evaluator's terms); the caller should then stop streaming.
func (m *StreamMatcher) Feed(chunk []byte) (known bool) {
	if m.found {
		return true
	}
	window := chunk
	if len(m.overlap) > 0 {
		window = append(append([]byte(nil), m.overlap...), chunk...)
	}
	if m.re.MatchBytes(window) {
		m.found = true
		return true
	}
	if len(window) > m.overlapN {
		m.overlap = append([]byte(nil), window[len(window)-m.overlapN:]...)
	} else {
		m.overlap = append([]byte(nil), window...)
	}
	return false
}

// Result reports the final outcome after the stream has ended (or Feed
// reported known=true).
func (m *StreamMatcher) Result() bool {
	if m.negate {
		return !m.found
	}
	return m.found
}

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

// Package walk adapts the teacher's gitignore-style ignore-file matcher
// (ignore/ignore.go) into the directory walker that feeds eval.Entity
// values to the evaluator, per SPEC_FULL.md §6.
package walk

import (
	"bufio"
	"io"
	"strings"

	"github.com/gobwas/glob"
)

const lineComment = "#"

// IgnoreFile is the name of the per-directory ignore file consulted
// during a walk, analogous to .gitignore.
const IgnoreFile = ".fileqlignore"

// IgnoreMatcher holds the compiled glob patterns from one ignore file.
type IgnoreMatcher struct {
	patterns []glob.Glob
}

// ParseIgnoreFile parses an ignore file: one glob pattern per line,
// relative to the directory that holds the ignore file; a pattern
// containing none of '.', '[', ']', '*' or '?' gets an implicit trailing
// "**" so a bare directory name excludes its entire subtree. Blank lines
// and "#" comments are skipped.
func ParseIgnoreFile(r io.Reader) (*IgnoreMatcher, error) {
	var patterns []glob.Glob
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, lineComment) {
			continue
		}
		line = strings.TrimPrefix(line, "/")
		if !strings.ContainsAny(line, ".][*?") {
			line += "**"
		}
		pattern, err := glob.Compile(line, '/')
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return &IgnoreMatcher{patterns: patterns}, scanner.Err()
}

// Match reports whether path is excluded by any pattern in m.
func (m *IgnoreMatcher) Match(path string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	for _, p := range m.patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

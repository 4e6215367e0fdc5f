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

// Package navigate implements the iterative structured-data path
// navigator of spec §4.8: `.key`, `..key` recursive descent, `[n]` array
// index, and `[*]` all-elements, composed left to right over a document
// parsed from YAML, JSON or TOML into the generic map[string]any /
// []any / scalar shape that all three unmarshal to.
//
// Navigation never recurses over the document: each step maintains a
// worklist of "current values" and produces the next worklist, which is
// also what makes unbounded `..key` recursive descent safe against
// stack exhaustion on adversarial documents.
package navigate

import (
	"fmt"
	"strconv"
	"strings"
)

// Component is one parsed step of a navigation path.
type Component struct {
	Key       string // set for key and recursive-descent steps
	Recursive bool
	Index     int  // set for index steps
	AllIndex  bool // set for [*]
}

// ParsePath parses a path expression into its components. An empty path
// is rejected, per spec §4.8.
func ParsePath(path string) ([]Component, error) {
	if path == "" {
		return nil, fmt.Errorf("empty structured path")
	}
	var comps []Component
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			recursive := false
			i++
			if i < len(path) && path[i] == '.' {
				recursive = true
				i++
			}
			start := i
			for i < len(path) && path[i] != '.' && path[i] != '[' {
				i++
			}
			key := path[start:i]
			if key == "" {
				return nil, fmt.Errorf("empty key in structured path %q", path)
			}
			comps = append(comps, Component{Key: key, Recursive: recursive})
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated '[' in structured path %q", path)
			}
			inner := path[i+1 : i+end]
			i += end + 1
			if inner == "*" {
				comps = append(comps, Component{AllIndex: true})
				continue
			}
			n, err := strconv.Atoi(inner)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid array index %q in structured path %q", inner, path)
			}
			comps = append(comps, Component{Index: n})
		default:
			return nil, fmt.Errorf("structured path %q must start with '.' or '['", path)
		}
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("empty structured path")
	}
	return comps, nil
}

// Navigate applies comps to doc, returning every leaf reached. Results
// are borrows into doc: no part of the document is copied. An empty
// result list is terminal — later components are not applied once the
// worklist is empty.
func Navigate(doc any, comps []Component) []any {
	current := []any{doc}
	for _, c := range comps {
		if len(current) == 0 {
			return nil
		}
		current = step(current, c)
	}
	return current
}

func step(values []any, c Component) []any {
	var out []any
	for _, v := range values {
		switch {
		case c.AllIndex:
			if arr, ok := v.([]any); ok {
				out = append(out, arr...)
			}
		case c.Recursive:
			out = append(out, collectRecursive(v, c.Key)...)
		case c.Key != "":
			if m, ok := v.(map[string]any); ok {
				if child, ok := m[c.Key]; ok {
					out = append(out, child)
				}
			}
		default:
			if arr, ok := v.([]any); ok && c.Index < len(arr) {
				out = append(out, arr[c.Index])
			}
		}
	}
	return out
}

// collectRecursive collects every occurrence of key at any depth within
// v, using an explicit work queue rather than recursion, per spec §4.8's
// "iterative (no recursion over the document)" invariant (necessary for
// `..key`, which has no depth bound).
func collectRecursive(v any, key string) []any {
	var found []any
	queue := []any{v}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		switch t := cur.(type) {
		case map[string]any:
			if child, ok := t[key]; ok {
				found = append(found, child)
			}
			for _, child := range t {
				queue = append(queue, child)
			}
		case []any:
			queue = append(queue, t...)
		}
	}
	return found
}

// RenderString renders a navigated leaf as a string for StringMatcher
// comparison, per spec §4.8's "succeed iff any leaf rendered as a string
// matches".
func RenderString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case bool, int, int64, float64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// AsNumber coerces a navigated leaf to a float64 for numeric comparison,
// with the fallback-to-string-coercion policy of spec §4.8.
func AsNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

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

package navigate

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format selects which parser Document.Value uses.
type Format int

const (
	YAML Format = iota
	JSON
	TOML
)

// Document is a parsed YAML/JSON/TOML value plus a per-format cache, so
// that multiple structured predicates against the same file's bytes
// share one parse, per spec §4.8's "documents are parsed lazily and
// cached for the duration of phase 3" requirement.
type Document struct {
	bytes []byte
	cache map[Format]parseResult
}

type parseResult struct {
	value any
	err   error
}

// NewDocument wraps raw bytes for lazy, cached parsing. Nothing is parsed
// until Value is invoked for a given format.
func NewDocument(b []byte) *Document {
	return &Document{bytes: b, cache: make(map[Format]parseResult)}
}

// Value returns the parsed document for the requested format, parsing
// and caching on first use.
func (d *Document) Value(f Format) (any, error) {
	if r, ok := d.cache[f]; ok {
		return r.value, r.err
	}
	var v any
	var err error
	switch f {
	case YAML:
		err = yaml.Unmarshal(d.bytes, &v)
	case JSON:
		err = json.Unmarshal(d.bytes, &v)
	case TOML:
		err = toml.Unmarshal(d.bytes, &v)
	}
	v = normalize(v)
	d.cache[f] = parseResult{value: v, err: err}
	return v, err
}

// normalize walks the decoded value recursively and converts every
// map[any]any into a map[string]any, rendering non-string keys with
// fmt.Sprint, so that navigate.step's type switches (map[string]any /
// []any) see a uniform shape regardless of which decoder produced it.
// encoding/json and go-toml/v2 already decode into map[string]any;
// yaml.v3 produces map[any]any for a mapping with a non-string key.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalize(child)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[keyToString(k)] = normalize(child)
		}
		return m
	case []any:
		for i, child := range t {
			t[i] = normalize(child)
		}
		return t
	default:
		return v
	}
}

func keyToString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

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

import "github.com/gobwas/glob"

// Glob wraps a compiled path glob supporting *, ?, **, character classes
// and brace alternatives, matched against a path made relative to the
// search base (spec §3.3). '/' is the path separator, which is what
// makes '*' stop at a directory boundary while '**' crosses it.
type Glob struct {
	source   string
	compiled glob.Glob
}

// CompileGlob compiles pattern using '/' as the path separator.
func CompileGlob(pattern string) (Glob, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return Glob{}, err
	}
	return Glob{source: pattern, compiled: g}, nil
}

func (g Glob) Match(path string) bool {
	return g.compiled.Match(path)
}

func (g Glob) String() string { return g.source }

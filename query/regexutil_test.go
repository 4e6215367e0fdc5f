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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHybridRegexNativeEngine(t *testing.T) {
	re, err := NewHybridRegex(`[a-z]+\d+`)
	require.NoError(t, err)
	require.False(t, re.IsPCREFallback())
	require.True(t, re.MatchString("abc123"))
}

func TestHybridRegexFallsBackToPCRE(t *testing.T) {
	// A backreference is valid PCRE but not RE2, forcing the fallback path.
	re, err := NewHybridRegex(`(\w+)\s\1`)
	require.NoError(t, err)
	require.True(t, re.IsPCREFallback())
	require.True(t, re.MatchString("hello hello"))
	require.False(t, re.MatchString("hello world"))
}

func TestHybridRegexEqualBySource(t *testing.T) {
	a, err := NewHybridRegex(`foo`)
	require.NoError(t, err)
	b, err := NewHybridRegex(`foo`)
	require.NoError(t, err)
	c, err := NewHybridRegex(`bar`)
	require.NoError(t, err)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestStreamMatcherFindsMatchAcrossChunkBoundary(t *testing.T) {
	re, err := NewHybridRegex(`needle`)
	require.NoError(t, err)
	sm := NewStreamMatcher(re, false)
	require.False(t, sm.Feed([]byte("...nee")))
	require.True(t, sm.Feed([]byte("dle...")))
	require.True(t, sm.Result())
}

func TestStreamMatcherNegate(t *testing.T) {
	re, err := NewHybridRegex(`needle`)
	require.NoError(t, err)
	sm := NewStreamMatcher(re, true)
	sm.Feed([]byte("no match here"))
	require.True(t, sm.Result())

	sm2 := NewStreamMatcher(re, true)
	sm2.Feed([]byte("a needle in haystack"))
	require.False(t, sm2.Result())
}

func TestGlobMatch(t *testing.T) {
	g, err := CompileGlob(`*.go`)
	require.NoError(t, err)
	require.True(t, g.Match("main.go"))
	require.False(t, g.Match("sub/main.go"))

	g2, err := CompileGlob(`**/*.go`)
	require.NoError(t, err)
	require.True(t, g2.Match("sub/main.go"))
}

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

func TestParsePrecedence(t *testing.T) {
	// "or" binds loosest, so this parses as (a or (b and c)).
	node, err := parseProgram(`ext == "a" or ext == "b" and ext == "c"`)
	require.Nil(t, err)
	or, ok := node.(*rawOr)
	require.True(t, ok, "expected top-level rawOr, got %T", node)
	_, ok = or.left.(*rawPredicate)
	require.True(t, ok)
	_, ok = or.right.(*rawAnd)
	require.True(t, ok)
}

func TestParseParenOverridesPrecedence(t *testing.T) {
	node, err := parseProgram(`(ext == "a" or ext == "b") and ext == "c"`)
	require.Nil(t, err)
	and, ok := node.(*rawAnd)
	require.True(t, ok, "expected top-level rawAnd, got %T", node)
	_, ok = and.left.(*rawOr)
	require.True(t, ok)
}

func TestParseStackedNot(t *testing.T) {
	node, err := parseProgram(`not not type == dir`)
	require.Nil(t, err)
	outer, ok := node.(*rawNot)
	require.True(t, ok)
	_, ok = outer.child.(*rawNot)
	require.True(t, ok)
}

func TestParseSymbolicAnd(t *testing.T) {
	node, err := parseProgram(`name == "foo" && ext in [rs, md]`)
	require.Nil(t, err)
	and, ok := node.(*rawAnd)
	require.True(t, ok, "expected top-level rawAnd, got %T", node)
	_, ok = and.left.(*rawPredicate)
	require.True(t, ok)
	_, ok = and.right.(*rawPredicate)
	require.True(t, ok)
}

func TestParseSymbolicOr(t *testing.T) {
	node, err := parseProgram(`size > 1kb || contents ~= "TODO"`)
	require.Nil(t, err)
	or, ok := node.(*rawOr)
	require.True(t, ok, "expected top-level rawOr, got %T", node)
	_, ok = or.left.(*rawPredicate)
	require.True(t, ok)
	_, ok = or.right.(*rawPredicate)
	require.True(t, ok)
}

func TestParseSymbolicAndOrNotMixedWithWords(t *testing.T) {
	// "(rust or go) && !empty" exercises symbolic and/not alongside the
	// word form of or.
	node, err := parseProgram(`(rust or go) && !empty`)
	require.Nil(t, err)
	and, ok := node.(*rawAnd)
	require.True(t, ok, "expected top-level rawAnd, got %T", node)
	or, ok := and.left.(*rawOr)
	require.True(t, ok, "expected left rawOr, got %T", and.left)
	_, ok = or.left.(*rawWord)
	require.True(t, ok)
	not, ok := and.right.(*rawNot)
	require.True(t, ok, "expected right rawNot, got %T", and.right)
	_, ok = not.child.(*rawWord)
	require.True(t, ok)
}

func TestParseSetLiteral(t *testing.T) {
	node, err := parseProgram(`ext in [go, py, rs]`)
	require.Nil(t, err)
	pred, ok := node.(*rawPredicate)
	require.True(t, ok)
	require.Equal(t, "in", pred.operator)
	require.Len(t, pred.value.set, 3)
	require.Equal(t, "rs", pred.value.set[2].text)
}

func TestParseReservedWordAsValueByPosition(t *testing.T) {
	// "and" in value position is a literal string, not the combinator.
	node, err := parseProgram(`name == and`)
	require.Nil(t, err)
	pred, ok := node.(*rawPredicate)
	require.True(t, ok)
	require.Equal(t, "and", pred.value.text)
}

func TestParseBareGlob(t *testing.T) {
	node, err := parseProgram(`*.go`)
	require.Nil(t, err)
	g, ok := node.(*rawGlob)
	require.True(t, ok)
	require.Equal(t, "*.go", g.pattern)
}

func TestParseBareWord(t *testing.T) {
	node, err := parseProgram(`dir`)
	require.Nil(t, err)
	w, ok := node.(*rawWord)
	require.True(t, ok)
	require.Equal(t, "dir", w.text)
}

func TestParseUnterminatedParen(t *testing.T) {
	_, err := parseProgram(`(ext == "go"`)
	require.NotNil(t, err)
	require.Equal(t, Syntax, err.Kind)
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := parseProgram(`name == "unterminated`)
	require.NotNil(t, err)
	require.Equal(t, UnterminatedString, err.Kind)
}

func TestParseStrayQuote(t *testing.T) {
	_, err := parseProgram(`na"me == go`)
	require.NotNil(t, err)
	require.Equal(t, StrayQuote, err.Kind)
}

func TestParseTrailingInput(t *testing.T) {
	_, err := parseProgram(`ext == "go" )`)
	require.NotNil(t, err)
	require.Equal(t, Syntax, err.Kind)
}

func TestParseSymbolicOperators(t *testing.T) {
	for _, op := range []string{"==", "!=", "~=", ">=", "<=", ">", "<", "="} {
		node, err := parseProgram(`size ` + op + ` 10`)
		require.Nil(t, err, "op %q", op)
		pred, ok := node.(*rawPredicate)
		require.True(t, ok, "op %q", op)
		require.Equal(t, op, pred.operator)
	}
}

func TestParseDottedSelectorIsOneToken(t *testing.T) {
	node, err := parseProgram(`path.extension == "go"`)
	require.Nil(t, err)
	pred, ok := node.(*rawPredicate)
	require.True(t, ok)
	require.Equal(t, "path.extension", pred.selector)
}

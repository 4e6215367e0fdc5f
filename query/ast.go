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

// rawNode is a node of the raw AST produced by the parser. Every node
// carries the byte span of its source region; raw AST nodes borrow the
// source text and must not outlive it.
type rawNode interface {
	span() Span
}

type rawAnd struct {
	left, right rawNode
	sp          Span
}

func (n *rawAnd) span() Span { return n.sp }

type rawOr struct {
	left, right rawNode
	sp          Span
}

func (n *rawOr) span() Span { return n.sp }

type rawNot struct {
	child rawNode
	sp    Span
}

func (n *rawNot) span() Span { return n.sp }

// rawValue is the value half of a predicate: a quoted string, a raw
// bareword token, or a set literal of values.
type rawValue struct {
	quoted bool // true if the source was a quoted string
	text   string
	set    []rawValue // non-nil for set_literal
	sp     Span
}

// rawPredicate is `selector operator value`.
type rawPredicate struct {
	selector   string
	selectorSp Span
	operator   string
	operatorSp Span
	value      rawValue
	sp         Span
}

func (n *rawPredicate) span() Span { return n.sp }

// rawGlob is a bareword containing glob metacharacters.
type rawGlob struct {
	pattern string
	sp      Span
}

func (n *rawGlob) span() Span { return n.sp }

// rawWord is a single_word bareword alias, e.g. "dir".
type rawWord struct {
	text string
	sp   Span
}

func (n *rawWord) span() Span { return n.sp }

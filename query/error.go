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

import "fmt"

// ErrorKind discriminates the DetectError taxonomy described by the
// compile surface. Every kind that carries a source location also
// carries a Span into the text passed to Compile.
type ErrorKind int

const (
	Syntax ErrorKind = iota
	UnterminatedString
	StrayQuote
	UnknownSelector
	UnknownOperator
	IncompatibleOperator
	InvalidValue
	UnknownAlias
	InvalidEscape
	UnterminatedEscape
	InvalidStructuredPath
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case UnterminatedString:
		return "UnterminatedString"
	case StrayQuote:
		return "StrayQuote"
	case UnknownSelector:
		return "UnknownSelector"
	case UnknownOperator:
		return "UnknownOperator"
	case IncompatibleOperator:
		return "IncompatibleOperator"
	case InvalidValue:
		return "InvalidValue"
	case UnknownAlias:
		return "UnknownAlias"
	case InvalidEscape:
		return "InvalidEscape"
	case UnterminatedEscape:
		return "UnterminatedEscape"
	case InvalidStructuredPath:
		return "InvalidStructuredPath"
	case Internal:
		return "Internal"
	}
	return "Unknown"
}

// DetectError is the single error type returned by Compile. It retains
// the original source text and one or more byte spans so a caller can
// render a pointer-at-source diagnostic without re-parsing, per the
// compile surface's error contract.
type DetectError struct {
	Kind ErrorKind

	// Source is the full text that was passed to Compile.
	Source string

	// Span is the primary location of the error.
	Span Span

	// SelectorSpan, OperatorSpan and ValueSpan are populated for
	// typecheck errors that pin down a sub-region of a predicate.
	SelectorSpan Span
	OperatorSpan Span
	ValueSpan    Span

	// Message is a short human-readable description.
	Message string

	// Expected lists the productions the parser would have accepted
	// at Span, for Syntax errors.
	Expected []string

	// Suggestion holds a near-miss alias correction, when one exists.
	Suggestion string
}

func (e *DetectError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (did you mean %q?)", e.Kind, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newSyntaxErr(src string, span Span, expected []string, msg string) *DetectError {
	return &DetectError{Kind: Syntax, Source: src, Span: span, Expected: expected, Message: msg}
}

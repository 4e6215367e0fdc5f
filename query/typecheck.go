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
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/fileql/navigate"
	"github.com/sourcegraph/fileql/sizeparse"
	"github.com/sourcegraph/fileql/timeparse"
)

// Compile parses source and typechecks it into a strongly-typed
// expression tree, per the compile surface in spec §6.1.
func Compile(source string) (Expr, *DetectError) {
	raw, err := parseProgram(source)
	if err != nil {
		return nil, err
	}
	tc := &typechecker{src: source, now: time.Now()}
	return tc.check(raw)
}

type typechecker struct {
	src string
	now time.Time
}

func (tc *typechecker) check(n rawNode) (Expr, *DetectError) {
	switch v := n.(type) {
	case *rawAnd:
		l, err := tc.check(v.left)
		if err != nil {
			return nil, err
		}
		r, err := tc.check(v.right)
		if err != nil {
			return nil, err
		}
		return &And{Left: l, Right: r}, nil
	case *rawOr:
		l, err := tc.check(v.left)
		if err != nil {
			return nil, err
		}
		r, err := tc.check(v.right)
		if err != nil {
			return nil, err
		}
		return &Or{Left: l, Right: r}, nil
	case *rawNot:
		c, err := tc.check(v.child)
		if err != nil {
			return nil, err
		}
		return &Not{Child: c}, nil
	case *rawPredicate:
		return tc.checkPredicate(v)
	case *rawGlob:
		g, gerr := CompileGlob(v.pattern)
		if gerr != nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.sp,
				Message: "invalid glob pattern: " + gerr.Error()}
		}
		return NewPredicate(Predicate{Name: &NamePredicate{Kind: NameGlobPattern, Glob: g}}), nil
	case *rawWord:
		return tc.checkWord(v)
	}
	return nil, &DetectError{Kind: Internal, Source: tc.src, Message: "unreachable raw node kind"}
}

// checkWord resolves spec §4.2 point 4: single-word / glob resolution.
func (tc *typechecker) checkWord(v *rawWord) (Expr, *DetectError) {
	if t, ok := ParseFileType(v.text); ok {
		return NewPredicate(Predicate{Metadata: &MetadataPredicate{Kind: MetaType, Type: NewEnumEquals(t)}}), nil
	}
	if containsGlobMeta(v.text) {
		g, gerr := CompileGlob(v.text)
		if gerr != nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.sp,
				Message: "invalid glob pattern: " + gerr.Error()}
		}
		return NewPredicate(Predicate{Name: &NamePredicate{Kind: NameGlobPattern, Glob: g}}), nil
	}
	suggestion := closestAlias(v.text, fileTypeAliasNames())
	return nil, &DetectError{
		Kind: UnknownAlias, Source: tc.src, Span: v.sp,
		Message:    "unknown bareword " + strconv.Quote(v.text),
		Suggestion: suggestion,
	}
}

func (tc *typechecker) checkPredicate(v *rawPredicate) (Expr, *DetectError) {
	sel, structuredPath, format, kind := resolveSelector(v.selector)
	if kind == 0 {
		suggestion := closestAlias(v.selector, allSelectorNames())
		return nil, &DetectError{
			Kind: UnknownSelector, Source: tc.src, Span: v.selectorSp,
			Message: "unknown selector " + strconv.Quote(v.selector), Suggestion: suggestion,
		}
	}

	op, ok := canonicalOperator(v.operator)
	if !ok {
		return nil, &DetectError{
			Kind: UnknownOperator, Source: tc.src, Span: v.operatorSp,
			Message: "unknown operator " + strconv.Quote(v.operator),
		}
	}

	if kind == 2 {
		return tc.checkStructuredPredicate(v, structuredPath, format, op)
	}

	switch sel.cat {
	case catString:
		return tc.checkStringPredicate(v, sel, op)
	case catNumeric:
		return tc.checkNumericPredicate(v, sel, op)
	case catTemporal:
		return tc.checkTemporalPredicate(v, sel, op)
	case catEnum:
		return tc.checkEnumPredicate(v, sel, op)
	case catContent:
		return tc.checkContentPredicate(v, op)
	}
	return nil, &DetectError{Kind: Internal, Source: tc.src, Span: v.sp, Message: "unhandled selector category"}
}

func incompatible(tc *typechecker, v *rawPredicate, allowed string) *DetectError {
	return &DetectError{
		Kind: IncompatibleOperator, Source: tc.src,
		Span: v.sp, SelectorSpan: v.selectorSp, OperatorSpan: v.operatorSp,
		Message: "operator " + strconv.Quote(v.operator) + " is not valid here; expected one of " + allowed,
	}
}

// checkStringPredicate resolves string selectors, accepting
// `== != ~= contains in`, per spec §4.2 point 2.
func (tc *typechecker) checkStringPredicate(v *rawPredicate, sel canonicalSelector, op string) (Expr, *DetectError) {
	var m StringMatcher
	switch op {
	case "==":
		if v.value.set != nil {
			return nil, incompatible(tc, v, "== != ~= contains in")
		}
		m = NewStringEquals(v.value.text)
	case "!=":
		if v.value.set != nil {
			return nil, incompatible(tc, v, "== != ~= contains in")
		}
		m = NewStringNotEquals(v.value.text)
	case "contains":
		m = NewStringContains(v.value.text)
	case "~=":
		pattern := v.value.text
		if pattern == "*" {
			pattern = ".*"
		}
		re, rerr := NewHybridRegex(pattern)
		if rerr != nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
				Message: "invalid regex: " + rerr.Error()}
		}
		m = NewStringRegex(re)
	case "in":
		if v.value.set == nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
				Message: "`in` requires a set literal, e.g. [a, b]"}
		}
		items := make([]string, len(v.value.set))
		for i, item := range v.value.set {
			items[i] = item.text
		}
		m = NewStringIn(items)
	default:
		return nil, incompatible(tc, v, "== != ~= contains in")
	}

	pred := &NamePredicate{Kind: sel.name, String: m}
	return NewPredicate(Predicate{Name: pred}), nil
}

// checkNumericPredicate resolves numeric selectors (size, depth),
// accepting `== != > >= < <=`, lowered to Bound per spec §4.2 point 5 and
// §9 Open Question (c): `>` excludes, `>=` includes the boundary.
func (tc *typechecker) checkNumericPredicate(v *rawPredicate, sel canonicalSelector, op string) (Expr, *DetectError) {
	var n int64
	var err error
	if sel.isMeta && sel.meta == MetaFilesize && containsAlpha(v.value.text) {
		n, err = sizeparse.Parse(v.value.text)
	} else {
		n, err = strconv.ParseInt(v.value.text, 10, 64)
		if err != nil {
			// Fall back to the size grammar so "size > 1kb" and
			// "size > 2048" both work uniformly.
			n, err = sizeparse.Parse(v.value.text)
		}
	}
	if err != nil || n < 0 {
		return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
			Message: "invalid numeric value " + strconv.Quote(v.value.text)}
	}

	var nm NumberMatcher
	switch op {
	case "==":
		nm = NewNumberEquals(n)
	case "!=":
		nm = NewNumberNotEquals(n)
	case ">":
		nm = NewNumberIn(BoundLeft(n + 1))
	case ">=":
		nm = NewNumberIn(BoundLeft(n))
	case "<":
		nm = NewNumberIn(BoundRight(n))
	case "<=":
		nm = NewNumberIn(BoundRight(n + 1))
	default:
		return nil, incompatible(tc, v, "== != > >= < <=")
	}

	if sel.isDepth {
		return NewPredicate(Predicate{Name: &NamePredicate{Kind: NameDepth, Number: nm}}), nil
	}
	return NewPredicate(Predicate{Metadata: &MetadataPredicate{Kind: sel.meta, Number: nm}}), nil
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// checkTemporalPredicate resolves modified/created/accessed, accepting
// `== != > >= < <=` plus before/after/on operator synonyms (already
// canonicalized to </>/==), per spec §4.2 point 2.
func (tc *typechecker) checkTemporalPredicate(v *rawPredicate, sel canonicalSelector, op string) (Expr, *DetectError) {
	t, terr := timeparse.Parse(v.value.text, tc.now)
	if terr != nil {
		return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
			Message: terr.Error()}
	}

	var tm TimeMatcher
	switch op {
	case "==":
		tm = TimeMatcher{Op: TimeEquals, Operand: t}
	case "!=":
		tm = TimeMatcher{Op: TimeNotEquals, Operand: t}
	case ">":
		tm = TimeMatcher{Op: TimeAfter, Operand: t}
	case ">=":
		tm = TimeMatcher{Op: TimeAfterOrEqual, Operand: t}
	case "<":
		tm = TimeMatcher{Op: TimeBefore, Operand: t}
	case "<=":
		tm = TimeMatcher{Op: TimeBeforeOrEqual, Operand: t}
	default:
		return nil, incompatible(tc, v, "== != > >= < <= before after on")
	}
	return NewPredicate(Predicate{Metadata: &MetadataPredicate{Kind: sel.meta, Time: tm}}), nil
}

// checkEnumPredicate resolves `type`, accepting `== != in`.
func (tc *typechecker) checkEnumPredicate(v *rawPredicate, sel canonicalSelector, op string) (Expr, *DetectError) {
	parseOne := func(text string, sp Span) (FileType, *DetectError) {
		t, ok := ParseFileType(text)
		if !ok {
			return 0, &DetectError{Kind: InvalidValue, Source: tc.src, Span: sp,
				Message: "unknown file type " + strconv.Quote(text),
				Suggestion: closestAlias(text, fileTypeAliasNames())}
		}
		return t, nil
	}

	var em EnumMatcher
	switch op {
	case "==":
		t, derr := parseOne(v.value.text, v.value.sp)
		if derr != nil {
			return nil, derr
		}
		em = NewEnumEquals(t)
	case "!=":
		t, derr := parseOne(v.value.text, v.value.sp)
		if derr != nil {
			return nil, derr
		}
		em = NewEnumNotEquals(t)
	case "in":
		if v.value.set == nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
				Message: "`in` requires a set literal, e.g. [dir, file]"}
		}
		items := make([]FileType, len(v.value.set))
		for i, item := range v.value.set {
			t, derr := parseOne(item.text, item.sp)
			if derr != nil {
				return nil, derr
			}
			items[i] = t
		}
		em = NewEnumIn(items)
	default:
		return nil, incompatible(tc, v, "== != in")
	}
	return NewPredicate(Predicate{Metadata: &MetadataPredicate{Kind: MetaType, Type: em}}), nil
}

// checkContentPredicate resolves `contents`, accepting only
// `== ~= contains` (no negation, no set), per spec §4.2 point 2. An
// equality match is fixed as an anchored regex (`^pattern$`), resolving
// Open Question (b).
func (tc *typechecker) checkContentPredicate(v *rawPredicate, op string) (Expr, *DetectError) {
	var pattern string
	switch op {
	case "==":
		pattern = "^" + quoteRegexMeta(v.value.text) + "$"
	case "contains":
		pattern = quoteRegexMeta(v.value.text)
	case "~=":
		pattern = v.value.text
		if pattern == "*" {
			pattern = ".*"
		}
	default:
		return nil, incompatible(tc, v, "== ~= contains")
	}

	re, rerr := NewHybridRegex(pattern)
	if rerr != nil {
		return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
			Message: "invalid regex: " + rerr.Error()}
	}
	cp := &ContentPredicate{Pattern: v.value.text, regex: re}
	return NewPredicate(Predicate{Content: cp}), nil
}

func quoteRegexMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// checkStructuredPredicate resolves a `yaml.`/`json.`/`toml.` selector
// into a StructuredPredicate, accepting the same operator set as string
// or numeric selectors depending on whether the value parses as a
// number; resolved per DESIGN.md's Open Question on structured selector
// syntax (spec §4.2's table does not enumerate one).
func (tc *typechecker) checkStructuredPredicate(v *rawPredicate, path string, format StructuredFormat, op string) (Expr, *DetectError) {
	if _, perr := navigate.ParsePath(path); perr != nil {
		return nil, &DetectError{Kind: InvalidStructuredPath, Source: tc.src, Span: v.selectorSp,
			Message: perr.Error()}
	}

	sp := &StructuredPredicate{Format: format, Path: path}
	if n, nerr := strconv.ParseFloat(v.value.text, 64); nerr == nil && v.value.set == nil {
		sp.Op = StructuredNumber
		switch op {
		case "==":
			sp.Number = NewNumberEquals(int64(n))
		case "!=":
			sp.Number = NewNumberNotEquals(int64(n))
		case ">":
			sp.Number = NewNumberIn(BoundLeft(int64(n) + 1))
		case ">=":
			sp.Number = NewNumberIn(BoundLeft(int64(n)))
		case "<":
			sp.Number = NewNumberIn(BoundRight(int64(n)))
		case "<=":
			sp.Number = NewNumberIn(BoundRight(int64(n) + 1))
		default:
			return nil, incompatible(tc, v, "== != > >= < <=")
		}
		return NewPredicate(Predicate{Structured: sp}), nil
	}

	sp.Op = StructuredString
	switch op {
	case "==":
		sp.String = NewStringEquals(v.value.text)
	case "!=":
		sp.String = NewStringNotEquals(v.value.text)
	case "contains":
		sp.String = NewStringContains(v.value.text)
	case "~=":
		re, rerr := NewHybridRegex(v.value.text)
		if rerr != nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
				Message: "invalid regex: " + rerr.Error()}
		}
		sp.String = NewStringRegex(re)
	case "in":
		if v.value.set == nil {
			return nil, &DetectError{Kind: InvalidValue, Source: tc.src, Span: v.value.sp,
				Message: "`in` requires a set literal"}
		}
		items := make([]string, len(v.value.set))
		for i, item := range v.value.set {
			items[i] = item.text
		}
		sp.String = NewStringIn(items)
	default:
		return nil, incompatible(tc, v, "== != ~= contains in")
	}
	return NewPredicate(Predicate{Structured: sp}), nil
}

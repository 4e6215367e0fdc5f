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
)

// parser is the current, normative grammar implementation: a
// precedence-climbing recursive descent parser over or_expr / and_expr /
// not_expr / primary. An older recursive-descent variant existed upstream
// but is not reproduced here; only this one is normative.
type parser struct {
	src string
	lex *lexer
	cur token
}

func newParser(src string) (*parser, *DetectError) {
	p := &parser{src: src, lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() *DetectError {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// parseProgram parses `program := expression EOI`.
func parseProgram(src string) (rawNode, *DetectError) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	node, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, newSyntaxErr(src, p.cur.span, []string{"and", "&&", "or", "||", "EOF"},
			"unexpected trailing input")
	}
	return node, nil
}

func (p *parser) parseOrExpr() (rawNode, *DetectError) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &rawOr{left: left, right: right, sp: union(left.span(), right.span())}
	}
	return left, nil
}

func (p *parser) parseAndExpr() (rawNode, *DetectError) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &rawAnd{left: left, right: right, sp: union(left.span(), right.span())}
	}
	return left, nil
}

func (p *parser) parseNotExpr() (rawNode, *DetectError) {
	if p.cur.kind == tokNot {
		start := p.cur.span
		if err := p.advance(); err != nil {
			return nil, err
		}
		child, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &rawNot{child: child, sp: union(start, child.span())}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (rawNode, *DetectError) {
	switch p.cur.kind {
	case tokLParen:
		start := p.cur.span
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, newSyntaxErr(p.src, p.cur.span, []string{")"}, "expected closing parenthesis")
		}
		end := p.cur.span
		if err := p.advance(); err != nil {
			return nil, err
		}
		_ = union(start, end)
		return inner, nil
	case tokWord:
		return p.parsePredicateOrAtom()
	case tokEOF:
		return nil, newSyntaxErr(p.src, p.cur.span,
			[]string{"(", "selector", "glob", "word"}, "unexpected end of expression")
	default:
		return nil, newSyntaxErr(p.src, p.cur.span,
			[]string{"(", "selector", "glob", "word"}, "unexpected token "+strconv.Quote(p.cur.text))
	}
}

// parsePredicateOrAtom disambiguates `selector operator value`, a bare
// glob, and a single_word alias, all of which start with a bareword.
func (p *parser) parsePredicateOrAtom() (rawNode, *DetectError) {
	word := p.cur
	// The lexer folds a dotted path (e.g. "path.extension") into a single
	// bareword token, since '.' is not a raw_token stop character.
	selector := word.text
	selectorSp := word.span
	if err := p.advance(); err != nil {
		return nil, err
	}

	if isOperatorToken(p.cur) {
		opTok := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		sp := union(selectorSp, val.sp)
		return &rawPredicate{
			selector: selector, selectorSp: selectorSp,
			operator: opTok.text, operatorSp: opTok.span,
			value: val, sp: sp,
		}, nil
	}

	// No operator followed: this bareword is a glob or a single_word
	// alias, not a predicate. The dotted-selector lookahead above only
	// applies to predicates, so a lone word containing '.' with no
	// operator is still classified by its glob metacharacters.
	if containsGlobMeta(selector) {
		return &rawGlob{pattern: selector, sp: selectorSp}, nil
	}
	return &rawWord{text: selector, sp: selectorSp}, nil
}

func isOperatorToken(t token) bool {
	if t.kind == tokSymbol {
		return true
	}
	if t.kind != tokWord {
		return false
	}
	switch strings.ToLower(t.text) {
	case "in", "contains", "matches", "eq", "ne", "gt", "lt", "gte", "lte", "before", "after", "on":
		return true
	}
	return false
}

func containsGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// parseValue parses `value := quoted_string | raw_token | set_literal`.
func (p *parser) parseValue() (rawValue, *DetectError) {
	if p.cur.kind == tokLBracket {
		return p.parseSetLiteral()
	}
	if p.cur.kind == tokString {
		v := rawValue{quoted: true, text: p.cur.text, sp: p.cur.span}
		if err := p.advance(); err != nil {
			return rawValue{}, err
		}
		return v, nil
	}
	// raw_token: any bareword, including reserved words by position.
	if p.cur.kind == tokWord || p.cur.kind == tokAnd || p.cur.kind == tokOr || p.cur.kind == tokNot {
		v := rawValue{text: p.cur.text, sp: p.cur.span}
		if err := p.advance(); err != nil {
			return rawValue{}, err
		}
		return v, nil
	}
	return rawValue{}, newSyntaxErr(p.src, p.cur.span,
		[]string{"value", "quoted string", "["}, "expected a value")
}

func (p *parser) parseSetLiteral() (rawValue, *DetectError) {
	start := p.cur.span
	if err := p.advance(); err != nil {
		return rawValue{}, err
	}
	var items []rawValue
	if p.cur.kind != tokRBracket {
		for {
			v, err := p.parseValue()
			if err != nil {
				return rawValue{}, err
			}
			items = append(items, v)
			if p.cur.kind == tokComma {
				if err := p.advance(); err != nil {
					return rawValue{}, err
				}
				continue
			}
			break
		}
	}
	if p.cur.kind != tokRBracket {
		return rawValue{}, newSyntaxErr(p.src, p.cur.span, []string{"]", ","}, "expected closing bracket")
	}
	end := p.cur.span
	if err := p.advance(); err != nil {
		return rawValue{}, err
	}
	return rawValue{set: items, sp: union(start, end)}, nil
}

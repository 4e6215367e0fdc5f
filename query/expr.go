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

// Expr is a free Boolean algebra over Predicate leaves (spec §3.1). It is
// realized here as a closed set of node types implementing this marker
// interface rather than as a Go generic union; the leaf type is fixed.
// The eval package evaluates one tree across all phases, memoizing each
// node once it resolves, instead of rebuilding the tree per phase.
//
// A tree is finite, acyclic and owned uniquely by its root: construction
// is only through NewAnd/NewOr/NewNot/NewPredicate or by the
// typechecker, and no function here mutates a node in place.
type Expr interface {
	isExpr()
	String() string
}

// Literal is a collapsed Boolean result.
type Literal struct{ Value bool }

func (Literal) isExpr() {}
func (l Literal) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}

// Not is logical negation.
type Not struct{ Child Expr }

func (*Not) isExpr() {}
func (n *Not) String() string { return fmt.Sprintf("not(%s)", n.Child) }

// And is a binary conjunction; n-ary expressions are represented as
// left-leaning chains, as the parser builds them left-associatively.
type And struct{ Left, Right Expr }

func (*And) isExpr() {}
func (a *And) String() string { return fmt.Sprintf("and(%s, %s)", a.Left, a.Right) }

// Or is a binary disjunction.
type Or struct{ Left, Right Expr }

func (*Or) isExpr() {}
func (o *Or) String() string { return fmt.Sprintf("or(%s, %s)", o.Left, o.Right) }

// Pred is a leaf holding one Predicate payload.
type Pred struct{ P Predicate }

func (*Pred) isExpr() {}
func (p *Pred) String() string { return p.P.String() }

func NewAnd(l, r Expr) Expr { return &And{Left: l, Right: r} }
func NewOr(l, r Expr) Expr  { return &Or{Left: l, Right: r} }
func NewNot(e Expr) Expr    { return &Not{Child: e} }
func NewPredicate(p Predicate) Expr { return &Pred{P: p} }

// Simplify applies the algebraic identities of spec §4.4 bottom-up:
// Not∘Not = id, And/Or absorbing and identity laws for Literal children.
// It is the Expr-level analogue of the teacher's query.Simplify /
// query.evalConstants over its own Q tree.
func Simplify(e Expr) Expr {
	switch n := e.(type) {
	case *Not:
		child := Simplify(n.Child)
		if lit, ok := child.(Literal); ok {
			return Literal{Value: !lit.Value}
		}
		if inner, ok := child.(*Not); ok {
			return inner.Child
		}
		return &Not{Child: child}
	case *And:
		l := Simplify(n.Left)
		r := Simplify(n.Right)
		if lit, ok := l.(Literal); ok {
			if !lit.Value {
				return Literal{Value: false}
			}
			return r
		}
		if lit, ok := r.(Literal); ok {
			if !lit.Value {
				return Literal{Value: false}
			}
			return l
		}
		return &And{Left: l, Right: r}
	case *Or:
		l := Simplify(n.Left)
		r := Simplify(n.Right)
		if lit, ok := l.(Literal); ok {
			if lit.Value {
				return Literal{Value: true}
			}
			return r
		}
		if lit, ok := r.(Literal); ok {
			if lit.Value {
				return Literal{Value: true}
			}
			return l
		}
		return &Or{Left: l, Right: r}
	default:
		return e
	}
}

// Map runs f bottom-up over every node of e, mirroring the teacher's
// query.Map: children are transformed first, then f is applied to the
// rebuilt node.
func Map(e Expr, f func(Expr) Expr) Expr {
	switch n := e.(type) {
	case *And:
		e = &And{Left: Map(n.Left, f), Right: Map(n.Right, f)}
	case *Or:
		e = &Or{Left: Map(n.Left, f), Right: Map(n.Right, f)}
	case *Not:
		e = &Not{Child: Map(n.Child, f)}
	}
	return f(e)
}

// VisitPredicates calls v on every Pred leaf of e.
func VisitPredicates(e Expr, v func(Predicate)) {
	Map(e, func(n Expr) Expr {
		if p, ok := n.(*Pred); ok {
			v(p.P)
		}
		return n
	})
}

// AsLiteral reports whether e has collapsed to a known Boolean.
func AsLiteral(e Expr) (bool, bool) {
	if lit, ok := e.(Literal); ok {
		return lit.Value, true
	}
	return false, false
}

// Copyright 2018 Google Inc. All rights reserved.
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

// Package eval implements the multi-phase, short-circuiting evaluator of
// spec §5: a compiled query.Expr is matched against one filesystem entity
// by trying increasingly expensive phases in order — path, metadata,
// structured data, content — and stopping as soon as the expression
// collapses to a known Boolean, so an entity never pays for I/O an
// earlier, cheaper phase already ruled out.
//
// The cost-tiered matches(cost, known) protocol below is the Expr-level
// analogue of the teacher's matchTree.matches(cp, cost, known): each
// phase is a cost level, and a node only commits to an answer once the
// caller has paid for that level.
package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/fileql/query"
)

// Phase identifies one of the four increasing-cost evaluation tiers of
// spec §5.1.
type Phase int

const (
	PhasePath Phase = iota
	PhaseMetadata
	PhaseStructured
	PhaseContent
)

func (p Phase) String() string {
	switch p {
	case PhasePath:
		return "path"
	case PhaseMetadata:
		return "metadata"
	case PhaseStructured:
		return "structured"
	case PhaseContent:
		return "content"
	}
	return "unknown"
}

const (
	costMin = int(PhasePath)
	costMax = int(PhaseContent)
)

// PhaseObserver records one phase round's outcome: whether it resolved
// the expression at that cost level, and how long it took. It lets
// Evaluate report RED-style instrumentation without depending on a
// concrete metrics backend.
type PhaseObserver interface {
	Observe(phase string, resolved bool, d time.Duration)
}

type phaseObserverKey struct{}

// WithPhaseObserver returns a context that makes Evaluate report each
// cost round it runs to obs, keyed by Phase.String(). Callers that don't
// need instrumentation can pass a plain context.Background(); Evaluate
// is a no-op towards observation in that case.
func WithPhaseObserver(ctx context.Context, obs PhaseObserver) context.Context {
	return context.WithValue(ctx, phaseObserverKey{}, obs)
}

func phaseObserverFrom(ctx context.Context) PhaseObserver {
	obs, _ := ctx.Value(phaseObserverKey{}).(PhaseObserver)
	return obs
}

// predicateCost maps a leaf predicate to the cheapest phase that can
// decide it, per spec §5.1's phase assignment table.
func predicateCost(p query.Predicate) int {
	switch {
	case p.Name != nil:
		return int(PhasePath)
	case p.Metadata != nil:
		return int(PhaseMetadata)
	case p.Structured != nil:
		return int(PhaseStructured)
	case p.Content != nil:
		return int(PhaseContent)
	}
	return int(PhaseContent)
}

// Evaluate matches expr against ent, running phases in increasing cost
// order and stopping as soon as the root collapses to a known Boolean.
// An error from a phase (e.g. a TOCTOU stat failure) aborts evaluation;
// callers should treat that as spec §5.3's soft-failure case and skip the
// entity rather than fail the whole query.
func Evaluate(ctx context.Context, expr query.Expr, ent Entity) (bool, error) {
	obs := phaseObserverFrom(ctx)
	known := make(map[query.Expr]bool)
	for cost := costMin; cost <= costMax; cost++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		start := time.Now()
		v, sure, err := evalNode(ctx, expr, cost, known, ent)
		if obs != nil {
			obs.Observe(Phase(cost).String(), sure, time.Since(start))
		}
		if err != nil {
			return false, err
		}
		if sure {
			return v, nil
		}
		if cost == costMax {
			return false, fmt.Errorf("eval: expression %s did not resolve at maximum cost", expr)
		}
	}
	return false, fmt.Errorf("eval: unreachable")
}

// evalNode memoizes matchNode results across cost rounds, mirroring the
// teacher's evalMatchTree: a node already resolved at a cheaper round is
// never recomputed.
func evalNode(ctx context.Context, e query.Expr, cost int, known map[query.Expr]bool, ent Entity) (v, sure bool, err error) {
	if v, ok := known[e]; ok {
		return v, true, nil
	}
	v, sure, err = matchNode(ctx, e, cost, known, ent)
	if err != nil {
		return false, false, err
	}
	if sure {
		known[e] = v
	}
	return v, sure, nil
}

func matchNode(ctx context.Context, e query.Expr, cost int, known map[query.Expr]bool, ent Entity) (bool, bool, error) {
	switch n := e.(type) {
	case query.Literal:
		return n.Value, true, nil
	case *query.Not:
		v, sure, err := evalNode(ctx, n.Child, cost, known, ent)
		if err != nil {
			return false, false, err
		}
		return !v, sure, nil
	case *query.And:
		return evalAnd(ctx, n, cost, known, ent)
	case *query.Or:
		return evalOr(ctx, n, cost, known, ent)
	case *query.Pred:
		return evalPred(ctx, n.P, cost, ent)
	}
	return false, false, fmt.Errorf("eval: unhandled expression node %T", e)
}

// evalAnd short-circuits the moment a sure-false child is found, before
// evaluating the remaining children — the essential saving the phase
// ordering buys for a query like `type == dir and contents ~= "TODO"`.
func evalAnd(ctx context.Context, n *query.And, cost int, known map[query.Expr]bool, ent Entity) (bool, bool, error) {
	allSure := true
	for _, child := range []query.Expr{n.Left, n.Right} {
		v, sure, err := evalNode(ctx, child, cost, known, ent)
		if err != nil {
			return false, false, err
		}
		if sure && !v {
			return false, true, nil
		}
		if !sure {
			allSure = false
		}
	}
	return true, allSure, nil
}

// evalOr short-circuits the moment a sure-true child is found.
func evalOr(ctx context.Context, n *query.Or, cost int, known map[query.Expr]bool, ent Entity) (bool, bool, error) {
	allSure := true
	for _, child := range []query.Expr{n.Left, n.Right} {
		v, sure, err := evalNode(ctx, child, cost, known, ent)
		if err != nil {
			return false, false, err
		}
		if sure && v {
			return true, true, nil
		}
		if !sure {
			allSure = false
		}
	}
	return false, allSure, nil
}

func evalPred(ctx context.Context, p query.Predicate, cost int, ent Entity) (bool, bool, error) {
	if cost < predicateCost(p) {
		return false, false, nil
	}
	v, err := matchPredicate(ctx, p, ent)
	if err != nil {
		return false, false, err
	}
	return v, true, nil
}

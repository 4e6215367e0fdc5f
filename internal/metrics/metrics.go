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

// Package metrics exposes Prometheus instrumentation around the walk and
// evaluation phases, adapted from the teacher's RedFMetrics helper
// (cmd/zoekt-sourcegraph-indexserver/metrics.go): one counter/histogram
// pair per phase, labelled by outcome, plus a running total of the sizes
// of matched entities.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PhaseMetrics is the RED-style instrumentation for one evaluator phase:
// how often it ran, how long it took, split by whether it resolved the
// expression at that cost level.
type PhaseMetrics struct {
	Evaluations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// Observe records one phase invocation. resolved distinguishes a phase
// round that collapsed the expression to a known Boolean from one that
// had to hand off to the next, costlier phase.
func (m *PhaseMetrics) Observe(phase string, resolved bool, d time.Duration) {
	outcome := "unresolved"
	if resolved {
		outcome = "resolved"
	}
	m.Evaluations.WithLabelValues(phase, outcome).Inc()
	m.Duration.WithLabelValues(phase, outcome).Observe(d.Seconds())
}

// Registry bundles every metric fileql exports, so main can register
// them all with one call and pass the struct down to the walker and
// evaluator call sites.
type Registry struct {
	Phases *PhaseMetrics

	EntitiesVisited prometheus.Counter
	EntitiesMatched prometheus.Counter
	EntitiesSkipped prometheus.Counter
	BytesRead       prometheus.Counter
}

// NewRegistry constructs a fresh Registry. Call MustRegister to wire it
// into a prometheus.Registerer (typically prometheus.DefaultRegisterer).
func NewRegistry() *Registry {
	return &Registry{
		Phases: &PhaseMetrics{
			Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "fileql_phase_evaluations_total",
				Help: "Number of times an evaluator phase was run, by phase and outcome.",
			}, []string{"phase", "outcome"}),
			Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "fileql_phase_duration_seconds",
				Help:    "Time spent in an evaluator phase, by phase and outcome.",
				Buckets: prometheus.DefBuckets,
			}, []string{"phase", "outcome"}),
		},
		EntitiesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileql_entities_visited_total",
			Help: "Number of filesystem entities considered during a search.",
		}),
		EntitiesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileql_entities_matched_total",
			Help: "Number of filesystem entities that matched the compiled query.",
		}),
		EntitiesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileql_entities_skipped_total",
			Help: "Number of filesystem entities skipped due to a soft evaluation failure.",
		}),
		BytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fileql_bytes_read_total",
			Help: "Total size in bytes of matched entities, as reported by their metadata.",
		}),
	}
}

// MustRegister registers every metric in r with reg, panicking on
// duplicate registration the way prometheus.MustRegister does.
func (r *Registry) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		r.Phases.Evaluations,
		r.Phases.Duration,
		r.EntitiesVisited,
		r.EntitiesMatched,
		r.EntitiesSkipped,
		r.BytesRead,
	)
}

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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestPhaseMetricsObserve(t *testing.T) {
	r := NewRegistry()
	r.Phases.Observe("path", true, 10*time.Millisecond)
	r.Phases.Observe("content", false, time.Second)

	m := &dto.Metric{}
	require.NoError(t, r.Phases.Evaluations.WithLabelValues("path", "resolved").Write(m))
	require.Equal(t, float64(1), m.GetCounter().GetValue())
}

func TestRegistryMustRegister(t *testing.T) {
	r := NewRegistry()
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { r.MustRegister(reg) })

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

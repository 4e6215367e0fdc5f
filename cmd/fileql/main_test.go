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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sourcegraph/fileql/internal/metrics"
	"github.com/sourcegraph/fileql/query"
)

func TestRunWritesMatchedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("hello"), 0o644))

	expr, derr := query.Compile(`ext == "go"`)
	require.Nil(t, derr)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), root, expr, metrics.NewRegistry(), &buf, "\n", zap.NewNop()))
	require.Equal(t, "a.go\n", buf.String())
}

func TestRunCountsVisitedAndMatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644))

	expr, derr := query.Compile(`name == "a.go"`)
	require.Nil(t, derr)

	reg := metrics.NewRegistry()
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), root, expr, reg, &buf, "\n", zap.NewNop()))
	require.Equal(t, "a.go\n", buf.String())

	m := &dto.Metric{}
	require.NoError(t, reg.Phases.Evaluations.WithLabelValues("path", "resolved").Write(m))
	require.Equal(t, float64(2), m.GetCounter().GetValue(), "every visited entity's path round must be observed")

	visited := &dto.Metric{}
	require.NoError(t, reg.EntitiesVisited.Write(visited))
	require.Equal(t, float64(2), visited.GetCounter().GetValue())

	matched := &dto.Metric{}
	require.NoError(t, reg.EntitiesMatched.Write(matched))
	require.Equal(t, float64(1), matched.GetCounter().GetValue())
}

func TestRunNullSeparator(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("x"), 0o644))

	expr, derr := query.Compile(`ext == "go"`)
	require.Nil(t, derr)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), root, expr, metrics.NewRegistry(), &buf, "\x00", zap.NewNop()))
	require.Equal(t, "a.go\x00", buf.String())
}

func TestPrintDetectErrorRendersCaret(t *testing.T) {
	source := `ext === "go"`
	_, derr := query.Compile(source)
	require.NotNil(t, derr)

	var buf bytes.Buffer
	printDetectError(&buf, source, derr)

	out := buf.String()
	require.Contains(t, out, source[:len(source)])
	require.True(t, strings.Contains(out, "^"))
}

func TestIsBrokenPipe(t *testing.T) {
	require.False(t, isBrokenPipe(nil))
	require.False(t, isBrokenPipe(os.ErrClosed))
}

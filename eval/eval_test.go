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

package eval

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/fileql/navigate"
	"github.com/sourcegraph/fileql/query"
)

// fakeEntity is an in-memory Entity used to drive the evaluator without
// touching a real filesystem, in the same spirit as the teacher's
// in-memory contentProvider fixtures in matchtree_test.go.
type fakeEntity struct {
	path        string
	depth       int
	md          Metadata
	mdErr       error
	content     string
	contentOpen int
	doc         *navigate.Document
}

func (f *fakeEntity) Path() string  { return f.path }
func (f *fakeEntity) Depth() int    { return f.depth }
func (f *fakeEntity) Metadata(ctx context.Context) (Metadata, error) {
	return f.md, f.mdErr
}

func (f *fakeEntity) OpenContent(ctx context.Context) (io.ReadCloser, error) {
	f.contentOpen++
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeEntity) StructuredDocument(ctx context.Context) (*navigate.Document, error) {
	if f.doc == nil {
		f.doc = navigate.NewDocument([]byte(f.content))
	}
	return f.doc, nil
}

func mustCompile(t *testing.T, src string) query.Expr {
	t.Helper()
	e, err := query.Compile(src)
	require.Nil(t, err, "compile %q: %v", src, err)
	return e
}

func TestEvaluatePathOnly(t *testing.T) {
	e := mustCompile(t, `ext == "go"`)
	ent := &fakeEntity{path: "internal/eval/eval.go"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, ent.contentOpen, "path predicate must never open content")
}

func TestEvaluateShortCircuitsAndWithoutContent(t *testing.T) {
	e := mustCompile(t, `type == dir and contents ~= "TODO"`)
	ent := &fakeEntity{
		path: "pkg",
		md:   Metadata{Type: query.TypeFile}, // not a dir: And must short-circuit false
	}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, ent.contentOpen, "a sure-false And child must skip content entirely")
}

func TestEvaluateShortCircuitsOrWithoutContent(t *testing.T) {
	e := mustCompile(t, `ext == "go" or contents ~= "TODO"`)
	ent := &fakeEntity{path: "main.go"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, ent.contentOpen, "a sure-true Or child must skip content entirely")
}

func TestEvaluateContentPredicateStreams(t *testing.T) {
	e := mustCompile(t, `contents contains "needle"`)
	ent := &fakeEntity{path: "haystack.txt", content: strings.Repeat("x", 20000) + "needle"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, ent.contentOpen)
}

func TestEvaluateContentPredicateNoMatch(t *testing.T) {
	e := mustCompile(t, `contents contains "needle"`)
	ent := &fakeEntity{path: "haystack.txt", content: "nothing here"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluateMetadataNumeric(t *testing.T) {
	e := mustCompile(t, `size > 1kb`)
	ent := &fakeEntity{path: "f", md: Metadata{Size: 2048}}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)

	ent2 := &fakeEntity{path: "f", md: Metadata{Size: 100}}
	ok, err = Evaluate(context.Background(), e, ent2)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvaluateMetadataTime(t *testing.T) {
	now := time.Now()
	e, derr := query.Compile(`modified > -1h`)
	require.Nil(t, derr)
	ent := &fakeEntity{path: "f", md: Metadata{ModTime: now}}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluateStructuredYAML(t *testing.T) {
	e := mustCompile(t, `yaml.name == "fileql"`)
	ent := &fakeEntity{path: "doc.yaml", content: "name: fileql\nversion: 1\n"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluateStructuredRecursiveDescent(t *testing.T) {
	e := mustCompile(t, `yaml..name == "inner"`)
	ent := &fakeEntity{path: "doc.yaml", content: "outer:\n  name: inner\n"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluatePropagatesMetadataError(t *testing.T) {
	e := mustCompile(t, `size > 0`)
	boom := errors.New("stat: file vanished")
	ent := &fakeEntity{path: "f", mdErr: boom}
	_, err := Evaluate(context.Background(), e, ent)
	require.ErrorIs(t, err, boom)
}

func TestEvaluateNegation(t *testing.T) {
	e := mustCompile(t, `not ext == "go"`)
	ent := &fakeEntity{path: "main.py"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEvaluateGlob(t *testing.T) {
	e := mustCompile(t, `*_test.go`)
	ent := &fakeEntity{path: "eval_test.go"}
	ok, err := Evaluate(context.Background(), e, ent)
	require.NoError(t, err)
	require.True(t, ok)
}

// recordingObserver collects every Observe call, in order, for assertion.
type recordingObserver struct {
	phases []string
}

func (r *recordingObserver) Observe(phase string, resolved bool, d time.Duration) {
	r.phases = append(r.phases, phase)
}

func TestEvaluateReportsPhaseObserver(t *testing.T) {
	e := mustCompile(t, `ext == "go"`)
	ent := &fakeEntity{path: "main.go"}
	obs := &recordingObserver{}
	ctx := WithPhaseObserver(context.Background(), obs)

	ok, err := Evaluate(ctx, e, ent)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"path"}, obs.phases, "a path-only predicate must resolve at the first round and never reach later phases")
}

func TestEvaluateReportsUnresolvedRoundsBeforeResolving(t *testing.T) {
	e := mustCompile(t, `contents ~= "TODO"`)
	ent := &fakeEntity{path: "main.go", content: "// TODO: fix"}
	obs := &recordingObserver{}
	ctx := WithPhaseObserver(context.Background(), obs)

	ok, err := Evaluate(ctx, e, ent)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"path", "metadata", "structured", "content"}, obs.phases)
}

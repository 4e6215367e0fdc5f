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

package walk

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/fileql/eval"
	"github.com/sourcegraph/fileql/query"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestWalkVisitsAllEntities(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "sub/b.go", "package b")

	var paths []string
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		paths = append(paths, e.Path())
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "sub", "sub/b.go"}, paths)
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, IgnoreFile, "sub\n")
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "sub/b.go", "package b")

	var paths []string
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		paths = append(paths, e.Path())
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go"}, paths)
}

func TestWalkHonorsNestedIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "sub/keep.go", "package sub")
	writeFile(t, root, "sub/drop.go", "package sub")
	writeFile(t, root, "sub/"+IgnoreFile, "drop.go\n")

	var paths []string
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		paths = append(paths, e.Path())
		return nil
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "sub", "sub/keep.go"}, paths)
}

func TestWalkMetadataAndContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "hello.txt", "hello world")

	var found eval.Entity
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		if e.Path() == "hello.txt" {
			found = e
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, found)

	md, err := found.Metadata(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len("hello world")), md.Size)
	require.Equal(t, query.TypeFile, md.Type)

	rc, err := found.OpenContent(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	buf := make([]byte, 5)
	n, _ := rc.Read(buf)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestOpenContentReusesStructuredDocumentBytes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.yaml", "name: widget\n")

	var found *fsEntity
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		if e.Path() == "data.yaml" {
			found = e.(*fsEntity)
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, found)

	_, err = found.StructuredDocument(context.Background())
	require.NoError(t, err)
	require.True(t, found.docRead)

	require.NoError(t, os.Remove(found.absPath()))

	rc, err := found.OpenContent(context.Background())
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "name: widget\n", string(content))
}

func TestWalkDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.txt", "x")

	depths := map[string]int{}
	err := Walk(context.Background(), root, func(e eval.Entity) error {
		depths[e.Path()] = e.Depth()
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, depths["a"])
	require.Equal(t, 2, depths["a/b"])
	require.Equal(t, 3, depths["a/b/c.txt"])
}

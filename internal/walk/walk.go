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
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sourcegraph/fileql/eval"
	"github.com/sourcegraph/fileql/navigate"
	"github.com/sourcegraph/fileql/query"
)

// ignoreLevel is one directory's worth of ignore patterns, along with
// the '/'-separated path (relative to the walk root) that its patterns
// are themselves relative to.
type ignoreLevel struct {
	dir string
	m   *IgnoreMatcher
}

// Walk traverses root depth-first, calling visit once per entity (file,
// directory, symlink, ...) not excluded by an IgnoreFile; the ignore files
// themselves are not visited. Ignore files cascade: a .fileqlignore in a subdirectory only adds patterns scoped
// to that subtree, the same way nested .gitignore files layer on top of
// their ancestors'. visit may return fs.SkipDir to prune a directory's
// subtree or fs.SkipAll to stop the walk early, per the
// filepath.WalkDir contract.
//
// A TOCTOU failure reading one entity's info (it vanished between being
// listed and being stat'd) is a soft failure: that entity is skipped and
// the walk continues, per spec §5.3.
func Walk(ctx context.Context, root string, visit func(eval.Entity) error) error {
	root = filepath.Clean(root)

	rootMatcher, err := loadIgnoreMatcher(root)
	if err != nil {
		return err
	}
	stack := []ignoreLevel{{dir: "", m: rootMatcher}}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			return rerr
		}
		if rel == "." {
			return nil
		}
		if !d.IsDir() && d.Name() == IgnoreFile {
			return nil
		}
		rel = filepath.ToSlash(rel)
		parent := path.Dir(rel)
		if parent == "." {
			parent = ""
		}

		for len(stack) > 1 && !isAncestorDir(stack[len(stack)-1].dir, parent) {
			stack = stack[:len(stack)-1]
		}

		if ignored(stack, rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}

		if d.IsDir() {
			m, lerr := loadIgnoreMatcher(p)
			if lerr != nil {
				return lerr
			}
			if m != nil {
				stack = append(stack, ignoreLevel{dir: rel, m: m})
			}
		}

		ent := &fsEntity{
			root:  root,
			rel:   rel,
			depth: strings.Count(rel, "/") + 1,
			info:  info,
		}
		return visit(ent)
	})
}

// isAncestorDir reports whether dir is parent or one of its ancestors,
// where both are '/'-separated paths relative to the walk root ("" is
// the root itself).
func isAncestorDir(dir, parent string) bool {
	if dir == "" {
		return true
	}
	return parent == dir || strings.HasPrefix(parent, dir+"/")
}

// ignored reports whether rel is excluded by any ignore level currently
// on the stack, matching each level's patterns against rel relative to
// that level's own directory.
func ignored(stack []ignoreLevel, rel string) bool {
	for _, lvl := range stack {
		sub := rel
		if lvl.dir != "" {
			sub = strings.TrimPrefix(rel, lvl.dir+"/")
		}
		if lvl.m.Match(sub) {
			return true
		}
	}
	return false
}

func loadIgnoreMatcher(dir string) (*IgnoreMatcher, error) {
	f, err := os.Open(filepath.Join(dir, IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseIgnoreFile(f)
}

// fsEntity is the eval.Entity backed by a real file on disk.
type fsEntity struct {
	root  string
	rel   string
	depth int
	info  os.FileInfo

	docOnce sync.Once
	doc     *navigate.Document
	docErr  error
	docRead bool // set once docOnce's ReadFile succeeds, so OpenContent can reuse the bytes
	docBuf  []byte
}

func (e *fsEntity) Path() string { return e.rel }
func (e *fsEntity) Depth() int   { return e.depth }

func (e *fsEntity) Metadata(ctx context.Context) (eval.Metadata, error) {
	create, access := statTimes(e.info)
	return eval.Metadata{
		Size:       e.info.Size(),
		Type:       fileType(e.info),
		ModTime:    e.info.ModTime(),
		CreateTime: create,
		AccessTime: access,
	}, nil
}

// OpenContent opens the entity's raw bytes for streaming. If
// StructuredDocument already read this entity's bytes into memory (the
// structured phase runs before the content phase, per eval's cost
// ordering), those bytes are replayed from memory instead of reopening
// and rereading the file, per spec §4.5's single-read invariant. A
// content-only query never touches docBuf and keeps streaming straight
// off disk.
func (e *fsEntity) OpenContent(ctx context.Context) (io.ReadCloser, error) {
	if e.docRead {
		return io.NopCloser(bytes.NewReader(e.docBuf)), nil
	}
	return os.Open(e.absPath())
}

func (e *fsEntity) StructuredDocument(ctx context.Context) (*navigate.Document, error) {
	e.docOnce.Do(func() {
		b, err := os.ReadFile(e.absPath())
		if err != nil {
			e.docErr = err
			return
		}
		e.docBuf = b
		e.docRead = true
		e.doc = navigate.NewDocument(b)
	})
	return e.doc, e.docErr
}

func (e *fsEntity) absPath() string {
	return filepath.Join(e.root, filepath.FromSlash(e.rel))
}

func fileType(info os.FileInfo) query.FileType {
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return query.TypeSymlink
	case mode.IsDir():
		return query.TypeDirectory
	case mode&os.ModeSocket != 0:
		return query.TypeSocket
	case mode&os.ModeNamedPipe != 0:
		return query.TypeFifo
	case mode&os.ModeCharDevice != 0:
		return query.TypeCharDevice
	case mode&os.ModeDevice != 0:
		return query.TypeBlockDevice
	default:
		return query.TypeFile
	}
}

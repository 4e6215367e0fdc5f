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
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sourcegraph/fileql/navigate"
	"github.com/sourcegraph/fileql/query"
)

// Metadata is the stat-derived record consulted by phase 2, gathered in
// one syscall by the caller's Entity implementation so repeated
// predicates against the same entity never re-stat it.
type Metadata struct {
	Size       int64
	Type       query.FileType
	ModTime    time.Time
	CreateTime time.Time
	AccessTime time.Time
}

// Entity is one filesystem object (or archive member, per spec's
// Non-goals carve-out) being tested against a compiled expression. Its
// methods correspond one-to-one with the evaluator's phases: Path/Depth
// never touch the filesystem, Metadata costs one stat, StructuredDocument
// and OpenContent cost a read and are only invoked once phase 3/4 are
// actually reached.
type Entity interface {
	// Path is the entity's path relative to the search root, using '/'
	// as the separator regardless of host OS.
	Path() string

	// Depth is the number of path components below the search root.
	Depth() int

	Metadata(ctx context.Context) (Metadata, error)

	// OpenContent opens the entity's raw byte stream. The caller reads it
	// in order and closes it. The evaluator calls it once per content
	// predicate it reaches, so a query with several content predicates
	// opens the stream once for each of them.
	OpenContent(ctx context.Context) (io.ReadCloser, error)

	// StructuredDocument returns the entity's bytes wrapped for lazy,
	// per-format-cached parsing (spec §4.8); the same *navigate.Document
	// is returned on every call for one Entity instance, so a query
	// touching both "yaml.a" and "yaml.b" against the same entity parses
	// the bytes only once. Which parser actually runs is picked by the
	// selector prefix ("yaml.", "json.", "toml."), not the path's file
	// extension.
	StructuredDocument(ctx context.Context) (*navigate.Document, error)
}

func matchPredicate(ctx context.Context, p query.Predicate, ent Entity) (bool, error) {
	switch {
	case p.Name != nil:
		return matchName(p.Name, ent), nil
	case p.Metadata != nil:
		return matchMetadata(ctx, p.Metadata, ent)
	case p.Structured != nil:
		return matchStructured(ctx, p.Structured, ent)
	case p.Content != nil:
		return matchContent(ctx, p.Content, ent)
	}
	return false, fmt.Errorf("eval: empty predicate")
}

func matchName(p *query.NamePredicate, ent Entity) bool {
	p0 := ent.Path()
	switch p.Kind {
	case query.NameFullPath:
		return p.String.Match(p0)
	case query.NameFileName:
		return p.String.Match(path.Base(p0))
	case query.NameBaseName:
		name := path.Base(p0)
		return p.String.Match(strings.TrimSuffix(name, path.Ext(name)))
	case query.NameExtension:
		return p.String.Match(strings.TrimPrefix(path.Ext(p0), "."))
	case query.NameDirPath:
		return p.String.Match(path.Dir(p0))
	case query.NameParentDir:
		return p.String.Match(path.Base(path.Dir(p0)))
	case query.NameGlobPattern:
		return p.Glob.Match(p0)
	case query.NameDepth:
		return p.Number.Match(int64(ent.Depth()))
	}
	return false
}

func matchMetadata(ctx context.Context, p *query.MetadataPredicate, ent Entity) (bool, error) {
	md, err := ent.Metadata(ctx)
	if err != nil {
		return false, err
	}
	switch p.Kind {
	case query.MetaFilesize:
		return p.Number.Match(md.Size), nil
	case query.MetaType:
		return p.Type.Match(md.Type), nil
	case query.MetaModified:
		return p.Time.Match(md.ModTime), nil
	case query.MetaCreated:
		return p.Time.Match(md.CreateTime), nil
	case query.MetaAccessed:
		return p.Time.Match(md.AccessTime), nil
	}
	return false, nil
}

func navFormat(f query.StructuredFormat) navigate.Format {
	switch f {
	case query.FormatJSON:
		return navigate.JSON
	case query.FormatTOML:
		return navigate.TOML
	default:
		return navigate.YAML
	}
}

// matchStructured parses the document, navigates p.Path, and succeeds
// iff any reached leaf renders to a value the comparator accepts, per
// spec §4.8. A parse failure is a soft no-match, not an evaluation
// error: a YAML selector against a non-YAML file should simply not
// match, not abort the whole query.
func matchStructured(ctx context.Context, p *query.StructuredPredicate, ent Entity) (bool, error) {
	doc, err := ent.StructuredDocument(ctx)
	if err != nil {
		return false, err
	}
	val, perr := doc.Value(navFormat(p.Format))
	if perr != nil {
		return false, nil
	}
	comps, cerr := navigate.ParsePath(p.Path)
	if cerr != nil {
		return false, cerr
	}
	for _, leaf := range navigate.Navigate(val, comps) {
		switch p.Op {
		case query.StructuredString:
			if s, ok := navigate.RenderString(leaf); ok && p.String.Match(s) {
				return true, nil
			}
		case query.StructuredNumber:
			if n, ok := navigate.AsNumber(leaf); ok && p.Number.Match(int64(n)) {
				return true, nil
			}
		}
	}
	return false, nil
}

// contentChunkSize is the streaming read size of spec §4.3/§4.5: large
// enough to amortize syscalls, small enough to bound peak memory
// regardless of file size.
const contentChunkSize = 8 * 1024

func matchContent(ctx context.Context, p *query.ContentPredicate, ent Entity) (bool, error) {
	rc, err := ent.OpenContent(ctx)
	if err != nil {
		return false, err
	}
	defer rc.Close()

	sm := p.NewStream()
	buf := make([]byte, contentChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		n, rerr := rc.Read(buf)
		if n > 0 && sm.Feed(buf[:n]) {
			break
		}
		if rerr != nil {
			break
		}
	}
	return sm.Result(), nil
}

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

// NameKind discriminates NamePredicate variants, all of which depend only
// on the path string (spec §3.3).
type NameKind int

const (
	NameFullPath NameKind = iota
	NameFileName
	NameBaseName
	NameExtension
	NameDirPath
	NameParentDir
	NameGlobPattern
	NameDepth
)

// NamePredicate is a leaf that tests one feature of the path string.
type NamePredicate struct {
	Kind    NameKind
	String  StringMatcher // for FullPath/FileName/BaseName/Extension/DirPath/ParentDir
	Glob    Glob          // for GlobPattern
	Number  NumberMatcher // for Depth
}

// MetaKind discriminates MetadataPredicate variants (spec §3.4).
type MetaKind int

const (
	MetaFilesize MetaKind = iota
	MetaType
	MetaModified
	MetaCreated
	MetaAccessed
)

// MetadataPredicate is a leaf that tests the entity's metadata record.
type MetadataPredicate struct {
	Kind   MetaKind
	Number NumberMatcher // for Filesize
	Type   EnumMatcher   // for Type
	Time   TimeMatcher   // for Modified/Created/Accessed
}

// ContentPredicate is a leaf that tests the raw byte stream of a regular
// file via a streaming match. It holds only the compiled regex; the
// stateful StreamMatcher is built fresh by NewStream for each evaluation.
type ContentPredicate struct {
	Pattern string
	Negate  bool
	regex   *HybridRegex
}

// newStream builds a fresh StreamMatcher for one evaluation of this
// predicate. A ContentPredicate is compiled once but evaluated against
// many entities, each needing its own streaming state.
func (c *ContentPredicate) newStream() *StreamMatcher {
	return NewStreamMatcher(c.regex, c.Negate)
}

// NewStream is the exported form of newStream, used by the eval package
// to drive a fresh streaming match per entity.
func (c *ContentPredicate) NewStream() *StreamMatcher {
	return c.newStream()
}

// StructuredOp discriminates how a StructuredPredicate's navigated
// leaves are compared.
type StructuredOp int

const (
	StructuredString StructuredOp = iota
	StructuredNumber
	StructuredTime
)

// StructuredFormat discriminates which parser a StructuredPredicate was
// written against.
type StructuredFormat int

const (
	FormatYAML StructuredFormat = iota
	FormatJSON
	FormatTOML
)

// StructuredPredicate is a leaf that tests a navigated subfield of a
// document parsed as YAML, JSON, or TOML (spec §3.4, §4.8).
type StructuredPredicate struct {
	Format StructuredFormat
	Path   string // e.g. ".a..b[0]"
	Op     StructuredOp
	String StringMatcher
	Number NumberMatcher
}

// Predicate is the tagged sum of the four disjoint predicate families
// (spec §3.2). Exactly one field is non-nil.
type Predicate struct {
	Name       *NamePredicate
	Metadata   *MetadataPredicate
	Content    *ContentPredicate
	Structured *StructuredPredicate
}

func (p Predicate) String() string {
	switch {
	case p.Name != nil:
		return fmt.Sprintf("name-predicate(kind=%d)", p.Name.Kind)
	case p.Metadata != nil:
		return fmt.Sprintf("metadata-predicate(kind=%d)", p.Metadata.Kind)
	case p.Content != nil:
		return fmt.Sprintf("content-predicate(%q)", p.Content.Pattern)
	case p.Structured != nil:
		return fmt.Sprintf("structured-predicate(%s)", p.Structured.Path)
	}
	return "empty-predicate"
}

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

import "strings"

// selectorCategory groups selectors by the operator set and value kind
// they accept, per spec §4.2 point 2.
type selectorCategory int

const (
	catString selectorCategory = iota
	catNumeric
	catTemporal
	catEnum
	catContent
)

// canonicalSelector is a resolved, category-tagged selector.
type canonicalSelector struct {
	name NameKind
	meta MetaKind
	cat  selectorCategory
	// isMeta distinguishes a MetadataPredicate canonical (size, type,
	// modified, created, accessed) from a NamePredicate canonical.
	isMeta  bool
	isDepth bool
}

// selectorAliases implements the alias table of spec §4.2 point 1.
// Matching is case-insensitive. Resolution for the structured-data
// sub-feature (spec §4.8) is not a dotted alias lookup here: a
// "yaml.", "json." or "toml." prefixed selector is recognized separately
// by resolveSelector, since the remainder of the string is itself a
// navigation path rather than a fixed alias.
var selectorAliases = map[string]canonicalSelector{
	"path.full": {name: NameFullPath, cat: catString},
	"path":      {name: NameFullPath, cat: catString},
	"full":      {name: NameFullPath, cat: catString},
	"filepath":  {name: NameFullPath, cat: catString},

	"path.name": {name: NameFileName, cat: catString},
	"name":      {name: NameFileName, cat: catString},
	"filename":  {name: NameFileName, cat: catString},
	"file":      {name: NameFileName, cat: catString},

	"path.stem": {name: NameBaseName, cat: catString},
	"basename":  {name: NameBaseName, cat: catString},
	"stem":      {name: NameBaseName, cat: catString},
	"base":      {name: NameBaseName, cat: catString},

	"path.extension": {name: NameExtension, cat: catString},
	"ext":            {name: NameExtension, cat: catString},
	"extension":      {name: NameExtension, cat: catString},
	"suffix":         {name: NameExtension, cat: catString},

	// Canonical path.parent resolves to the relative parent directory
	// path (DirPath). "parentname" is an additional, non-tabular alias
	// that reaches the immediate-parent-only variant (ParentDir), because
	// the table in spec §4.2 names only one "path.parent" row even though
	// §3.3 defines two distinct parent predicates.
	"path.parent": {name: NameDirPath, cat: catString},
	"parent":      {name: NameDirPath, cat: catString},
	"dir":         {name: NameDirPath, cat: catString},
	"directory":   {name: NameDirPath, cat: catString},
	"parentname":  {name: NameParentDir, cat: catString},

	"size":     {name: -1, meta: MetaFilesize, isMeta: true, cat: catNumeric},
	"filesize": {name: -1, meta: MetaFilesize, isMeta: true, cat: catNumeric},
	"bytes":    {name: -1, meta: MetaFilesize, isMeta: true, cat: catNumeric},

	"type":     {name: -1, meta: MetaType, isMeta: true, cat: catEnum},
	"filetype": {name: -1, meta: MetaType, isMeta: true, cat: catEnum},
	"kind":     {name: -1, meta: MetaType, isMeta: true, cat: catEnum},

	"depth": {isDepth: true, cat: catNumeric},
	"level": {isDepth: true, cat: catNumeric},

	"modified": {name: -1, meta: MetaModified, isMeta: true, cat: catTemporal},
	"mtime":    {name: -1, meta: MetaModified, isMeta: true, cat: catTemporal},
	"mod":      {name: -1, meta: MetaModified, isMeta: true, cat: catTemporal},

	"created":   {name: -1, meta: MetaCreated, isMeta: true, cat: catTemporal},
	"ctime":     {name: -1, meta: MetaCreated, isMeta: true, cat: catTemporal},
	"birth":     {name: -1, meta: MetaCreated, isMeta: true, cat: catTemporal},
	"birthtime": {name: -1, meta: MetaCreated, isMeta: true, cat: catTemporal},

	"accessed": {name: -1, meta: MetaAccessed, isMeta: true, cat: catTemporal},
	"atime":    {name: -1, meta: MetaAccessed, isMeta: true, cat: catTemporal},
	"access":   {name: -1, meta: MetaAccessed, isMeta: true, cat: catTemporal},

	"contents": {cat: catContent},
	"content":  {cat: catContent},
	"text":     {cat: catContent},
}

// resolveSelector resolves a dotted selector string (case-insensitive)
// to either a canonicalSelector or a structured-data navigation request.
func resolveSelector(s string) (sel canonicalSelector, structuredPath string, format StructuredFormat, kind int) {
	lower := strings.ToLower(s)
	for _, p := range []struct {
		prefix string
		format StructuredFormat
	}{
		{"yaml", FormatYAML},
		{"json", FormatJSON},
		{"toml", FormatTOML},
	} {
		// The prefix must be followed by '.' (plain descent) so the
		// remainder, e.g. ".name" or "..name", is itself a well-formed
		// navigate path with its leading dot intact.
		if strings.HasPrefix(lower, p.prefix) && len(lower) > len(p.prefix) && lower[len(p.prefix)] == '.' {
			return canonicalSelector{}, s[len(p.prefix):], p.format, 2
		}
	}
	if c, ok := selectorAliases[lower]; ok {
		return c, "", 0, 1
	}
	return canonicalSelector{}, "", 0, 0
}

// operatorAliases maps every symbolic and word operator form to a
// canonical operator token, per spec §4.1.
var operatorAliases = map[string]string{
	"==": "==", "=": "==", "eq": "==",
	"!=": "!=", "<>": "!=", "ne": "!=",
	"~=": "~=", "~": "~=", "=~": "~=", "matches": "~=",
	"contains": "contains",
	"in":       "in",
	">":        ">", "gt": ">",
	">=": ">=", "=>": ">=", "gte": ">=",
	"<": "<", "lt": "<",
	"<=": "<=", "=<": "<=", "lte": "<=",
	"before": "<",
	"after":  ">",
	"on":     "==",
}

func canonicalOperator(op string) (string, bool) {
	c, ok := operatorAliases[strings.ToLower(op)]
	return c, ok
}

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

// FileType is the enumerated entity kind matched by the `type` selector.
type FileType int

const (
	TypeFile FileType = iota
	TypeDirectory
	TypeSymlink
	TypeSocket
	TypeFifo
	TypeBlockDevice
	TypeCharDevice
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "dir"
	case TypeSymlink:
		return "symlink"
	case TypeSocket:
		return "socket"
	case TypeFifo:
		return "fifo"
	case TypeBlockDevice:
		return "block"
	case TypeCharDevice:
		return "char"
	}
	return "unknown"
}

// fileTypeAliases maps every accepted alias (lowercase) to its canonical
// FileType, per spec §3.7. The enum participates in parse-time
// validation: a lookup miss is an InvalidValue diagnostic, not a runtime
// no-match.
var fileTypeAliases = map[string]FileType{
	"file": TypeFile, "f": TypeFile, "regular": TypeFile,
	"dir": TypeDirectory, "directory": TypeDirectory, "d": TypeDirectory,
	"symlink": TypeSymlink, "link": TypeSymlink, "l": TypeSymlink,
	"socket": TypeSocket, "sock": TypeSocket, "s": TypeSocket,
	"fifo": TypeFifo, "pipe": TypeFifo, "p": TypeFifo,
	"block": TypeBlockDevice, "blockdevice": TypeBlockDevice, "bdev": TypeBlockDevice,
	"char": TypeCharDevice, "chardevice": TypeCharDevice, "cdev": TypeCharDevice,
}

// ParseFileType resolves a user-supplied alias (case-insensitive) to a
// FileType. ok is false when the alias is unrecognized.
func ParseFileType(s string) (FileType, bool) {
	t, ok := fileTypeAliases[strings.ToLower(s)]
	return t, ok
}

// fileTypeAliasNames returns every known alias, for suggestion lists in
// InvalidValue diagnostics.
func fileTypeAliasNames() []string {
	names := make([]string, 0, len(fileTypeAliases))
	for k := range fileTypeAliases {
		names = append(names, k)
	}
	return names
}

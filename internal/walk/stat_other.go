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

//go:build !linux

package walk

import (
	"os"
	"time"
)

// statTimes has no portable platform-agnostic source for access/creation
// times outside Linux's stat struct; both fall back to ModTime.
func statTimes(info os.FileInfo) (create, access time.Time) {
	return info.ModTime(), info.ModTime()
}

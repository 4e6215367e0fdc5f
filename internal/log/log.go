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

// Package log is the structured logger used by the CLI. It is a trimmed
// form of the teacher's
// own log package: a single global *zap.Logger guarded by a once-only
// Init, with the OpenTelemetry Resource/instance-ID plumbing dropped
// (there is no multi-service deployment here to identify), but the same
// env-driven level and development/production encoder split.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envLogLevel = "FILEQL_LOG_LEVEL"

var (
	globalLogger *zap.Logger
	initOnce     sync.Once
	initialized  bool
)

// Init initializes the package's global logger. It must be called once
// from main(), before any call to Get; calling it twice panics, as with
// the teacher's log.Init.
func Init(development bool) (sync func() error) {
	if initialized {
		panic("log.Init called multiple times")
	}
	initOnce.Do(func() {
		globalLogger = build(development)
		initialized = true
	})
	return globalLogger.Sync
}

func build(development bool) *zap.Logger {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv(envLogLevel)))

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		panic(fmt.Sprintf("log: building logger: %v", err))
	}
	return logger
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Get returns the global logger, or a no-op logger if Init has not run
// yet — useful in tests and library call paths that may run detached
// from the CLI's main().
func Get() *zap.Logger {
	if !initialized {
		return zap.NewNop()
	}
	return globalLogger
}

// Scoped returns a child logger named for one subsystem, e.g. "walk" or
// "eval", the way the teacher tags its component loggers.
func Scoped(name string) *zap.Logger {
	return Get().Named(name)
}

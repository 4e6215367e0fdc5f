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

// Command fileql walks a directory tree and prints the path of every
// entity matching a compiled query expression.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sourcegraph/fileql/eval"
	ilog "github.com/sourcegraph/fileql/internal/log"
	"github.com/sourcegraph/fileql/internal/metrics"
	"github.com/sourcegraph/fileql/internal/walk"
	"github.com/sourcegraph/fileql/query"
)

func main() {
	root := flag.String("root", ".", "directory to search")
	listen := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address instead of exiting after the walk")
	development := flag.Bool("dev", false, "use the development (console) log encoder instead of JSON")
	list0 := flag.Bool("print0", false, "separate matched paths with NUL instead of newline")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <query>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	sync := ilog.Init(*development)
	defer sync()
	logger := ilog.Scoped("cmd")

	source := flag.Arg(0)
	expr, detectErr := query.Compile(source)
	if detectErr != nil {
		printDetectError(os.Stderr, source, detectErr)
		os.Exit(2)
	}

	reg := metrics.NewRegistry()
	promReg := prometheus.NewRegistry()
	reg.MustRegister(promReg)

	if *listen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg}))
		go func() {
			logger.Info("serving metrics", zap.String("addr", *listen))
			if err := http.ListenAndServe(*listen, mux); err != nil {
				logger.Error("metrics server exited", zap.Error(err))
			}
		}()
	}

	sep := "\n"
	if *list0 {
		sep = "\x00"
	}

	if err := run(context.Background(), *root, expr, reg, os.Stdout, sep, logger); err != nil {
		if isBrokenPipe(err) {
			os.Exit(0)
		}
		logger.Error("search failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "fileql: %v\n", err)
		os.Exit(1)
	}

	if *listen != "" {
		select {}
	}
}

// run walks root, evaluating expr against every visited entity, and
// writes the path of each match to out. A soft evaluation failure (an
// entity this run couldn't stat or read) is counted and skipped rather
// than aborting the whole walk, per the walker's soft-failure contract.
func run(ctx context.Context, root string, expr query.Expr, reg *metrics.Registry, out io.Writer, sep string, logger *zap.Logger) error {
	evalCtx := eval.WithPhaseObserver(ctx, reg.Phases)

	return walk.Walk(ctx, root, func(ent eval.Entity) error {
		reg.EntitiesVisited.Inc()

		matched, err := eval.Evaluate(evalCtx, expr, ent)
		if err != nil {
			reg.EntitiesSkipped.Inc()
			return nil
		}
		if !matched {
			return nil
		}

		reg.EntitiesMatched.Inc()
		if md, merr := ent.Metadata(ctx); merr == nil {
			reg.BytesRead.Add(float64(md.Size))
			logger.Debug("matched", zap.String("path", ent.Path()), zap.String("size", humanize.IBytes(uint64(md.Size))))
		}
		if _, err := fmt.Fprintf(out, "%s%s", ent.Path(), sep); err != nil {
			return err
		}
		return nil
	})
}

// printDetectError renders a DetectError as a single diagnostic line
// followed by the offending source line and a caret pointing at the
// error's span, the way a compiler diagnostic does.
func printDetectError(w io.Writer, source string, e *query.DetectError) {
	fmt.Fprintf(w, "fileql: %s\n", e.Error())

	lineStart, lineEnd := e.Span.Start, e.Span.Start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}
	line := source[lineStart:lineEnd]
	col := e.Span.Start - lineStart

	fmt.Fprintf(w, "%s\n", line)
	fmt.Fprintf(w, "%s^\n", strings.Repeat(" ", col))

	if e.Suggestion != "" {
		fmt.Fprintf(w, "did you mean %q?\n", e.Suggestion)
	}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

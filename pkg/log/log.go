// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/filechanger/pkg/pipeline"
	"github.com/walteh/filechanger/pkg/status"
)

// 📦 BatchOperation describes a batch for logging
type BatchOperation struct {
	RunID     string // Batch identifier
	InputDir  string // Where the inputs come from
	OutputDir string // Where the outputs go
	Files     int    // Number of files scheduled
	Window    int    // Pipelines allowed at once
	Rules     int    // Number of substitution rules
}

// 🎯 Logger writes user facing lines to a console and mirrors each one to
// zerolog. It is safe for concurrent use.
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *BatchOperation
	results []*pipeline.Result
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 LogResult logs one finished file
func (l *Logger) LogResult(ctx context.Context, res *pipeline.Result) {
	if res == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append(l.results, res)
	outcome := status.OutcomeOf(res)

	fmt.Fprintln(l.console, status.FormatFileLine(res.Source, res.Output, outcome))
	if res.Err != nil && outcome == status.OutcomeFailed {
		fmt.Fprintf(l.console, "%*s%s\n", 6, "", color.New(color.Faint).Sprint(res.Err.Error()))
	}

	event := l.zlog.Info()
	if !res.OK {
		event = l.zlog.Warn().Err(res.Err)
	}
	event.
		Str("file", res.Source).
		Str("output", res.Output).
		Str("outcome", outcome.String()).
		Int("replacements", res.Replacements).
		Int64("bytes_in", res.BytesIn).
		Int64("bytes_out", res.BytesOut).
		Msg("file " + outcome.String())
}

// 📝 StartBatch starts a new batch
func (l *Logger) StartBatch(ctx context.Context, op BatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.results = nil

	fmt.Fprintf(l.console, "[processing %s → %s]\n",
		color.New(color.FgCyan).Sprint(op.InputDir),
		color.New(color.FgCyan).Sprint(op.OutputDir))

	fmt.Fprintf(l.console, "%s %s %s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", op.Files),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d rules", op.Rules),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d at a time", op.Window))

	l.zlog.Info().
		Str("run", op.RunID).
		Str("input_dir", op.InputDir).
		Str("output_dir", op.OutputDir).
		Int("files", op.Files).
		Int("rules", op.Rules).
		Int("window", op.Window).
		Msg("starting batch")
}

// 📝 EndBatch prints the summary of the current batch
func (l *Logger) EndBatch(ctx context.Context, report *status.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil || report == nil {
		return
	}

	if len(report.Results) > 0 {
		table, err := report.Table()
		if err != nil {
			l.zlog.Warn().Err(err).Msg("rendering summary")
		} else {
			fmt.Fprintf(l.console, "\n%s", table)
		}
	}
	fmt.Fprintln(l.console, color.New(color.Faint).Sprint(report.ElapsedLine()))

	in, out := report.Bytes()
	l.zlog.Info().
		Str("run", report.RunID).
		Int("files", len(report.Results)).
		Int("failed", len(report.Failed())).
		Int("replacements", report.Replacements()).
		Int64("bytes_in", in).
		Int64("bytes_out", out).
		Dur("elapsed", report.Elapsed).
		Msg("batch complete")

	l.current = nil
	l.results = nil
}

// Results returns the files logged since the batch started.
func (l *Logger) Results() []*pipeline.Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*pipeline.Result(nil), l.results...)
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("filechanger")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Prompt writes a line asking the user for input. It is not mirrored.
func (l *Logger) Prompt(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✏️  %s\n", color.New(color.Bold).Sprint(msg))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}

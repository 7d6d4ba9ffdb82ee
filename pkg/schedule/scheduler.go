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

package schedule

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/filechanger/pkg/pipeline"
	"github.com/walteh/filechanger/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Window returns how many pipelines may run at once for a given parallelism.
// A pipeline is two goroutines.
func Window(parallelism int) int {
	return max(1, parallelism/2)
}

// 🔧 Options configures a scheduler
type Options struct {
	// Parallelism is the CPU count the window is derived from; zero means
	// runtime.NumCPU
	Parallelism int
	// Debug logs every admission
	Debug bool
	// RunID names the batch in logs and the report; empty means a new UUID
	RunID string
	// OnResult is called once per file as soon as it finishes, possibly
	// from several goroutines at once
	OnResult func(res *pipeline.Result)
}

// 🏃 Scheduler runs file tasks through a processor with a bounded number of
// pipelines in flight.
type Scheduler struct {
	processor Processor
	opts      Options
	formatter status.FileFormatter
}

// New creates a scheduler.
func New(processor Processor, opts Options) *Scheduler {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	return &Scheduler{
		processor: processor,
		opts:      opts,
		formatter: status.NewDefaultFileFormatter(),
	}
}

// Window returns the admission window of this scheduler.
func (s *Scheduler) Window() int {
	return Window(s.opts.Parallelism)
}

// Run processes every task, smallest first, and waits for all of them. A
// failing file never stops the others. Tasks not yet admitted when ctx is
// cancelled are reported as cancelled without being started.
func (s *Scheduler) Run(ctx context.Context, tasks []FileTask) *status.Report {
	start := time.Now()
	runID := s.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := zerolog.Ctx(ctx).With().Str("run", runID).Logger()
	ctx = logger.WithContext(ctx)

	ordered := append([]FileTask(nil), tasks...)
	Order(ordered)

	results := make([]*pipeline.Result, len(ordered))
	if len(ordered) == 0 {
		logger.Debug().Msg("nothing to do")
		return status.NewReport(runID, results, time.Since(start))
	}

	window := s.Window()
	tracker := status.NewTracker(ctx, s.formatter)
	tracker.StartOperation(ctx, len(ordered))

	finish := func(i int, res *pipeline.Result) {
		results[i] = res
		tracker.Record(ctx, res)
		if s.opts.OnResult != nil {
			s.opts.OnResult(res)
		}
	}

	logger.Debug().Int("files", len(ordered)).Int("window", window).Msg("batch started")

	var g errgroup.Group
	g.SetLimit(window)

	for i, task := range ordered {
		i, task := i, task // per-iteration copy (pre-Go 1.22 loop semantics)
		if err := ctx.Err(); err != nil {
			finish(i, skipped(task, err))
			continue
		}

		// blocks while the window is full; admission follows task order
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				finish(i, skipped(task, err))
				return nil
			}
			if s.opts.Debug {
				logger.Debug().Int("pipeline", i+1).Str("file", task.Path).Int64("size", task.Size).
					Msgf("pipeline %d has started", i+1)
			}
			res := s.processor.Process(ctx, task)
			if res == nil {
				res = &pipeline.Result{Source: task.Path, Err: errors.New("processor returned no result")}
			}
			finish(i, res)
			return nil
		})
	}

	_ = g.Wait()
	tracker.FinishOperation(ctx)

	report := status.NewReport(runID, results, time.Since(start))
	logger.Debug().
		Int("succeeded", len(report.Succeeded())).
		Int("failed", len(report.Failed())).
		Dur("elapsed", report.Elapsed).
		Msg("batch finished")
	return report
}

func skipped(task FileTask, err error) *pipeline.Result {
	return &pipeline.Result{
		Source: task.Path,
		Err:    errors.Errorf("not started: %w", err),
	}
}

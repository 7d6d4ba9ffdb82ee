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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/filechanger/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome is how a file of a batch ended
type Outcome int

const (
	OutcomeUnknown   Outcome = iota
	OutcomeReady             // Output is complete
	OutcomeFailed            // Input or output failed
	OutcomeCancelled         // Batch was cancelled before the file finished
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// OutcomeOf classifies a pipeline result.
func OutcomeOf(res *pipeline.Result) Outcome {
	switch {
	case res == nil:
		return OutcomeUnknown
	case res.OK:
		return OutcomeReady
	case errors.Is(res.Err, context.Canceled), errors.Is(res.Err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// 📈 Tracker counts finished files and logs each one as it lands. It is safe
// for concurrent use.
type Tracker struct {
	logger    *zerolog.Logger
	formatter FileFormatter

	mu        sync.Mutex
	total     int
	processed int
	counts    map[Outcome]int
}

// 🏭 NewTracker creates a tracker logging to the context logger
func NewTracker(ctx context.Context, formatter FileFormatter) *Tracker {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &Tracker{
		logger:    zerolog.Ctx(ctx),
		formatter: formatter,
		counts:    make(map[Outcome]int),
	}
}

func (t *Tracker) StartOperation(ctx context.Context, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = total
	t.processed = 0
	t.counts = make(map[Outcome]int)
	t.logger.Debug().Int("total", total).Msg(t.formatter.FormatProgress(0, total))
}

// Record logs one finished file and advances the progress.
func (t *Tracker) Record(ctx context.Context, res *pipeline.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed++
	outcome := OutcomeOf(res)
	t.counts[outcome]++

	event := t.logger.Info()
	if outcome != OutcomeReady {
		event = t.logger.Warn()
		if res != nil {
			event = event.Err(res.Err)
		}
	}
	event.
		Str("outcome", outcome.String()).
		Int("processed", t.processed).
		Int("total", t.total).
		Msg(t.formatter.FormatResult(res))
}

func (t *Tracker) FinishOperation(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.logger.Debug().
		Int("processed", t.processed).
		Int("total", t.total).
		Int("failed", t.counts[OutcomeFailed]).
		Int("cancelled", t.counts[OutcomeCancelled]).
		Msg(t.formatter.FormatProgress(t.processed, t.total))
}

// Progress returns how many files are done out of how many.
func (t *Tracker) Progress() (processed, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed, t.total
}

// Count returns how many recorded files ended with the given outcome.
func (t *Tracker) Count(o Outcome) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[o]
}

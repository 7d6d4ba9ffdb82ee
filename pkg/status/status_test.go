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
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/walteh/filechanger/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		res  *pipeline.Result
		want Outcome
	}{
		{name: "nil", res: nil, want: OutcomeUnknown},
		{name: "ok", res: &pipeline.Result{OK: true}, want: OutcomeReady},
		{name: "io_error", res: &pipeline.Result{Err: assert.AnError}, want: OutcomeFailed},
		{name: "cancelled", res: &pipeline.Result{Err: errors.Errorf("waiting: %w", context.Canceled)}, want: OutcomeCancelled},
		{name: "deadline", res: &pipeline.Result{Err: context.DeadlineExceeded}, want: OutcomeCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeOf(tt.res))
			assert.Equal(t, tt.want.String(), OutcomeOf(tt.res).String())
		})
	}
}

func TestTrackerRecordsProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())

	tracker := NewTracker(ctx, nil)
	tracker.StartOperation(ctx, 3)

	var wg sync.WaitGroup
	for _, res := range []*pipeline.Result{
		{Source: "a.txt", OK: true},
		{Source: "b.txt", Err: assert.AnError},
		{Source: "c.txt", Err: context.Canceled},
	} {
		res := res // per-iteration copy (pre-Go 1.22 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(ctx, res)
		}()
	}
	wg.Wait()
	tracker.FinishOperation(ctx)

	processed, total := tracker.Progress()
	assert.Equal(t, 3, processed)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, tracker.Count(OutcomeReady))
	assert.Equal(t, 1, tracker.Count(OutcomeFailed))
	assert.Equal(t, 1, tracker.Count(OutcomeCancelled))

	out := buf.String()
	assert.Contains(t, out, "a.txt is ready")
	assert.Contains(t, out, "b.txt failed")
	assert.Contains(t, out, "c.txt was cancelled")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestTrackerWithoutLogger(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(ctx, NewDefaultFileFormatter())

	assert.NotPanics(t, func() {
		tracker.StartOperation(ctx, 1)
		tracker.Record(ctx, &pipeline.Result{Source: "x", OK: true})
		tracker.FinishOperation(ctx)
	})
}

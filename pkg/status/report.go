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
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"github.com/pterm/pterm"
	"github.com/walteh/filechanger/pkg/pipeline"
	"gitlab.com/tozd/go/errors"
)

// ErrFilesFailed is returned by Report.Err when at least one file did not
// produce a complete output.
var ErrFilesFailed = errors.Base("files failed")

// 📋 Report is the outcome of one batch
type Report struct {
	RunID   string             // Batch identifier, also present in every log line
	Results []*pipeline.Result // One per file, in scheduling order
	Elapsed time.Duration      // Wall clock time of the whole batch
}

// NewReport creates a report. Nil results are dropped.
func NewReport(runID string, results []*pipeline.Result, elapsed time.Duration) *Report {
	kept := make([]*pipeline.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Report{RunID: runID, Results: kept, Elapsed: elapsed}
}

// Succeeded returns the results with a complete output.
func (r *Report) Succeeded() []*pipeline.Result {
	return r.filter(func(res *pipeline.Result) bool { return res.OK })
}

// Failed returns the results without a complete output.
func (r *Report) Failed() []*pipeline.Result {
	return r.filter(func(res *pipeline.Result) bool { return !res.OK })
}

func (r *Report) filter(keep func(*pipeline.Result) bool) []*pipeline.Result {
	var out []*pipeline.Result
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Replacements returns the total number of replacements made.
func (r *Report) Replacements() int {
	total := 0
	for _, res := range r.Results {
		total += res.Replacements
	}
	return total
}

// Bytes returns the total input and output sizes.
func (r *Report) Bytes() (in, out int64) {
	for _, res := range r.Results {
		in += res.BytesIn
		out += res.BytesOut
	}
	return in, out
}

// Err returns nil when every file succeeded.
func (r *Report) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return errors.Errorf("%d of %d: %w", len(failed), len(r.Results), ErrFilesFailed)
}

// ElapsedLine renders the batch time the way the console prints it.
func (r *Report) ElapsedLine() string {
	return fmt.Sprintf("Time: %s sec.", strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 3, 64))
}

// TableData returns the summary as rows, header first.
func (r *Report) TableData() pterm.TableData {
	data := pterm.TableData{
		{"File", "Output", "Outcome", "In", "Out", "Replacements", "Time"},
	}
	for _, res := range r.Results {
		data = append(data, []string{
			filepath.Base(res.Source),
			filepath.Base(res.Output),
			OutcomeOf(res).String(),
			units.HumanSize(float64(res.BytesIn)),
			units.HumanSize(float64(res.BytesOut)),
			strconv.Itoa(res.Replacements),
			res.Elapsed.Round(time.Millisecond).String(),
		})
	}
	return data
}

// Table renders the summary table.
func (r *Report) Table() (string, error) {
	out, err := pterm.DefaultTable.WithHasHeader().WithData(r.TableData()).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary table: %w", err)
	}
	return out, nil
}

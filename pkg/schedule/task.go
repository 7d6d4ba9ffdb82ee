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
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📄 FileTask is one input file, captured when the batch is planned
type FileTask struct {
	Path string // Input path
	Size int64  // Size in bytes at discovery time
}

// Filter selects files by base name. An empty Include matches everything;
// Exclude wins over Include.
type Filter struct {
	Include []string
	Exclude []string
}

// Validate checks that every pattern is well formed.
func (f Filter) Validate() error {
	for _, p := range append(append([]string(nil), f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid pattern %q", p)
		}
	}
	return nil
}

// Match reports whether a file name passes the filter.
func (f Filter) Match(name string) bool {
	for _, p := range f.Exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, p := range f.Include {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// 🔍 Discover snapshots the regular files directly inside dir.
func Discover(ctx context.Context, dir string, filter Filter) ([]FileTask, error) {
	logger := zerolog.Ctx(ctx)

	if err := filter.Validate(); err != nil {
		return nil, errors.Errorf("validating filter: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading input directory: %w", err)
	}

	tasks := make([]FileTask, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if !filter.Match(entry.Name()) {
			logger.Debug().Str("file", entry.Name()).Msg("skipping filtered file")
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between listing and stat
			logger.Debug().Err(err).Str("file", entry.Name()).Msg("skipping vanished file")
			continue
		}
		tasks = append(tasks, FileTask{
			Path: filepath.Join(dir, entry.Name()),
			Size: info.Size(),
		})
	}

	logger.Debug().Str("dir", dir).Int("files", len(tasks)).Msg("discovered input files")
	return tasks, nil
}

// Order sorts tasks by ascending size, then by path.
func Order(tasks []FileTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Size != tasks[j].Size {
			return tasks[i].Size < tasks[j].Size
		}
		return tasks[i].Path < tasks[j].Path
	})
}

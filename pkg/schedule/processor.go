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
	"path/filepath"
	"strings"

	"github.com/walteh/filechanger/pkg/pipeline"
)

// DefaultSuffix is inserted between the stem and the extension of an output.
const DefaultSuffix = "_new"

// Processor turns one task into a result. It must never return nil.
type Processor interface {
	Process(ctx context.Context, task FileTask) *pipeline.Result
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, task FileTask) *pipeline.Result

func (f ProcessorFunc) Process(ctx context.Context, task FileTask) *pipeline.Result {
	return f(ctx, task)
}

// Namer maps an input path to its output path.
type Namer func(input string) string

// OutputNamer places outputs in dir as <stem><suffix><ext>.
func OutputNamer(dir, suffix string) Namer {
	return func(input string) string {
		base := filepath.Base(input)
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		return filepath.Join(dir, stem+suffix+ext)
	}
}

// 🏭 PipelineProcessor runs each task through a streaming pipeline.
type PipelineProcessor struct {
	pipeline *pipeline.Pipeline
	name     Namer
}

// NewPipelineProcessor creates a processor writing where name says.
func NewPipelineProcessor(p *pipeline.Pipeline, name Namer) *PipelineProcessor {
	return &PipelineProcessor{pipeline: p, name: name}
}

func (p *PipelineProcessor) Process(ctx context.Context, task FileTask) *pipeline.Result {
	return p.pipeline.Run(ctx, task.Path, p.name(task.Path))
}

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

package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"
	"github.com/walteh/filechanger/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is the read window size
	DefaultChunkSize = int(5 * units.MiB)
	// DefaultOverlapSize bounds how many bytes are re-read per window
	DefaultOverlapSize = int(1 * units.KiB)
)

var (
	// ErrInvalidWindow is returned for unusable chunk or overlap sizes.
	ErrInvalidWindow = errors.Base("invalid window")
	// ErrOverlapTooSmall is returned when a pattern could straddle a chunk
	// boundary by more bytes than are re-read.
	ErrOverlapTooSmall = errors.Base("overlap shorter than longest pattern")
)

// 🔧 Options configures a pipeline
type Options struct {
	// ChunkSize is the number of bytes read per window
	ChunkSize int
	// OverlapSize is the most bytes re-read at the start of a window
	OverlapSize int
	// CleanupPartial removes the output of a failed file
	CleanupPartial bool
	// Debug logs every chunk
	Debug bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ChunkSize:   DefaultChunkSize,
		OverlapSize: DefaultOverlapSize,
	}
}

// Validate checks the options against the rules they will run with.
func (o Options) Validate(rules []text.Rule) error {
	if o.ChunkSize <= 0 {
		return errors.Errorf("chunk size %d: %w", o.ChunkSize, ErrInvalidWindow)
	}
	if o.OverlapSize < 0 || o.OverlapSize >= o.ChunkSize {
		return errors.Errorf("overlap size %d must be in [0, %d): %w", o.OverlapSize, o.ChunkSize, ErrInvalidWindow)
	}
	if err := text.ValidateRules(rules); err != nil {
		return errors.Errorf("validating rules: %w", err)
	}
	if longest := text.MaxPatternLen(rules); longest-1 > o.OverlapSize {
		return errors.Errorf("pattern of %d bytes needs an overlap of at least %d, have %d: %w",
			longest, longest-1, o.OverlapSize, ErrOverlapTooSmall)
	}
	return nil
}

// 📄 Result reports how one file went
type Result struct {
	Source       string        // Input path
	Output       string        // Output path
	OK           bool          // Whether the output is complete
	Err          error         // Why it is not
	Elapsed      time.Duration // Wall clock time spent on the file
	BytesIn      int64         // Input bytes processed
	BytesOut     int64         // Output bytes written
	Chunks       int           // Chunks written
	Replacements int           // Replacements made
}

// 🏭 Pipeline streams files through the substitution rules. One Pipeline can
// run many files concurrently; every Run owns its own buffers and handles.
type Pipeline struct {
	rules []text.Rule
	opts  Options
	pool  bytebufferpool.Pool
}

// New creates a pipeline.
func New(rules []text.Rule, opts Options) (*Pipeline, error) {
	if err := opts.Validate(rules); err != nil {
		return nil, err
	}
	return &Pipeline{
		rules: append([]text.Rule(nil), rules...),
		opts:  opts,
	}, nil
}

// Rules returns the rules the pipeline applies.
func (p *Pipeline) Rules() []text.Rule {
	return append([]text.Rule(nil), p.rules...)
}

// Options returns the pipeline options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run rewrites src into dst. It never returns a nil result.
func (p *Pipeline) Run(ctx context.Context, src, dst string) *Result {
	start := time.Now()
	res := &Result{Source: src, Output: dst}

	logger := zerolog.Ctx(ctx).With().Str("file", src).Logger()
	ctx = logger.WithContext(ctx)

	err := p.run(ctx, res)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		logger.Error().Err(err).Dur("elapsed", res.Elapsed).Msg("file failed")
		return res
	}

	res.OK = true
	logger.Debug().
		Str("output", dst).
		Int64("bytes_in", res.BytesIn).
		Int64("bytes_out", res.BytesOut).
		Int("chunks", res.Chunks).
		Int("replacements", res.Replacements).
		Dur("elapsed", res.Elapsed).
		Msg("file ready")
	return res
}

func (p *Pipeline) run(ctx context.Context, res *Result) (err error) {
	in, err := os.Open(res.Source)
	if err != nil {
		return errors.Errorf("opening input: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("reading input size: %w", err)
	}

	out, err := os.OpenFile(res.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Errorf("closing output: %w", cerr)
		}
		if err != nil && p.opts.CleanupPartial {
			if rerr := os.Remove(res.Output); rerr != nil {
				zerolog.Ctx(ctx).Warn().Err(rerr).Msg("removing partial output")
			}
		}
	}()

	return p.stream(ctx, in, out, info.Size(), res)
}

// stream runs the transformer and the writer as a producer/consumer pair.
func (p *Pipeline) stream(ctx context.Context, in io.ReadSeeker, out Output, size int64, res *Result) error {
	logger := zerolog.Ctx(ctx)
	tr := NewTransformer(in, size, p.rules, p.opts, &p.pool)
	wr := NewWriter(out)
	handoff := NewHandoff(Slots)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer handoff.Close()
		for {
			c, err := tr.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return errors.Errorf("transforming: %w", err)
			}
			if p.opts.Debug {
				logger.Debug().
					Int("chunk", c.Index).
					Int64("offset", c.Offset).
					Int("len", c.Len()).
					Int("committed", c.Committed).
					Bool("final", c.Final).
					Msg("chunk ready")
			}
			if err := handoff.Put(gctx, c); err != nil {
				tr.Release(c)
				return err
			}
		}
	})

	g.Go(func() error {
		for {
			c, ok, err := handoff.Take(gctx)
			if err != nil {
				return err
			}
			if !ok {
				return wr.Finish()
			}
			err = wr.Write(c)
			tr.Release(c)
			if err != nil {
				return errors.Errorf("writing chunk %d: %w", c.Index, err)
			}
		}
	})

	err := g.Wait()

	res.BytesIn = tr.Consumed()
	res.BytesOut = wr.Len()
	res.Chunks = wr.Chunks()
	res.Replacements = tr.Replacements()

	return err
}

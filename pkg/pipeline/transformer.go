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
	"io"

	"github.com/valyala/bytebufferpool"
	"github.com/walteh/filechanger/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔄 Transformer reads a file in fixed size windows and applies the rules to
// each one. Every window after the first starts by re-reading the bytes the
// previous window could not commit, so a match that straddles a window
// boundary is still found.
type Transformer struct {
	src      io.ReadSeeker
	replacer *text.Replacer
	pool     *bytebufferpool.Pool
	window   []byte

	index    int
	retained int
	offset   int64
	consumed int64
	done     bool
}

// NewTransformer creates a transformer over src. size is the expected input
// length; it only shrinks the read window for files smaller than a chunk.
// Options must have been validated against rules.
func NewTransformer(src io.ReadSeeker, size int64, rules []text.Rule, opts Options, pool *bytebufferpool.Pool) *Transformer {
	n := opts.ChunkSize
	if size >= 0 && size < int64(n) {
		// one byte past the end so the first read already reports EOF
		n = int(size) + 1
		if n <= opts.OverlapSize {
			n = opts.OverlapSize + 1
		}
	}
	if pool == nil {
		pool = &bytebufferpool.Pool{}
	}
	return &Transformer{
		src:      src,
		replacer: text.NewReplacer(rules),
		pool:     pool,
		window:   make([]byte, n),
	}
}

// Next returns the next transformed chunk, or io.EOF after the final one.
// The chunk buffer comes from the pool; hand it back with Release.
func (t *Transformer) Next() (*Chunk, error) {
	if t.done {
		return nil, io.EOF
	}

	if t.retained > 0 {
		if _, err := t.src.Seek(-int64(t.retained), io.SeekCurrent); err != nil {
			return nil, errors.Errorf("rewinding %d retained bytes: %w", t.retained, err)
		}
	}

	n, err := io.ReadFull(t.src, t.window)
	final := false
	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Errorf("reading chunk %d: %w", t.index, err)
		}
		final = true
	}

	in := t.window[:n]
	buf := t.pool.Get()
	out, retained := t.replacer.Push(buf.B[:0], in, final)
	committed := len(out)
	if !final {
		// keep the on-disk length in step with the input; the next chunk
		// rewrites this tail once it is known
		out = t.replacer.Pending(out)
		out = append(out, in[n-retained:]...)
	}
	buf.B = out

	c := &Chunk{
		Index:     t.index,
		Offset:    t.offset,
		Committed: committed,
		Final:     final,
		buf:       buf,
	}

	t.index++
	t.offset += int64(committed)
	t.consumed += int64(n - retained)
	t.retained = retained
	t.done = final

	return c, nil
}

// Release returns a chunk buffer to the pool.
func (t *Transformer) Release(c *Chunk) {
	if c == nil || c.buf == nil {
		return
	}
	t.pool.Put(c.buf)
	c.buf = nil
}

// Consumed returns the number of input bytes fully processed.
func (t *Transformer) Consumed() int64 {
	return t.consumed
}

// Replacements returns the number of replacements made so far.
func (t *Transformer) Replacements() int {
	return t.replacer.Replacements()
}

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

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrChunkOffset is returned for a chunk that does not start inside the
	// tentative tail written by the previous chunk.
	ErrChunkOffset = errors.Base("chunk offset outside rewritable tail")
	// ErrChunkOrder is returned for a chunk that arrives out of order.
	ErrChunkOrder = errors.Base("chunk out of order")
)

// Output is the file a Writer persists chunks to.
type Output interface {
	io.Writer
	io.Seeker
	Truncate(size int64) error
}

// 💾 Writer persists chunks in order. The first chunk is written as is. Every
// later chunk seeks back over the tentative tail of the one before it and
// overwrites it, so the distance moved back is exactly the number of bytes
// that were written but not committed.
type Writer struct {
	dst       Output
	flushed   int64
	committed int64
	high      int64
	chunks    int
}

// NewWriter creates a writer positioned at the start of dst.
func NewWriter(dst Output) *Writer {
	return &Writer{dst: dst}
}

// Write persists one chunk.
func (w *Writer) Write(c *Chunk) error {
	if c.Index != w.chunks {
		return errors.Errorf("got chunk %d, want %d: %w", c.Index, w.chunks, ErrChunkOrder)
	}
	if c.Offset < w.committed || c.Offset > w.flushed {
		return errors.Errorf("chunk %d at %d, committed %d, flushed %d: %w",
			c.Index, c.Offset, w.committed, w.flushed, ErrChunkOffset)
	}

	if back := w.flushed - c.Offset; back > 0 {
		if _, err := w.dst.Seek(-back, io.SeekCurrent); err != nil {
			return errors.Errorf("seeking back %d bytes: %w", back, err)
		}
	}

	n, err := w.dst.Write(c.Bytes())
	w.flushed = c.Offset + int64(n)
	if w.flushed > w.high {
		w.high = w.flushed
	}
	if err != nil {
		return errors.Errorf("writing %d bytes: %w", c.Len(), err)
	}

	w.committed = c.Offset + int64(c.Committed)
	w.chunks++
	return nil
}

// Finish drops anything past the last written byte, left behind when a
// final chunk came out shorter than the tail it replaced.
func (w *Writer) Finish() error {
	if w.high > w.flushed {
		if err := w.dst.Truncate(w.flushed); err != nil {
			return errors.Errorf("truncating to %d bytes: %w", w.flushed, err)
		}
		w.high = w.flushed
	}
	return nil
}

// Len returns the output length written so far.
func (w *Writer) Len() int64 {
	return w.flushed
}

// Chunks returns the number of chunks written.
func (w *Writer) Chunks() int {
	return w.chunks
}

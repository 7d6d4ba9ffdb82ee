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
	"sync"

	"github.com/valyala/bytebufferpool"
	"gitlab.com/tozd/go/errors"
)

// Slots is the number of transformed chunks that may wait for the writer.
const Slots = 2

// 📦 Chunk is one transformed window of a file on its way to the writer.
type Chunk struct {
	// Index is the position of the chunk in the file, starting at zero
	Index int
	// Offset is the output offset the first byte of the chunk belongs at
	Offset int64
	// Committed is how many leading bytes are final; the rest is a tentative
	// tail the next chunk overwrites
	Committed int
	// Final marks the last chunk of the file
	Final bool

	buf *bytebufferpool.ByteBuffer
}

// Bytes returns the chunk content.
func (c *Chunk) Bytes() []byte {
	if c.buf == nil {
		return nil
	}
	return c.buf.B
}

// Len returns the chunk length.
func (c *Chunk) Len() int {
	return len(c.Bytes())
}

// 🤝 Handoff passes chunks from one producer to one consumer. It holds at
// most Slots chunks; Put blocks while it is full. Chunks come out in the order
// they went in, and Take keeps returning queued chunks after Close until the
// queue is empty.
type Handoff struct {
	ch   chan *Chunk
	once sync.Once
}

// NewHandoff creates a handoff with the given number of slots.
func NewHandoff(slots int) *Handoff {
	if slots < 1 {
		slots = 1
	}
	return &Handoff{ch: make(chan *Chunk, slots)}
}

// Put queues a chunk, waiting for a free slot.
func (h *Handoff) Put(ctx context.Context, c *Chunk) error {
	if err := ctx.Err(); err != nil {
		return errors.Errorf("waiting for free slot: %w", err)
	}
	select {
	case h.ch <- c:
		return nil
	case <-ctx.Done():
		return errors.Errorf("waiting for free slot: %w", ctx.Err())
	}
}

// Close signals that no more chunks will be put.
func (h *Handoff) Close() {
	h.once.Do(func() { close(h.ch) })
}

// Take returns the next chunk. ok is false once the handoff is closed and
// drained.
func (h *Handoff) Take(ctx context.Context) (c *Chunk, ok bool, err error) {
	select {
	case c, ok = <-h.ch:
		return c, ok, nil
	case <-ctx.Done():
		return nil, false, errors.Errorf("waiting for ready chunk: %w", ctx.Err())
	}
}

// Outstanding returns the number of chunks waiting for the consumer.
func (h *Handoff) Outstanding() int {
	return len(h.ch)
}

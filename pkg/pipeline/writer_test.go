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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
	"gitlab.com/tozd/go/errors"
)

// memOutput is an in-memory Output that records how far it was asked to seek.
type memOutput struct {
	data  []byte
	pos   int64
	seeks []int64
}

func (m *memOutput) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.pos:end], p)
	m.pos = end
	return len(p), nil
}

func (m *memOutput) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekCurrent {
		return 0, errors.New("only relative seeks expected")
	}
	m.seeks = append(m.seeks, offset)
	m.pos += offset
	return m.pos, nil
}

func (m *memOutput) Truncate(size int64) error {
	m.data = m.data[:size]
	return nil
}

func newChunk(index int, offset int64, committed int, final bool, content string) *Chunk {
	buf := &bytebufferpool.ByteBuffer{}
	buf.B = append(buf.B, content...)
	return &Chunk{Index: index, Offset: offset, Committed: committed, Final: final, buf: buf}
}

func TestWriterOverwritesTentativeTail(t *testing.T) {
	out := &memOutput{}
	w := NewWriter(out)

	require.NoError(t, w.Write(newChunk(0, 0, 3, false, "abcXY")))
	assert.Equal(t, "abcXY", string(out.data))

	require.NoError(t, w.Write(newChunk(1, 3, 8, true, "XYZ done")))
	require.NoError(t, w.Finish())

	assert.Equal(t, "abcXYZ done", string(out.data))
	assert.Equal(t, []int64{-2}, out.seeks, "seeks back exactly over the tentative tail")
	assert.Equal(t, int64(11), w.Len())
	assert.Equal(t, 2, w.Chunks())
}

func TestWriterTruncatesShorterFinalTail(t *testing.T) {
	out := &memOutput{}
	w := NewWriter(out)

	require.NoError(t, w.Write(newChunk(0, 0, 3, false, "abcLONGTAIL")))
	require.NoError(t, w.Write(newChunk(1, 3, 1, true, "!")))
	require.NoError(t, w.Finish())

	assert.Equal(t, "abc!", string(out.data))
	assert.Equal(t, int64(4), w.Len())
}

func TestWriterRejectsBadChunks(t *testing.T) {
	tests := []struct {
		name    string
		chunks  []*Chunk
		wantErr error
	}{
		{
			name:    "out_of_order",
			chunks:  []*Chunk{newChunk(1, 0, 1, false, "a")},
			wantErr: ErrChunkOrder,
		},
		{
			name: "offset_past_flushed",
			chunks: []*Chunk{
				newChunk(0, 0, 2, false, "ab"),
				newChunk(1, 5, 1, true, "c"),
			},
			wantErr: ErrChunkOffset,
		},
		{
			name: "offset_before_committed",
			chunks: []*Chunk{
				newChunk(0, 0, 2, false, "abcd"),
				newChunk(1, 1, 1, true, "c"),
			},
			wantErr: ErrChunkOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWriter(&memOutput{})
			var err error
			for _, c := range tt.chunks {
				if err = w.Write(c); err != nil {
					break
				}
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestWriterOnRealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := NewWriter(f)
	require.NoError(t, w.Write(newChunk(0, 0, 6, false, "hello hel")))
	require.NoError(t, w.Write(newChunk(1, 6, 2, true, "me")))
	require.NoError(t, w.Finish())
	require.NoError(t, f.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello me", string(got))
}

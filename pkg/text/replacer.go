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

package text

import (
	"bytes"
)

// 🔄 Replacer applies an ordered rule list to a stream that arrives in
// windows. Every rule is a stage; the output of one stage is the input of the
// next, so a replacement can be matched by a later rule but never by its own.
//
// A stage can only commit bytes that no future input can turn into a match,
// which means it holds back up to len(from)-1 bytes at the end of each window.
// The first stage does not keep those bytes: it reports them as retained and
// the caller presents them again at the start of the next window (the caller
// re-reads them from disk). Later stages see bytes that exist only in memory,
// so they keep their own pending tail.
type Replacer struct {
	stages  []*stage
	scratch [2][]byte
}

type stage struct {
	from    []byte
	to      []byte
	count   int
	pending []byte
}

// NewReplacer creates a Replacer. Rules are assumed valid, see ValidateRules.
func NewReplacer(rules []Rule) *Replacer {
	r := &Replacer{stages: make([]*stage, 0, len(rules))}
	for _, rule := range rules {
		r.stages = append(r.stages, &stage{
			from: []byte(rule.From),
			to:   []byte(rule.To),
		})
	}
	return r
}

// Push feeds one window of input and appends the committed output to dst.
// Committed output never changes afterwards. retained is the number of bytes
// at the end of in that were not consumed; they must be the first bytes of the
// next window. When final is set everything is flushed and retained is zero.
func (r *Replacer) Push(dst, in []byte, final bool) (out []byte, retained int) {
	if len(r.stages) == 0 {
		return append(dst, in...), 0
	}

	buf, consumed := r.stages[0].scan(r.scratch[0][:0], in, final)
	r.scratch[0] = buf
	retained = len(in) - consumed

	for i, s := range r.stages[1:] {
		s.pending = append(s.pending, buf...)
		slot := (i + 1) % 2
		next, used := s.scan(r.scratch[slot][:0], s.pending, final)
		r.scratch[slot] = next
		s.pending = append(s.pending[:0], s.pending[used:]...)
		buf = next
	}

	return append(dst, buf...), retained
}

// Pending appends the bytes held back by the in-memory stages to dst, in
// stream order. Together with the retained input they form the tail that is
// not yet committed.
func (r *Replacer) Pending(dst []byte) []byte {
	for i := len(r.stages) - 1; i >= 1; i-- {
		dst = append(dst, r.stages[i].pending...)
	}
	return dst
}

// Replacements returns how many replacements were made so far.
func (r *Replacer) Replacements() int {
	n := 0
	for _, s := range r.stages {
		n += s.count
	}
	return n
}

// scan replaces every non-overlapping occurrence of from, left to right, and
// returns the output along with how many input bytes it consumed.
func (s *stage) scan(dst, in []byte, final bool) ([]byte, int) {
	pos := 0
	for {
		i := bytes.Index(in[pos:], s.from)
		if i < 0 {
			break
		}
		dst = append(dst, in[pos:pos+i]...)
		dst = append(dst, s.to...)
		pos += i + len(s.from)
		s.count++
	}

	safe := len(in)
	if !final {
		// a match starting before safe would have been found above
		safe = len(in) - (len(s.from) - 1)
		if safe < pos {
			safe = pos
		}
	}
	return append(dst, in[pos:safe]...), safe
}

// ReplaceAll applies the rules to content held wholly in memory.
func ReplaceAll(content []byte, rules []Rule) *ReplacementResult {
	r := NewReplacer(rules)
	out, _ := r.Push(make([]byte, 0, len(content)), content, true)
	return &ReplacementResult{
		WasModified:      r.Replacements() > 0,
		ReplacementCount: r.Replacements(),
		ModifiedContent:  out,
	}
}

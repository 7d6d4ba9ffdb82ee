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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []Rule
		wantError string
	}{
		{
			name:  "valid_rules",
			rules: []Rule{{From: "foo", To: "bar"}, {From: "baz", To: ""}},
		},
		{
			name:      "missing_from_text",
			rules:     []Rule{{From: "foo", To: "bar"}, {To: "bar"}},
			wantError: "rule 1: from text is required",
		},
		{
			name:  "empty_rules",
			rules: []Rule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.True(t, errors.Is(err, ErrEmptyPattern))
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestMaxPatternLen(t *testing.T) {
	assert.Equal(t, 0, MaxPatternLen(nil))
	assert.Equal(t, 5, MaxPatternLen([]Rule{{From: "ab"}, {From: "hello"}, {From: "xyz"}}))
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Rule
		wantErr error
	}{
		{
			name: "simple",
			line: "hello -> goodbye",
			want: Rule{From: "hello", To: "goodbye"},
		},
		{
			name: "no_spaces",
			line: "word1->word2",
			want: Rule{From: "word1", To: "word2"},
		},
		{
			name: "inner_spaces_kept",
			line: "  new york  ->  NYC ",
			want: Rule{From: "new york", To: "NYC"},
		},
		{
			name: "empty_replacement",
			line: "remove me ->",
			want: Rule{From: "remove me", To: ""},
		},
		{
			name: "only_first_separator_splits",
			line: "a -> b -> c",
			want: Rule{From: "a", To: "b -> c"},
		},
		{
			name:    "missing_separator",
			line:    "hello goodbye",
			wantErr: ErrMalformedRule,
		},
		{
			name:    "missing_from",
			line:    " -> goodbye",
			wantErr: ErrEmptyPattern,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRule(tt.line)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustParse(t, got.String()), "String should round trip")
		})
	}
}

func mustParse(t *testing.T, line string) Rule {
	t.Helper()
	r, err := ParseRule(line)
	require.NoError(t, err)
	return r
}

func TestScanRules(t *testing.T) {
	t.Run("reads_until_terminator", func(t *testing.T) {
		input := "hello -> goodbye\n\nbad line\n# comment\nfoo->bar\n--\nafter -> ignored\n"

		var invalid []string
		rules, err := ScanRules(strings.NewReader(input), ScanOptions{
			Terminator: "--",
			Limit:      100,
			OnInvalid: func(line string, err error) {
				invalid = append(invalid, line)
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []Rule{
			{From: "hello", To: "goodbye"},
			{From: "foo", To: "bar"},
		}, rules)
		assert.Equal(t, []string{"bad line"}, invalid)
	})

	t.Run("stops_at_limit", func(t *testing.T) {
		input := "a -> 1\nb -> 2\nc -> 3\n"
		rules, err := ScanRules(strings.NewReader(input), ScanOptions{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, rules, 2)
	})

	t.Run("invalid_line_fails_without_callback", func(t *testing.T) {
		_, err := ScanRules(strings.NewReader("a -> 1\nnope\n"), ScanOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.True(t, errors.Is(err, ErrMalformedRule))
	})
}

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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/filechanger/pkg/pipeline"
	"github.com/walteh/filechanger/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: "filechanger.yaml",
			config: `
input_dir: in
output_dir: out
suffix: _changed
chunk_size: 64KiB
overlap_size: 512
parallelism: 6
include: ["*.txt"]
exclude: ["skip*"]
cleanup_partial: true
debug: true
rules:
  - from: hello
    to: goodbye
  - from: colour
    to: color
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "in", cfg.InputDir, "input dir should match")
				assert.Equal(t, "out", cfg.OutputDir, "output dir should match")
				assert.Equal(t, "_changed", cfg.Suffix, "suffix should match")
				assert.Equal(t, 6, cfg.Parallelism, "parallelism should match")
				assert.Equal(t, []string{"*.txt"}, cfg.Include)
				assert.Equal(t, []string{"skip*"}, cfg.Exclude)
				assert.True(t, cfg.CleanupPartial)
				assert.True(t, cfg.Debug)
				assert.Equal(t, []text.Rule{{From: "hello", To: "goodbye"}, {From: "colour", To: "color"}}, cfg.Rules)

				opts, err := cfg.PipelineOptions()
				require.NoError(t, err)
				assert.Equal(t, 64*1024, opts.ChunkSize)
				assert.Equal(t, 512, opts.OverlapSize)
				assert.True(t, opts.CleanupPartial)
				assert.True(t, opts.Debug)
			},
		},
		{
			name:   "yaml_minimal_gets_defaults",
			file:   "filechanger.yml",
			config: "rules:\n  - from: a\n    to: b\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultInputDir, cfg.InputDir)
				assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
				assert.Equal(t, "_new", cfg.Suffix)

				opts, err := cfg.PipelineOptions()
				require.NoError(t, err)
				assert.Equal(t, pipeline.DefaultChunkSize, opts.ChunkSize)
				assert.Equal(t, pipeline.DefaultOverlapSize, opts.OverlapSize)
			},
		},
		{
			name:   "yaml_empty_file",
			file:   "empty.yaml",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "json",
			file: "filechanger.json",
			config: `{
				"input_dir": "src",
				"chunk_size": "1MiB",
				"rules": [{"from": "x", "to": "y"}]
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "src", cfg.InputDir)
				assert.Equal(t, "1MiB", cfg.ChunkSize)
				assert.Equal(t, []text.Rule{{From: "x", To: "y"}}, cfg.Rules)
			},
		},
		{
			name: "hcl",
			file: "filechanger.hcl",
			config: `
input_dir    = "in"
chunk_size   = default_chunk_size
overlap_size = "2KiB"
exclude      = ["*.bak"]

rule {
  from = "hello"
  to   = "goodbye"
}

rule {
  from = "drop me"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "in", cfg.InputDir)
				assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
				assert.Equal(t, "2KiB", cfg.OverlapSize)
				assert.Equal(t, []string{"*.bak"}, cfg.Exclude)
				assert.Equal(t, []text.Rule{{From: "hello", To: "goodbye"}, {From: "drop me", To: ""}}, cfg.Rules)
			},
		},
		{
			name:        "yaml_unknown_field",
			file:        "bad.yaml",
			config:      "input_dir: in\nnot_a_field: true\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "json_unknown_field",
			file:        "bad.json",
			config:      `{"nope": 1}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "hcl_syntax_error",
			file:        "bad.hcl",
			config:      "input_dir = ",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "unsupported_extension",
			file:        "config.toml",
			config:      "input_dir = 'x'",
			wantErr:     true,
			errContains: "no parser found",
		},
		{
			name:        "empty_from",
			file:        "rules.yaml",
			config:      "rules:\n  - from: ''\n    to: x\n",
			wantErr:     true,
			errContains: "from text is required",
		},
		{
			name:        "bad_size",
			file:        "size.yaml",
			config:      "chunk_size: lots\n",
			wantErr:     true,
			errContains: "parsing chunk_size",
		},
		{
			name:        "overlap_too_small_for_rules",
			file:        "overlap.yaml",
			config:      "overlap_size: 2\nrules:\n  - from: longer than three\n    to: x\n",
			wantErr:     true,
			errContains: "overlap shorter than longest pattern",
		},
		{
			name:        "negative_parallelism",
			file:        "par.yaml",
			config:      "parallelism: -1\n",
			wantErr:     true,
			errContains: "parallelism",
		},
		{
			name:        "invalid_glob",
			file:        "glob.yaml",
			config:      "include: ['[a-']\n",
			wantErr:     true,
			errContains: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.config), 0o644))

			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			cfg, err := Load(ctx, path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestPipelineOptionsSentinels(t *testing.T) {
	cfg := Default()
	cfg.ChunkSize = "1KiB"
	cfg.OverlapSize = "1KiB"

	_, err := cfg.PipelineOptions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, pipeline.ErrInvalidWindow), "got %v", err)
}

func TestConfigHelpers(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = "out"
	cfg.Include = []string{"*.txt"}
	cfg.Rules = []text.Rule{{From: "a", To: "b"}}

	assert.Equal(t, filepath.Join("out", "notes_new.txt"), cfg.Namer()("in/notes.txt"))
	assert.True(t, cfg.Filter().Match("a.txt"))
	assert.False(t, cfg.Filter().Match("a.log"))
	assert.Equal(t, "inputFiles -> out (1 rules, chunk 5MiB, overlap 1KiB)", cfg.String())
}

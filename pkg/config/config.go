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
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/walteh/filechanger/pkg/pipeline"
	"github.com/walteh/filechanger/pkg/schedule"
	"github.com/walteh/filechanger/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// Defaults used for anything a config file leaves out.
const (
	DefaultInputDir    = "inputFiles"
	DefaultOutputDir   = "outputFiles"
	DefaultChunkSize   = "5MiB"
	DefaultOverlapSize = "1KiB"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config represents the complete configuration
type Config struct {
	InputDir       string      `json:"input_dir,omitempty" yaml:"input_dir,omitempty"`
	OutputDir      string      `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Suffix         string      `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	ChunkSize      string      `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`     // Human size, e.g. "5MiB"
	OverlapSize    string      `json:"overlap_size,omitempty" yaml:"overlap_size,omitempty"` // Human size, e.g. "1KiB"
	Parallelism    int         `json:"parallelism,omitempty" yaml:"parallelism,omitempty"`   // Zero means the CPU count
	Include        []string    `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude        []string    `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	CleanupPartial bool        `json:"cleanup_partial,omitempty" yaml:"cleanup_partial,omitempty"`
	Debug          bool        `json:"debug,omitempty" yaml:"debug,omitempty"`
	Rules          []text.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty field with its default.
func (cfg *Config) ApplyDefaults() {
	if cfg.InputDir == "" {
		cfg.InputDir = DefaultInputDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.Suffix == "" {
		cfg.Suffix = schedule.DefaultSuffix
	}
	if cfg.ChunkSize == "" {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.OverlapSize == "" {
		cfg.OverlapSize = DefaultOverlapSize
	}
}

// 🎯 Load loads the configuration from a file. An empty path returns the
// defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		logger.Debug().Msg("no configuration file, using defaults")
		return Default(), nil
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.InputDir == "" {
		return errors.Errorf("input_dir is required")
	}
	if cfg.OutputDir == "" {
		return errors.Errorf("output_dir is required")
	}
	if cfg.Parallelism < 0 {
		return errors.Errorf("parallelism must not be negative, got %d", cfg.Parallelism)
	}
	if filepath.Clean(cfg.InputDir) == filepath.Clean(cfg.OutputDir) && cfg.Suffix == "" {
		return errors.Errorf("an empty suffix would overwrite inputs in %s", cfg.InputDir)
	}
	if err := cfg.Filter().Validate(); err != nil {
		return errors.Errorf("validating filter: %w", err)
	}
	if _, err := cfg.PipelineOptions(); err != nil {
		return err
	}
	return nil
}

// PipelineOptions converts the size settings into pipeline options and checks
// them against the rules.
func (cfg *Config) PipelineOptions() (pipeline.Options, error) {
	chunk, err := parseSize("chunk_size", cfg.ChunkSize, DefaultChunkSize)
	if err != nil {
		return pipeline.Options{}, err
	}
	overlap, err := parseSize("overlap_size", cfg.OverlapSize, DefaultOverlapSize)
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		ChunkSize:      int(chunk),
		OverlapSize:    int(overlap),
		CleanupPartial: cfg.CleanupPartial,
		Debug:          cfg.Debug,
	}
	if err := opts.Validate(cfg.Rules); err != nil {
		return pipeline.Options{}, errors.Errorf("validating pipeline options: %w", err)
	}
	return opts, nil
}

// Filter returns the input file filter.
func (cfg *Config) Filter() schedule.Filter {
	return schedule.Filter{Include: cfg.Include, Exclude: cfg.Exclude}
}

// Namer returns the output naming function.
func (cfg *Config) Namer() schedule.Namer {
	return schedule.OutputNamer(cfg.OutputDir, cfg.Suffix)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (%d rules, chunk %s, overlap %s)",
		cfg.InputDir, cfg.OutputDir, len(cfg.Rules), cfg.ChunkSize, cfg.OverlapSize)
}

func parseSize(field, value, fallback string) (int64, error) {
	if value == "" {
		value = fallback
	}
	n, err := units.RAMInBytes(value)
	if err != nil {
		return 0, errors.Errorf("parsing %s %q: %w", field, value, err)
	}
	return n, nil
}

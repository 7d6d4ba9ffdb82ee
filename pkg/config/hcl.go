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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/filechanger/pkg/text"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL. Rules are written as repeated blocks:
//
//	rule {
//	  from = "hello"
//	  to   = "goodbye"
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_chunk_size":   cty.StringVal(DefaultChunkSize),
			"default_overlap_size": cty.StringVal(DefaultOverlapSize),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		InputDir       string   `hcl:"input_dir,optional"`
		OutputDir      string   `hcl:"output_dir,optional"`
		Suffix         string   `hcl:"suffix,optional"`
		ChunkSize      string   `hcl:"chunk_size,optional"`
		OverlapSize    string   `hcl:"overlap_size,optional"`
		Parallelism    int      `hcl:"parallelism,optional"`
		Include        []string `hcl:"include,optional"`
		Exclude        []string `hcl:"exclude,optional"`
		CleanupPartial bool     `hcl:"cleanup_partial,optional"`
		Debug          bool     `hcl:"debug,optional"`
		Rules          []struct {
			From string `hcl:"from"`
			To   string `hcl:"to,optional"`
		} `hcl:"rule,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		InputDir:       hclCfg.InputDir,
		OutputDir:      hclCfg.OutputDir,
		Suffix:         hclCfg.Suffix,
		ChunkSize:      hclCfg.ChunkSize,
		OverlapSize:    hclCfg.OverlapSize,
		Parallelism:    hclCfg.Parallelism,
		Include:        hclCfg.Include,
		Exclude:        hclCfg.Exclude,
		CleanupPartial: hclCfg.CleanupPartial,
		Debug:          hclCfg.Debug,
	}
	for _, r := range hclCfg.Rules {
		cfg.Rules = append(cfg.Rules, text.Rule{From: r.From, To: r.To})
	}

	return cfg, nil
}

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
	"bufio"
	"io"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Separator splits the two halves of a rule written as text.
const Separator = "->"

var (
	// ErrEmptyPattern is returned for a rule without from text.
	ErrEmptyPattern = errors.Base("from text is required")
	// ErrMalformedRule is returned for a line that is not "from -> to".
	ErrMalformedRule = errors.Base("rule must look like \"from -> to\"")
)

// Rule defines a single literal substitution.
type Rule struct {
	// From is the text to replace
	From string `json:"from" yaml:"from"`

	// To is the replacement text
	To string `json:"to" yaml:"to"`
}

// String renders the rule in the same form ParseRule accepts.
func (r Rule) String() string {
	return r.From + " " + Separator + " " + r.To
}

// ReplacementResult contains the results of an in-memory replacement
type ReplacementResult struct {
	// WasModified indicates if any replacements were made
	WasModified bool

	// ReplacementCount is the number of replacements made
	ReplacementCount int

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// ValidateRules checks that all rules are valid
func ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.From == "" {
			return errors.Errorf("rule %d: %w", i, ErrEmptyPattern)
		}
	}
	return nil
}

// MaxPatternLen returns the length in bytes of the longest from text.
func MaxPatternLen(rules []Rule) int {
	longest := 0
	for _, r := range rules {
		if len(r.From) > longest {
			longest = len(r.From)
		}
	}
	return longest
}

// ParseRule parses a line of the form "from -> to". Surrounding whitespace is
// trimmed from both halves; the to half may be empty.
func ParseRule(line string) (Rule, error) {
	from, to, ok := strings.Cut(line, Separator)
	if !ok {
		return Rule{}, errors.Errorf("parsing %q: %w", line, ErrMalformedRule)
	}
	rule := Rule{
		From: strings.TrimSpace(from),
		To:   strings.TrimSpace(to),
	}
	if rule.From == "" {
		return Rule{}, errors.Errorf("parsing %q: %w", line, ErrEmptyPattern)
	}
	return rule, nil
}

// ScanOptions controls ScanRules.
type ScanOptions struct {
	// Terminator ends the scan when a line contains it. Empty means read to EOF.
	Terminator string
	// Limit caps the number of lines read. Zero means no limit.
	Limit int
	// OnInvalid is called for lines that do not parse. When nil the first
	// invalid line aborts the scan.
	OnInvalid func(line string, err error)
}

// ScanRules reads one rule per line. Blank lines and lines starting with '#'
// are skipped.
func ScanRules(r io.Reader, opts ScanOptions) ([]Rule, error) {
	var rules []Rule
	scanner := bufio.NewScanner(r)
	for lines := 0; scanner.Scan(); lines++ {
		if opts.Limit > 0 && lines >= opts.Limit {
			break
		}
		line := scanner.Text()
		if opts.Terminator != "" && strings.Contains(line, opts.Terminator) {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		rule, err := ParseRule(trimmed)
		if err != nil {
			if opts.OnInvalid == nil {
				return nil, errors.Errorf("line %d: %w", lines+1, err)
			}
			opts.OnInvalid(line, err)
			continue
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("reading rules: %w", err)
	}
	return rules, nil
}

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

package status

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent    = 4  // spaces to indent file entries
	nameWidth     = 35 // Base width for filename
	outputWidth   = 35 // Width for output filename
	outcomeWidth  = 10 // Width for outcome text
	maxNameLength = nameWidth - 1
)

// 🎯 FormatFileLine formats one finished file for the console
func FormatFileLine(source, output string, outcome Outcome) string {
	var prefix string
	switch outcome {
	case OutcomeReady:
		prefix = color.GreenString("✓")
	case OutcomeCancelled:
		prefix = color.YellowString("⏹")
	case OutcomeFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, shorten(filepath.Base(source)))
	outputPart := fmt.Sprintf("%-*s", outputWidth, shorten(filepath.Base(output)))
	outcomePart := fmt.Sprintf("%-*s", outcomeWidth, outcome.String())

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		outputPart,
		outcomePart,
	)
}

// shorten keeps long names from breaking the columns
func shorten(name string) string {
	if len(name) <= maxNameLength {
		return name
	}
	return name[:maxNameLength-1] + "…"
}

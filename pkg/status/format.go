package status

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/walteh/filechanger/pkg/pipeline"
)

// FileFormatter defines how file results and progress should be formatted
type FileFormatter interface {
	// FormatResult formats the outcome of one file
	FormatResult(res *pipeline.Result) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatResult formats a file result with emojis
func (f *DefaultFileFormatter) FormatResult(res *pipeline.Result) string {
	if res == nil {
		return ""
	}
	switch OutcomeOf(res) {
	case OutcomeReady:
		if res.Replacements == 0 {
			return fmt.Sprintf("👍 %s is ready (no changes)", res.Source)
		}
		return fmt.Sprintf("✨ %s is ready (%d replacements, %s)",
			res.Source, res.Replacements, units.HumanSize(float64(res.BytesOut)))
	case OutcomeCancelled:
		return fmt.Sprintf("⏹️  %s was cancelled", res.Source)
	default:
		return fmt.Sprintf("❌ %s failed", res.Source)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}

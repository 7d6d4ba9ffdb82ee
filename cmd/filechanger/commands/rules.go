package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/filechanger/cmd/filechanger/opts"
	"github.com/walteh/filechanger/pkg/text"
	"gitlab.com/tozd/go/errors"
)

const (
	// promptTerminator ends interactive rule entry when a line contains it
	promptTerminator = "--"
	// promptLimit caps how many lines interactive entry reads
	promptLimit = 100
)

// ruleFlags are the rule sources shared by run and rules
type ruleFlags struct {
	rules    []string
	file     string
	noPrompt bool
}

func (f *ruleFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.rules, "rule", "r", nil, `substitution rule "from -> to", repeatable`)
	cmd.Flags().StringVar(&f.file, "rules-file", "", `file with one "from -> to" rule per line`)
	cmd.Flags().BoolVar(&f.noPrompt, "no-prompt", false, "do not ask for rules when none are given")
}

// gather collects rules in order: config file, rules file, --rule flags. When
// none are found and prompting is allowed, rules are read from stdin.
func (f *ruleFlags) gather(ctx context.Context, o *opts.RootOpts) ([]text.Rule, error) {
	rules := append([]text.Rule(nil), o.Config.Rules...)

	if f.file != "" {
		fh, err := os.Open(f.file)
		if err != nil {
			return nil, errors.Errorf("opening rules file: %w", err)
		}
		defer fh.Close()

		fromFile, err := text.ScanRules(fh, text.ScanOptions{})
		if err != nil {
			return nil, errors.Errorf("reading rules file %s: %w", f.file, err)
		}
		rules = append(rules, fromFile...)
	}

	for _, raw := range f.rules {
		rule, err := text.ParseRule(raw)
		if err != nil {
			return nil, errors.Errorf("parsing --rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if len(rules) > 0 || f.noPrompt || o.In == nil {
		return rules, nil
	}

	o.Logger.Prompt(fmt.Sprintf("Enter rules as \"from %s to\", one per line. Finish with a line containing %s", text.Separator, promptTerminator))
	prompted, err := text.ScanRules(o.In, text.ScanOptions{
		Terminator: promptTerminator,
		Limit:      promptLimit,
		OnInvalid: func(line string, err error) {
			o.Logger.Warningf("skipping %q: %v", line, err)
		},
	})
	if err != nil {
		return nil, errors.Errorf("reading rules from input: %w", err)
	}
	return prompted, nil
}

// NewRulesCmd creates a command that shows the rules a run would apply
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	var flags ruleFlags

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the substitution rules a run would apply",
		Long: `Rules collects rules from the config file, the rules file and --rule flags,
checks them against the configured overlap size and prints them in the order
they are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			flags.noPrompt = true
			rules, err := flags.gather(ctx, o)
			if err != nil {
				return err
			}

			if len(rules) == 0 {
				o.Logger.Warning("no rules configured, files would be copied unchanged")
				return nil
			}

			for i, rule := range rules {
				fmt.Fprintf(o.Out, "%3d. %s\n", i+1, rule)
			}

			check := *o.Config
			check.Rules = rules
			if _, err := check.PipelineOptions(); err != nil {
				return errors.Errorf("checking rules: %w", err)
			}

			longest := text.MaxPatternLen(rules)
			o.Logger.Successf("%d rules, longest pattern %d bytes, overlap %s", len(rules), longest, o.Config.OverlapSize)
			return nil
		},
	}

	flags.add(cmd)
	return cmd
}

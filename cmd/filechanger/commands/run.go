package commands

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/filechanger/cmd/filechanger/opts"
	"github.com/walteh/filechanger/pkg/log"
	"github.com/walteh/filechanger/pkg/pipeline"
	"github.com/walteh/filechanger/pkg/schedule"
	"gitlab.com/tozd/go/errors"
)

// NewRunCmd creates a new run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var rules ruleFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply substitution rules to every file in the input directory",
		Long: `Run streams every file of the input directory through the substitution rules
and writes the result to the output directory as <name>_new<ext>.
It will:
1. Collect rules from the config, a rules file, flags or the terminal
2. Create the input and output directories if they are missing
3. Process files smallest first, a bounded number at a time
4. Print one line per file and a summary table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := o.Config

			// Flags win over the config file
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.InputDir, _ = flags.GetString("input")
			}
			if flags.Changed("output") {
				cfg.OutputDir, _ = flags.GetString("output")
			}
			if flags.Changed("suffix") {
				cfg.Suffix, _ = flags.GetString("suffix")
			}
			if flags.Changed("chunk-size") {
				cfg.ChunkSize, _ = flags.GetString("chunk-size")
			}
			if flags.Changed("overlap-size") {
				cfg.OverlapSize, _ = flags.GetString("overlap-size")
			}
			if flags.Changed("parallelism") {
				cfg.Parallelism, _ = flags.GetInt("parallelism")
			}
			if flags.Changed("include") {
				cfg.Include, _ = flags.GetStringSlice("include")
			}
			if flags.Changed("exclude") {
				cfg.Exclude, _ = flags.GetStringSlice("exclude")
			}
			if flags.Changed("cleanup-partial") {
				cfg.CleanupPartial, _ = flags.GetBool("cleanup-partial")
			}

			if err := prepareDirs(cfg.InputDir, cfg.OutputDir); err != nil {
				return err
			}

			gathered, err := rules.gather(ctx, o)
			if err != nil {
				return err
			}
			cfg.Rules = gathered
			if len(cfg.Rules) == 0 {
				o.Logger.Warning("no rules given, files will be copied unchanged")
			}

			if err := cfg.Validate(); err != nil {
				return errors.Errorf("validating settings: %w", err)
			}
			pipeOpts, err := cfg.PipelineOptions()
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

			tasks, err := schedule.Discover(ctx, cfg.InputDir, cfg.Filter())
			if err != nil {
				return errors.Errorf("discovering input files: %w", err)
			}

			p, err := pipeline.New(cfg.Rules, pipeOpts)
			if err != nil {
				return errors.Errorf("creating pipeline: %w", err)
			}

			scheduler := schedule.New(schedule.NewPipelineProcessor(p, cfg.Namer()), schedule.Options{
				Parallelism: cfg.Parallelism,
				Debug:       cfg.Debug,
				RunID:       runID,
				OnResult: func(res *pipeline.Result) {
					o.Logger.LogResult(ctx, res)
				},
			})

			o.Logger.StartBatch(ctx, log.BatchOperation{
				RunID:     runID,
				InputDir:  cfg.InputDir,
				OutputDir: cfg.OutputDir,
				Files:     len(tasks),
				Window:    scheduler.Window(),
				Rules:     len(cfg.Rules),
			})

			report := scheduler.Run(ctx, tasks)
			o.Logger.EndBatch(ctx, report)

			if err := report.Err(); err != nil {
				return errors.Errorf("processing files: %w", err)
			}
			if len(report.Results) == 0 {
				o.Logger.Warningf("no files found in %s", cfg.InputDir)
				return nil
			}
			o.Logger.Successf("%d files ready in %s", len(report.Results), cfg.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringP("input", "i", "", "input directory (default from config, else inputFiles)")
	cmd.Flags().StringP("output", "o", "", "output directory (default from config, else outputFiles)")
	cmd.Flags().String("suffix", "", "suffix added to output file names (default _new)")
	cmd.Flags().String("chunk-size", "", "bytes read per chunk, e.g. 5MiB")
	cmd.Flags().String("overlap-size", "", "most bytes re-read per chunk, e.g. 1KiB")
	cmd.Flags().IntP("parallelism", "p", 0, "CPU count the pipeline window is derived from (default NumCPU)")
	cmd.Flags().StringSlice("include", nil, "only process files matching these globs")
	cmd.Flags().StringSlice("exclude", nil, "skip files matching these globs")
	cmd.Flags().Bool("cleanup-partial", false, "remove the output of a file that failed")
	rules.add(cmd)

	return cmd
}

// prepareDirs creates the input and output directories when missing
func prepareDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

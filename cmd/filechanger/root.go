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

package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/filechanger/cmd/filechanger/commands"
	"github.com/walteh/filechanger/cmd/filechanger/opts"
	"github.com/walteh/filechanger/pkg/config"
	"github.com/walteh/filechanger/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd builds the command tree. Options are filled in once flags are
// parsed, before any subcommand runs.
func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	rootOpts := &opts.RootOpts{In: in, Out: out}

	rootCmd := &cobra.Command{
		Use:   "filechanger",
		Short: "Literal text substitution across large files",
		Long: `filechanger rewrites every file of a directory through an ordered list of
"from -> to" substitutions. Files are streamed in chunks, so they never have
to fit in memory, and several files are processed at once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initRootOpts(cmd, rootOpts, errOut)
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewRulesCmd(rootOpts),
		newVersionCmd(out),
	)

	return rootCmd
}

// initRootOpts loads the configuration and wires the loggers
func initRootOpts(cmd *cobra.Command, o *opts.RootOpts, errOut io.Writer) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	zlog := setupLogging(errOut, o.Debug)
	ctx = zlog.WithContext(ctx)

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if cfg.Debug && !o.Debug {
		o.Debug = true
		zlog = setupLogging(errOut, true)
		ctx = zlog.WithContext(ctx)
	}
	cfg.Debug = o.Debug

	o.Config = cfg
	o.Logger = log.New(o.Out, zlog.With().Str("component", "console").Logger())

	cmd.SetContext(ctx)
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .yml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	// info is already on the console through log.Logger
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.SyncWriter(w)}).Level(level).With().Timestamp().Logger()
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/srcgen/pkg/logging"
	"github.com/AleutianAI/srcgen/services/srcgen/config"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
	"github.com/AleutianAI/srcgen/services/srcgen/telemetry"
)

// runtime is the state shared by all subcommands once flags are parsed.
type runtime struct {
	configPath string
	language   string
	logLevel   string
	telemetry  bool

	cfg      config.Config
	logger   *logging.Logger
	parser   *syntax.Parser
	shutdown func(context.Context) error
}

func newRootCmd() (*cobra.Command, *runtime) {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "srcgen",
		Short:         "Structural source editing with lossless regeneration",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "config file (default $SRCGEN_CONFIG or ./srcgen.yaml)")
	flags.StringVarP(&rt.language, "language", "l", "", "grammar to use instead of the file extension")
	flags.StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&rt.telemetry, "telemetry", false, "print traces and metrics to stderr")

	root.AddCommand(
		newRenderCmd(rt),
		newApplyCmd(rt),
		newTreeCmd(rt),
		newLanguagesCmd(rt),
	)
	return root, rt
}

func (rt *runtime) init(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.language != "" {
		cfg.Language = rt.language
	}
	if rt.logLevel != "" {
		cfg.Log.Level = rt.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	rt.cfg = cfg

	lc := cfg.Logging("srcgen")
	lc.Output = cmd.ErrOrStderr()
	rt.logger = logging.New(lc)
	rt.logger.Install()

	tc := cfg.Observability("srcgen")
	tc.Output = cmd.ErrOrStderr()
	if rt.telemetry {
		tc.TraceExporter = telemetry.ExporterStdout
		tc.MetricExporter = telemetry.ExporterStdout
	}
	shutdown, err := telemetry.Init(cmd.Context(), tc)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	rt.shutdown = shutdown

	rt.parser = syntax.NewParser(nil, syntax.WithMaxSourceSize(cfg.MaxSourceSize))
	return nil
}

// close flushes telemetry and closes the log file. It runs after the
// command whether or not it failed.
func (rt *runtime) close(ctx context.Context) error {
	var errs []error
	if rt.shutdown != nil {
		if err := rt.shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown telemetry: %w", err))
		}
	}
	if rt.logger != nil {
		errs = append(errs, rt.logger.Close())
	}
	return errors.Join(errs...)
}

// readSource reads a file honouring the configured size limit.
func (rt *runtime) readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > rt.cfg.MaxSourceSize {
		return nil, fmt.Errorf("%s: %w: %d bytes (max %d)", path, syntax.ErrSourceTooLarge, info.Size(), rt.cfg.MaxSourceSize)
	}
	return os.ReadFile(path)
}

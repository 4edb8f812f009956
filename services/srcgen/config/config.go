// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads srcgen settings from srcgen.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/srcgen/pkg/logging"
	"github.com/AleutianAI/srcgen/services/srcgen/syntax"
	"github.com/AleutianAI/srcgen/services/srcgen/telemetry"
)

const (
	// EnvConfigPath names the environment variable holding the config path.
	EnvConfigPath = "SRCGEN_CONFIG"

	// DefaultFileName is looked up in the working directory when no path is
	// given.
	DefaultFileName = "srcgen.yaml"

	// MaxConfigFileSize is the largest accepted config file (1MB).
	MaxConfigFileSize = 1024 * 1024
)

// ErrConfigTooLarge indicates a config file over MaxConfigFileSize.
var ErrConfigTooLarge = errors.New("config file too large")

// Config holds the settings shared by all srcgen commands.
type Config struct {
	// Language forces a grammar instead of choosing one by file extension.
	Language string `yaml:"language"`

	// MaxSourceSize is the largest source file parsed, in bytes.
	MaxSourceSize int64 `yaml:"max_source_size"`

	// Concurrency bounds how many files are processed at once.
	Concurrency int `yaml:"concurrency"`

	// Diff prints a unified diff instead of the rendered text.
	Diff bool `yaml:"diff"`

	Log LogConfig `yaml:"log"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	// Traces is "none", "stdout" or "otlp".
	Traces string `yaml:"traces"`

	// Metrics is "none" or "stdout".
	Metrics string `yaml:"metrics"`

	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxSourceSize: syntax.DefaultMaxSourceSize,
		Concurrency:   4,
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Traces:       telemetry.ExporterNone,
			Metrics:      telemetry.ExporterNone,
			OTLPEndpoint: "localhost:4317",
			OTLPInsecure: true,
		},
	}
}

// Load reads configuration with priority env > file > defaults.
//
// Description:
//
//	The file is path if given, else $SRCGEN_CONFIG, else srcgen.yaml in the
//	working directory. A missing default file is not an error; a missing
//	file that was asked for explicitly is.
//
// Inputs:
//   - path: Config file path. May be "".
//
// Outputs:
//   - Config: The merged configuration.
//   - error: Read, size, parse or validation failure.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path, explicit = DefaultFileName, false
	}

	if err := loadFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		} else {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > MaxConfigFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, info.Size(), MaxConfigFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SRCGEN_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("SRCGEN_MAX_SOURCE_SIZE"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxSourceSize = i
		}
	}
	if v := os.Getenv("SRCGEN_CONCURRENCY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = i
		}
	}
	if v := os.Getenv("SRCGEN_DIFF"); v != "" {
		cfg.Diff = v == "true" || v == "1"
	}
	if v := os.Getenv("SRCGEN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SRCGEN_LOG_JSON"); v != "" {
		cfg.Log.JSON = v == "true" || v == "1"
	}
	if v := os.Getenv("OTEL_TRACES_EXPORTER"); v != "" {
		cfg.Telemetry.Traces = v
	}
	if v := os.Getenv("OTEL_METRICS_EXPORTER"); v != "" {
		cfg.Telemetry.Metrics = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxSourceSize < 1 {
		return fmt.Errorf("max_source_size must be >= 1")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !telemetry.ValidTraceExporter(c.Telemetry.Traces) {
		return fmt.Errorf("telemetry.traces: unknown exporter %q", c.Telemetry.Traces)
	}
	if !telemetry.ValidMetricExporter(c.Telemetry.Metrics) {
		return fmt.Errorf("telemetry.metrics: unknown exporter %q", c.Telemetry.Metrics)
	}
	return nil
}

// Logging converts the log section to a logging.Config for service.
func (c Config) Logging(service string) logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	return logging.Config{
		Level:   level,
		LogDir:  c.Log.Dir,
		Service: service,
		JSON:    c.Log.JSON,
	}
}

// Observability converts the telemetry section to a telemetry.Config for
// service.
func (c Config) Observability(service string) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceName = service
	tc.TraceExporter = c.Telemetry.Traces
	tc.MetricExporter = c.Telemetry.Metrics
	tc.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	tc.OTLPInsecure = c.Telemetry.OTLPInsecure
	return tc
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// resetGlobals puts no-op providers back after a test installs real ones.
func resetGlobals(t *testing.T) {
	t.Cleanup(func() {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "srcgen", cfg.ServiceName)
	assert.Equal(t, ExporterNone, cfg.TraceExporter)
	assert.Equal(t, ExporterNone, cfg.MetricExporter)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
}

func TestInit_NilContext(t *testing.T) {
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_None(t *testing.T) {
	shutdown, err := Init(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	resetGlobals(t)

	cfg := DefaultConfig()
	cfg.TraceExporter = "zipkin"
	_, err := Init(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownExporter)

	cfg = DefaultConfig()
	cfg.MetricExporter = ExporterOTLP
	_, err = Init(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrUnknownExporter)
}

func TestInit_StdoutTraces(t *testing.T) {
	resetGlobals(t)

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterStdout
	cfg.Output = &buf

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)

	_, span := otel.Tracer("srcgen.test").Start(context.Background(), "render-pass")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "render-pass")
	assert.Contains(t, buf.String(), "srcgen")
}

func TestInit_StdoutMetrics(t *testing.T) {
	resetGlobals(t)

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.MetricExporter = ExporterStdout
	cfg.Output = &buf

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)

	counter, err := otel.Meter("srcgen.test").Int64Counter("srcgen_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "srcgen_test_total")
}

func TestValidExporters(t *testing.T) {
	assert.True(t, ValidTraceExporter(ExporterOTLP))
	assert.True(t, ValidTraceExporter(ExporterStdout))
	assert.False(t, ValidTraceExporter("jaeger"))
	assert.True(t, ValidMetricExporter(ExporterStdout))
	assert.False(t, ValidMetricExporter(ExporterOTLP))
}

func TestLoggerWithTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LoggerWithTrace(context.Background(), logger).Info("no span")
	assert.NotContains(t, buf.String(), "trace_id")
	assert.Empty(t, TraceID(context.Background()))

	buf.Reset()
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("srcgen.test").Start(context.Background(), "apply")
	defer span.End()

	LoggerWithTrace(ctx, logger).Info("with span")
	id := TraceID(ctx)
	require.NotEmpty(t, id)
	assert.Contains(t, buf.String(), `"trace_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"span_id":"`)
}

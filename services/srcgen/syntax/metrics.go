// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package syntax

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("srcgen.syntax")
	meter  = otel.Meter("srcgen.syntax")
)

var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	parsedNodes  metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"srcgen_parse_duration_seconds",
			metric.WithDescription("Duration of tree-sitter parses"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"srcgen_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parsedNodes, err = meter.Int64Histogram(
			"srcgen_parse_nodes",
			metric.WithDescription("Concrete syntax tree nodes per parse"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordParseMetrics(ctx context.Context, language string, duration time.Duration, nodes int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	)
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	if success {
		parsedNodes.Record(ctx, int64(nodes),
			metric.WithAttributes(attribute.String("language", language)))
	}
}

// startParseSpan creates a span for a parse operation. Caller must End it.
func startParseSpan(ctx context.Context, language, name string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Parser.Parse",
		trace.WithAttributes(
			attribute.String("syntax.language", language),
			attribute.String("syntax.name", name),
			attribute.Int("syntax.content_size", size),
		),
	)
}

func setParseSpanResult(span trace.Span, nodes int, hasError bool) {
	span.SetAttributes(
		attribute.Int("syntax.node_count", nodes),
		attribute.Bool("syntax.has_error", hasError),
	)
}

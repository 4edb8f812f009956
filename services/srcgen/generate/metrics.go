// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("srcgen.generate")
	meter  = otel.Meter("srcgen.generate")
)

var (
	renderLatency  metric.Float64Histogram
	renderTotal    metric.Int64Counter
	segmentsTotal  metric.Int64Counter
	mergesRendered metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		renderLatency, err = meter.Float64Histogram(
			"srcgen_render_duration_seconds",
			metric.WithDescription("Duration of a full render"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		renderTotal, err = meter.Int64Counter(
			"srcgen_render_total",
			metric.WithDescription("Total renders by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		segmentsTotal, err = meter.Int64Counter(
			"srcgen_render_segments_total",
			metric.WithDescription("Segments produced across renders"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		mergesRendered, err = meter.Int64Counter(
			"srcgen_render_merges_total",
			metric.WithDescription("Merge nodes rendered across renders"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRenderMetrics(ctx context.Context, duration time.Duration, segments, merges int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	renderLatency.Record(ctx, duration.Seconds(), attrs)
	renderTotal.Add(ctx, 1, attrs)
	if success {
		segmentsTotal.Add(ctx, int64(segments))
		mergesRendered.Add(ctx, int64(merges))
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package edit

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("srcgen.edit")
	meter  = otel.Meter("srcgen.edit")
)

var (
	actionTotal   metric.Int64Counter
	actionLatency metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		actionTotal, err = meter.Int64Counter(
			"srcgen_edit_actions_total",
			metric.WithDescription("Edit actions applied, by action and outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		actionLatency, err = meter.Float64Histogram(
			"srcgen_edit_action_duration_seconds",
			metric.WithDescription("Duration of a single edit action"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordActionMetrics(ctx context.Context, action string, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", success),
	)
	actionTotal.Add(ctx, 1, attrs)
	actionLatency.Record(ctx, duration.Seconds(), attrs)
}

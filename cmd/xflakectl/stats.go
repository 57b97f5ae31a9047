package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// genStats 以进程内 ManualReader 收集 gen 期间的 xmetrics 指标，结束时汇总输出。
type genStats struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	observer xmetrics.Observer
}

func newGenStats() (*genStats, error) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	observer, err := xmetrics.NewOTelObserver(xmetrics.WithMeterProvider(provider))
	if err != nil {
		return nil, err
	}
	return &genStats{reader: reader, provider: provider, observer: observer}, nil
}

// opSummary 单个操作的汇总。
type opSummary struct {
	byStatus map[string]int64
	count    uint64
	seconds  float64
}

// report 汇总并输出，形如：
//
//	next_with_retry: ok=5 error=0 avg=1.2µs
func (s *genStats) report(ctx context.Context, w io.Writer) error {
	defer func() { _ = s.provider.Shutdown(context.WithoutCancel(ctx)) }() //nolint:errcheck // 仅用于本地汇总

	var rm metricdata.ResourceMetrics
	if err := s.reader.Collect(context.WithoutCancel(ctx), &rm); err != nil {
		return fmt.Errorf("collect stats: %w", err)
	}

	ops := make(map[string]*opSummary)
	get := func(op string) *opSummary {
		if ops[op] == nil {
			ops[op] = &opSummary{byStatus: make(map[string]int64)}
		}
		return ops[op]
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != xmetrics.MetricOperationTotal {
					continue
				}
				for _, dp := range data.DataPoints {
					op, _ := dp.Attributes.Value("operation")
					status, _ := dp.Attributes.Value("status")
					get(op.AsString()).byStatus[status.AsString()] += dp.Value
				}
			case metricdata.Histogram[float64]:
				if m.Name != xmetrics.MetricOperationDuration {
					continue
				}
				for _, dp := range data.DataPoints {
					op, _ := dp.Attributes.Value("operation")
					sum := get(op.AsString())
					sum.count += dp.Count
					sum.seconds += dp.Sum
				}
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(ops)) {
		op := ops[name]
		var avg time.Duration
		if op.count > 0 {
			avg = time.Duration(op.seconds / float64(op.count) * float64(time.Second))
		}
		if _, err := fmt.Fprintf(w, "%s: %s=%d %s=%d avg=%s\n", name,
			xmetrics.StatusOK, op.byStatus[string(xmetrics.StatusOK)],
			xmetrics.StatusError, op.byStatus[string(xmetrics.StatusError)],
			avg,
		); err != nil {
			return err
		}
	}
	return nil
}

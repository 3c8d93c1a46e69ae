package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"finsight/internal/analytics"
)

// DefaultMetricConcurrency bounds the per-metric fan-out.
const DefaultMetricConcurrency = 4

// forEachMetric runs fn for every metric concurrently and collects results
// into canonical merge order, regardless of completion order. The first
// failure cancels the remaining tasks and is returned; partial results are
// discarded.
func forEachMetric[T any](ctx context.Context, limit int, fn func(ctx context.Context, m analytics.Metric) (T, error)) ([]T, error) {
	if limit <= 0 {
		limit = DefaultMetricConcurrency
	}

	metrics := analytics.Metrics()
	out := make([]T, len(metrics))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, m := range metrics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, m)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

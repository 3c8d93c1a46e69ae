// Package services holds the application services between the HTTP
// transport and the analytics engine.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"finsight/internal/analytics"
	"finsight/internal/ingest"
	"finsight/internal/workflow"
)

// AnalysisService runs statement analysis. It owns the workflow runner for
// full dashboard runs and uses the engine directly for the lighter
// per-metric queries.
type AnalysisService struct {
	runner *workflow.Runner
	engine *analytics.Engine
	logger *slog.Logger
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(runner *workflow.Runner, engine *analytics.Engine, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{runner: runner, engine: engine, logger: logger}
}

// RunDashboard executes the full workflow over an uploaded statement and
// returns the final state and the run report. A failed run is reported via
// State.ErrorMessage, not an error; errors are reserved for being unable to
// run at all.
func (s *AnalysisService) RunDashboard(ctx context.Context, name string, r io.Reader) (workflow.State, *workflow.Report) {
	return s.runner.Run(ctx, workflow.StatementSource{Name: name, Reader: r})
}

// MetricDetail is the focused single-metric response: the comparison tile,
// the trailing series, and factor attribution.
type MetricDetail struct {
	Comparison analytics.MetricComparison  `json:"comparison"`
	Series     analytics.MetricSeries      `json:"series"`
	RootCause  analytics.RootCauseAnalysis `json:"root_cause"`
	Issues     []string                    `json:"validation_issues,omitempty"`
}

// AnalyzeMetric parses a statement and analyzes one named metric over the
// trailing twelve months.
func (s *AnalysisService) AnalyzeMetric(ctx context.Context, name string, r io.Reader, metricName string) (*MetricDetail, error) {
	m, err := analytics.ParseMetric(metricName)
	if err != nil {
		return nil, err
	}

	txns, issues, err := ingest.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("statement contains no usable transactions")
	}

	rootCause, err := s.engine.AnalyzeRootCause(txns, m)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "metric analysis completed",
		slog.String("metric", m.Key()),
		slog.Int("transactions", len(txns)))

	return &MetricDetail{
		Comparison: s.engine.CompareMetric(txns, m),
		Series:     s.engine.MetricSeries(txns, m, analytics.DefaultWindowMonths),
		RootCause:  rootCause,
		Issues:     issues,
	}, nil
}

// Summary is the lightweight statement overview: the month-over-month
// comparison plus a six-month series for every metric.
type Summary struct {
	Comparison analytics.Comparison     `json:"comparison"`
	Series     []analytics.MetricSeries `json:"series"`
	Issues     []string                 `json:"validation_issues,omitempty"`
}

// Summarize parses a statement and returns the dashboard-window overview
// without narratives or recommendations.
func (s *AnalysisService) Summarize(ctx context.Context, name string, r io.Reader) (*Summary, error) {
	txns, issues, err := ingest.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("statement contains no usable transactions")
	}

	series := make([]analytics.MetricSeries, 0, len(analytics.Metrics()))
	for _, m := range analytics.Metrics() {
		series = append(series, s.engine.MetricSeries(txns, m, analytics.DashboardWindowMonths))
	}

	s.logger.DebugContext(ctx, "statement summarized",
		slog.Int("transactions", len(txns)),
		slog.Int("issues", len(issues)))

	return &Summary{
		Comparison: s.engine.Compare(txns),
		Series:     series,
		Issues:     issues,
	}, nil
}

package http

import (
	"context"
	"io"

	"finsight/internal/services"
	"finsight/internal/workflow"
)

// AnalysisServiceInterface is the consumer-side contract the handlers need
// from the analysis service.
type AnalysisServiceInterface interface {
	RunDashboard(ctx context.Context, name string, r io.Reader) (workflow.State, *workflow.Report)
	AnalyzeMetric(ctx context.Context, name string, r io.Reader, metricName string) (*services.MetricDetail, error)
	Summarize(ctx context.Context, name string, r io.Reader) (*services.Summary, error)
}

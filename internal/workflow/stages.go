package workflow

import (
	"context"
	"fmt"

	"finsight/internal/analytics"
	"finsight/internal/ingest"
	"finsight/internal/narrative"
)

// Stage IDs, in execution order.
const (
	StageIDIngest          = "ingest"
	StageIDCategorize      = "categorize"
	StageIDMetrics         = "metrics"
	StageIDTimeSeries      = "time_series"
	StageIDRootCause       = "root_cause"
	StageIDNarratives      = "narratives"
	StageIDRecommendations = "recommendations"
	StageIDDashboard       = "dashboard"
)

// IngestStage parses the statement source into transactions. A statement
// that yields no usable transactions fails the run.
type IngestStage struct{}

func (IngestStage) ID() string   { return StageIDIngest }
func (IngestStage) Name() string { return "Data ingestion" }

func (s IngestStage) Run(_ context.Context, state State) (State, error) {
	if state.Source.Reader == nil {
		return state, NewValidationError(s.ID(), "no statement source provided")
	}

	txns, issues, err := ingest.Parse(state.Source.Name, state.Source.Reader)
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	if len(txns) == 0 {
		return state, NewValidationError(s.ID(), "statement contains no usable transactions")
	}

	state.Transactions = txns
	state.Issues = issues
	return state, nil
}

// CategorizeStage fills in missing transaction categories.
type CategorizeStage struct {
	Categorizer ingest.Categorizer
}

func (CategorizeStage) ID() string   { return StageIDCategorize }
func (CategorizeStage) Name() string { return "Transaction categorization" }

func (s CategorizeStage) Run(ctx context.Context, state State) (State, error) {
	txns, err := s.Categorizer.Categorize(ctx, state.Transactions)
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.Transactions = txns
	return state, nil
}

// MetricsStage computes the month-over-month comparison tile for every
// metric, fanned out across the metric set.
type MetricsStage struct {
	Engine      *analytics.Engine
	Concurrency int
}

func (MetricsStage) ID() string   { return StageIDMetrics }
func (MetricsStage) Name() string { return "Metric computation" }

func (s MetricsStage) Run(ctx context.Context, state State) (State, error) {
	comparisons, err := forEachMetric(ctx, s.Concurrency,
		func(_ context.Context, m analytics.Metric) (analytics.MetricComparison, error) {
			return s.Engine.CompareMetric(state.Transactions, m), nil
		})
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.Comparisons = comparisons
	return state, nil
}

// SeriesStage generates the trailing monthly series for every metric.
type SeriesStage struct {
	Engine       *analytics.Engine
	WindowMonths int
	Concurrency  int
}

func (SeriesStage) ID() string   { return StageIDTimeSeries }
func (SeriesStage) Name() string { return "Time series generation" }

func (s SeriesStage) Run(ctx context.Context, state State) (State, error) {
	window := s.WindowMonths
	if window <= 0 {
		window = analytics.DefaultWindowMonths
	}

	series, err := forEachMetric(ctx, s.Concurrency,
		func(_ context.Context, m analytics.Metric) (analytics.MetricSeries, error) {
			return s.Engine.MetricSeries(state.Transactions, m, window), nil
		})
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.Series = series
	return state, nil
}

// RootCauseStage runs factor attribution for every metric concurrently and
// merges the results in canonical order.
type RootCauseStage struct {
	Engine      *analytics.Engine
	Concurrency int
}

func (RootCauseStage) ID() string   { return StageIDRootCause }
func (RootCauseStage) Name() string { return "Root cause analysis" }

func (s RootCauseStage) Run(ctx context.Context, state State) (State, error) {
	analyses, err := forEachMetric(ctx, s.Concurrency,
		func(_ context.Context, m analytics.Metric) (analytics.RootCauseAnalysis, error) {
			return s.Engine.AnalyzeRootCause(state.Transactions, m)
		})
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.RootCauses = analyses
	return state, nil
}

// NarrativeStage synthesizes cross-metric insights, then asks the
// storyteller for per-metric narratives and the overall business story.
type NarrativeStage struct {
	Storyteller narrative.Storyteller
}

func (NarrativeStage) ID() string   { return StageIDNarratives }
func (NarrativeStage) Name() string { return "Narrative generation" }

func (s NarrativeStage) Run(ctx context.Context, state State) (State, error) {
	byMetric := make(map[analytics.Metric]analytics.RootCauseAnalysis, len(state.RootCauses))
	for _, rc := range state.RootCauses {
		byMetric[rc.Metric] = rc
	}
	insights, actions := analytics.Synthesize(
		byMetric[analytics.MetricRevenue],
		byMetric[analytics.MetricExpenses],
		byMetric[analytics.MetricProfitability],
		byMetric[analytics.MetricCashFlow],
	)
	state.Insights = insights
	state.PriorityActions = actions

	set, story, err := s.Storyteller.Tell(ctx, state.RootCauses, insights, actions)
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.Narratives = set
	state.OverallStory = story
	return state, nil
}

// AdviceStage produces one prioritized recommendation per metric.
type AdviceStage struct {
	Advisor narrative.Advisor
}

func (AdviceStage) ID() string   { return StageIDRecommendations }
func (AdviceStage) Name() string { return "Recommendation generation" }

func (s AdviceStage) Run(ctx context.Context, state State) (State, error) {
	advice, err := s.Advisor.Advise(ctx, state.RootCauses, state.Narratives)
	if err != nil {
		return state, NewExecutionError(s.ID(), err)
	}
	state.Advice = advice
	return state, nil
}

// AssembleStage folds the accumulated state into the final dashboard.
type AssembleStage struct{}

func (AssembleStage) ID() string   { return StageIDDashboard }
func (AssembleStage) Name() string { return "Dashboard assembly" }

func (s AssembleStage) Run(_ context.Context, state State) (State, error) {
	if len(state.Comparisons) == 0 {
		return state, NewExecutionError(s.ID(), fmt.Errorf("no metric comparisons to assemble"))
	}
	state.Dashboard = buildDashboard(state)
	return state, nil
}

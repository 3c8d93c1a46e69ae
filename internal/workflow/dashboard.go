package workflow

import (
	"time"

	"finsight/internal/analytics"
	"finsight/internal/narrative"
)

// Summary is the dashboard header block.
type Summary struct {
	TotalTransactions int      `json:"total_transactions"`
	CurrentPeriod     string   `json:"current_period"`
	PreviousPeriod    string   `json:"previous_period"`
	ValidationIssues  []string `json:"validation_issues,omitempty"`
}

// Insights carries the cross-metric synthesis for the dashboard.
type Insights struct {
	OverallInsights      []string `json:"overall_insights"`
	PriorityActions      []string `json:"priority_actions"`
	OverallBusinessStory string   `json:"overall_business_story,omitempty"`
}

// Dashboard is the final assembled payload of a run. All per-metric maps
// are keyed by the metric key (cash_flow, revenue, expenses, income). A
// failed run produces a dashboard carrying only Error and GeneratedAt.
type Dashboard struct {
	Error       string                                 `json:"error,omitempty"`
	GeneratedAt time.Time                              `json:"generated_at"`
	Summary     Summary                                `json:"summary"`
	Tiles       map[string]analytics.MetricComparison  `json:"metric_tiles,omitempty"`
	TimeSeries  map[string]analytics.MetricSeries      `json:"time_series,omitempty"`
	RootCause   map[string]analytics.RootCauseAnalysis `json:"root_cause,omitempty"`
	Insights    Insights                               `json:"insights"`
	Narratives  narrative.Set                          `json:"narratives,omitempty"`
	Advice      narrative.Advice                       `json:"recommendations,omitempty"`
}

func buildDashboard(state State) Dashboard {
	d := Dashboard{
		GeneratedAt: time.Now().UTC(),
		Summary: Summary{
			TotalTransactions: len(state.Transactions),
			ValidationIssues:  state.Issues,
		},
		Tiles:      make(map[string]analytics.MetricComparison, len(state.Comparisons)),
		TimeSeries: make(map[string]analytics.MetricSeries, len(state.Series)),
		RootCause:  make(map[string]analytics.RootCauseAnalysis, len(state.RootCauses)),
		Insights: Insights{
			OverallInsights:      state.Insights,
			PriorityActions:      state.PriorityActions,
			OverallBusinessStory: state.OverallStory,
		},
		Narratives: state.Narratives,
		Advice:     state.Advice,
	}

	for _, c := range state.Comparisons {
		d.Tiles[c.Metric.Key()] = c
		d.Summary.CurrentPeriod = c.Period
		d.Summary.PreviousPeriod = c.PreviousPeriod
	}
	for _, s := range state.Series {
		d.TimeSeries[s.Metric.Key()] = s
	}
	for _, rc := range state.RootCauses {
		d.RootCause[rc.Metric.Key()] = rc
	}
	return d
}

func errorDashboard(message string) Dashboard {
	return Dashboard{
		Error:       message,
		GeneratedAt: time.Now().UTC(),
	}
}

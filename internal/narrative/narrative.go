// Package narrative holds the engine's boundary to the text-generation
// collaborators: the storyteller that turns root-cause analyses into prose
// and the advisor that produces tailored recommendations. The analytical
// results are complete without them; implementations only attach
// human-readable text keyed by metric.
package narrative

import (
	"context"

	"finsight/internal/analytics"
)

// Narrative is the human-readable story for one metric.
type Narrative struct {
	Narrative                 string   `json:"narrative"`
	KeyInsights               []string `json:"key_insights"`
	ActionableRecommendations []string `json:"actionable_recommendations"`
	BusinessImpact            string   `json:"business_impact"`
}

// Set maps analytics.Metric.Key() to the metric's narrative.
type Set map[string]Narrative

// Advice maps analytics.Metric.Key() to a single tailored recommendation.
type Advice map[string]string

// Storyteller generates per-metric narratives plus an overall business
// story from the four root-cause analyses and the cross-metric synthesis.
type Storyteller interface {
	Tell(ctx context.Context, analyses []analytics.RootCauseAnalysis, insights, actions []string) (Set, string, error)
}

// Advisor generates one prioritized recommendation per metric, given the
// analyses and the narratives already produced for them.
type Advisor interface {
	Advise(ctx context.Context, analyses []analytics.RootCauseAnalysis, narratives Set) (Advice, error)
}

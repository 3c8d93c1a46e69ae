package narrative

import (
	"context"
	"fmt"
	"strings"

	"finsight/internal/analytics"
)

// StaticStoryteller derives narratives directly from the engine's
// deterministic summaries. It is the offline default: no network, identical
// output for identical analyses.
type StaticStoryteller struct{}

// Tell builds a narrative per metric from its summary, factors and
// recommendations.
func (StaticStoryteller) Tell(_ context.Context, analyses []analytics.RootCauseAnalysis, insights, actions []string) (Set, string, error) {
	set := make(Set, len(analyses))
	for _, a := range analyses {
		set[a.Metric.Key()] = Narrative{
			Narrative:                 a.Summary,
			KeyInsights:               factorInsights(a),
			ActionableRecommendations: a.Recommendations,
			BusinessImpact:            impactLine(a),
		}
	}

	story := strings.Join(insights, " ")
	if story == "" {
		story = "Financial performance is steady across all headline metrics this period."
	}
	if len(actions) > 0 {
		story = fmt.Sprintf("%s Top priority: %s.", story, strings.TrimSuffix(actions[0], "."))
	}
	return set, story, nil
}

func factorInsights(a analytics.RootCauseAnalysis) []string {
	var insights []string
	for _, f := range a.TopFactors {
		insights = append(insights, fmt.Sprintf("%s (%s) moved %s by %.2f", f.Name, f.Type, a.Metric, f.Change))
		if len(insights) == 3 {
			break
		}
	}
	if len(insights) == 0 {
		insights = append(insights, fmt.Sprintf("No significant drivers behind the %s movement this period", a.Metric))
	}
	return insights
}

func impactLine(a analytics.RootCauseAnalysis) string {
	switch a.TrendDirection {
	case analytics.TrendIncreasing:
		return fmt.Sprintf("%s is up %.1f%% period over period.", a.Metric, analyticsAbs(a.ChangePercent))
	case analytics.TrendDecreasing:
		return fmt.Sprintf("%s is down %.1f%% period over period.", a.Metric, analyticsAbs(a.ChangePercent))
	default:
		return fmt.Sprintf("%s is flat period over period.", a.Metric)
	}
}

// StaticAdvisor surfaces the top canned recommendation for each metric.
type StaticAdvisor struct{}

// Advise returns the first engine recommendation per metric, falling back
// to a monitoring note when a metric has none.
func (StaticAdvisor) Advise(_ context.Context, analyses []analytics.RootCauseAnalysis, _ Set) (Advice, error) {
	advice := make(Advice, len(analyses))
	for _, a := range analyses {
		if len(a.Recommendations) > 0 {
			advice[a.Metric.Key()] = a.Recommendations[0]
			continue
		}
		advice[a.Metric.Key()] = fmt.Sprintf("Continue monitoring %s for emerging trends.", a.Metric)
	}
	return advice, nil
}

func analyticsAbs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package analytics

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// summarize produces the short deterministic sentence attached to a
// root-cause analysis: direction, magnitude and the top one or two ranked
// factors. Longer prose is the narrative collaborator's job, not the
// engine's.
func (e *Engine) summarize(m Metric, totalChange, pctChange float64, ranked []Factor) string {
	spec := metricSpecs[m]

	direction := "remained stable"
	switch {
	case totalChange > 0:
		direction = spec.upWord
	case totalChange < 0:
		direction = spec.downWord
	}

	magnitude := humanize.FormatFloat("#,###.##", abs(totalChange))

	if len(ranked) == 0 {
		return fmt.Sprintf("%s %s by %s (%.1f%%) with no significant contributing factors identified.",
			spec.display, direction, magnitude, abs(pctChange))
	}

	var b strings.Builder
	top := ranked[0]
	fmt.Fprintf(&b, "%s %s by %s (%.1f%%). ", spec.display, direction, magnitude, abs(pctChange))
	fmt.Fprintf(&b, "Primary driver: %s (%s) with %.1f%% impact.", top.Name, top.Type, top.ImpactScore)
	if len(ranked) > 1 {
		second := ranked[1]
		fmt.Fprintf(&b, " Secondary driver: %s (%.1f%% impact).", second.Name, second.ImpactScore)
	}
	return b.String()
}

// recommend draws from a fixed per-metric rule set keyed on whether the
// ranked factors are net-positive or net-negative contributors. The wording
// is intentionally canned; tailored advice comes from the advisor
// collaborator downstream.
func (e *Engine) recommend(m Metric, ranked []Factor) []string {
	switch m {
	case MetricRevenue:
		if len(ranked) == 0 {
			return []string{"Monitor revenue streams closely for emerging trends."}
		}
		var recs []string
		if anyFactor(ranked, func(f Factor) bool { return f.Change > 0 }) {
			recs = append(recs, "Focus on scaling successful revenue streams.")
		}
		if anyFactor(ranked, func(f Factor) bool { return f.Change < 0 }) {
			recs = append(recs, "Review underperforming revenue categories.")
		}
		return recs

	case MetricExpenses:
		if len(ranked) == 0 {
			return []string{"Review expense categories for optimization opportunities."}
		}
		var recs []string
		if anyFactor(ranked, func(f Factor) bool { return f.Change > 0 }) {
			recs = append(recs, "Review increasing expense categories.")
		}
		if anyFactor(ranked, func(f Factor) bool { return f.Change < 0 }) {
			recs = append(recs, "Maintain successful cost reduction strategies.")
		}
		return recs

	case MetricProfitability:
		if len(ranked) == 0 {
			return []string{"Focus on revenue growth and cost management balance."}
		}
		var recs []string
		if anyFactor(ranked, func(f Factor) bool { return strings.HasPrefix(f.Type, "Revenue") }) {
			recs = append(recs, "Focus on revenue growth strategies.")
		}
		if anyFactor(ranked, func(f Factor) bool { return strings.HasPrefix(f.Type, "Expense") }) {
			recs = append(recs, "Implement cost control measures.")
		}
		return recs

	case MetricCashFlow:
		if len(ranked) == 0 {
			return []string{"Implement cash flow monitoring systems."}
		}
		var recs []string
		if anyFactor(ranked, func(f Factor) bool { return strings.HasPrefix(f.Type, "Inflow") }) {
			recs = append(recs, "Optimize cash inflow processes.")
		}
		if anyFactor(ranked, func(f Factor) bool { return strings.HasPrefix(f.Type, "Outflow") }) {
			recs = append(recs, "Review cash outflow management.")
		}
		return recs
	}
	return nil
}

func anyFactor(factors []Factor, match func(Factor) bool) bool {
	for _, f := range factors {
		if match(f) {
			return true
		}
	}
	return false
}

package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// significantChangeThreshold is the percent-change magnitude above which a
// metric earns a priority action.
const significantChangeThreshold = 10.0

// Synthesize combines the four per-metric analyses into overall trend
// insights and priority actions. Insight order is fixed: broad momentum,
// broad decline, margin cross-check, working-capital divergence.
func Synthesize(revenue, expenses, profitability, cashFlow RootCauseAnalysis) (insights, actions []string) {
	trends := []struct {
		name      string
		direction TrendDirection
	}{
		{"Revenue", revenue.TrendDirection},
		{"Expenses", expenses.TrendDirection},
		{"Profitability", profitability.TrendDirection},
		{"Cash Flow", cashFlow.TrendDirection},
	}

	var increasing, decreasing []string
	for _, t := range trends {
		switch t.direction {
		case TrendIncreasing:
			increasing = append(increasing, t.name)
		case TrendDecreasing:
			decreasing = append(decreasing, t.name)
		}
	}

	if len(increasing) >= 3 {
		insights = append(insights, fmt.Sprintf(
			"Strong positive momentum across multiple metrics: %s", strings.Join(increasing, ", ")))
	}
	if len(decreasing) >= 3 {
		insights = append(insights, fmt.Sprintf(
			"Multiple metrics showing decline: %s - requires immediate attention", strings.Join(decreasing, ", ")))
	}

	if revenue.TrendDirection == TrendIncreasing && expenses.TrendDirection == TrendIncreasing {
		if profitability.TrendDirection == TrendIncreasing {
			insights = append(insights, "Revenue growth is outpacing expense growth, leading to improved profitability")
		} else {
			insights = append(insights, "Expense growth is outpacing revenue growth, impacting profitability")
		}
	}

	if cashFlow.TrendDirection != profitability.TrendDirection {
		insights = append(insights, "Cash flow and profitability trends are diverging - review working capital management")
	}

	actions = priorityActions(revenue, expenses, profitability, cashFlow)
	return insights, actions
}

// priorityActions flags metrics whose percent change exceeds the 10%
// threshold, largest magnitude first, and appends the two always-present
// generic actions.
func priorityActions(revenue, expenses, profitability, cashFlow RootCauseAnalysis) []string {
	changes := []struct {
		name      string
		magnitude float64
	}{
		{"Revenue", abs(revenue.ChangePercent)},
		{"Expenses", abs(expenses.ChangePercent)},
		{"Profitability", abs(profitability.ChangePercent)},
		{"Cash Flow", abs(cashFlow.ChangePercent)},
	}
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].magnitude > changes[j].magnitude
	})

	significant := make(map[string]bool)
	for _, c := range changes {
		if c.magnitude > significantChangeThreshold {
			significant[c.name] = true
		}
	}

	var actions []string
	if significant["Profitability"] {
		actions = append(actions, "Priority: Address profitability challenges immediately")
	}
	if significant["Cash Flow"] {
		actions = append(actions, "Priority: Implement cash flow management measures")
	}
	if significant["Expenses"] && expenses.TrendDirection == TrendIncreasing {
		actions = append(actions, "Priority: Control expense growth")
	}
	if significant["Revenue"] && revenue.TrendDirection == TrendDecreasing {
		actions = append(actions, "Priority: Focus on revenue generation")
	}

	actions = append(actions,
		"Implement regular financial monitoring and reporting",
		"Develop contingency plans for adverse scenarios",
	)
	return actions
}

package analytics

import (
	"sort"
)

// noiseFloor is the fixed retention threshold for factor extraction and the
// degenerate-total cutoff for ranking. It must stay exact for deterministic,
// reproducible output.
const noiseFloor = 0.01

// topFactorLimit caps the factors carried on a RootCauseAnalysis. Truncation
// happens only after full ranking.
const topFactorLimit = 5

// topDescriptionLimit bounds the by-description grouping to the largest
// current-period contributors.
const topDescriptionLimit = 10

// Grouping type labels attached to extracted factors.
const (
	factorTypeCategory    = "Category"
	factorTypeAccount     = "Account"
	factorTypeDescription = "Description (Top Contributor)"
)

// AnalyzeRootCause decomposes the metric's month-over-month change into
// ranked contributing factors. It is a pure function of the transaction set
// and metric: identical inputs yield identical ranked output.
func (e *Engine) AnalyzeRootCause(txns []Transaction, m Metric) (RootCauseAnalysis, error) {
	if !m.Valid() {
		return RootCauseAnalysis{}, &InvalidMetricError{Name: m.String()}
	}

	comparison := e.Compare(txns)
	current := monthSubset(txns, comparison.CurrentMonth.Period)
	previous := monthSubset(txns, comparison.PreviousMonth.Period)

	var raw []RawFactor
	switch m {
	case MetricRevenue:
		raw = e.revenueFactors(current, previous)
	case MetricExpenses:
		raw = e.expenseFactors(current, previous)
	case MetricProfitability:
		raw = e.profitabilityFactors(current, previous)
	case MetricCashFlow:
		raw = e.cashFlowFactors(current, previous)
	}

	spec := metricSpecs[m]
	totalChange := spec.change(comparison)
	ranked := rankFactors(raw, totalChange)

	analysis := RootCauseAnalysis{
		Metric:          m,
		CurrentValue:    spec.value(comparison.CurrentMonth),
		PreviousValue:   spec.value(comparison.PreviousMonth),
		TotalChange:     totalChange,
		ChangePercent:   spec.pctChange(comparison.CurrentMonth),
		TrendDirection:  trendOf(totalChange),
		TopFactors:      truncateFactors(ranked),
		Summary:         e.summarize(m, totalChange, spec.pctChange(comparison.CurrentMonth), ranked),
		Recommendations: e.recommend(m, ranked),
	}
	return analysis, nil
}

// AnalyzeRootCauseByName resolves the metric name first, rejecting anything
// outside the four supported metrics before any computation runs.
func (e *Engine) AnalyzeRootCauseByName(txns []Transaction, name string) (RootCauseAnalysis, error) {
	m, err := ParseMetric(name)
	if err != nil {
		return RootCauseAnalysis{}, err
	}
	return e.AnalyzeRootCause(txns, m)
}

// revenueFactors groups the revenue-side transactions of both periods by
// category, top descriptions and account.
func (e *Engine) revenueFactors(current, previous []Transaction) []RawFactor {
	cur := filterTxns(current, e.isRevenueTxn)
	prev := filterTxns(previous, e.isRevenueTxn)

	factors := extractFactors(cur, prev, keyCategory, factorTypeCategory, "")
	factors = append(factors, extractTopDescriptionFactors(cur, prev)...)
	factors = append(factors, extractFactors(cur, prev, keyAccount, factorTypeAccount, "")...)
	return factors
}

// expenseFactors mirrors revenueFactors over the expense-side complement.
func (e *Engine) expenseFactors(current, previous []Transaction) []RawFactor {
	cur := filterTxns(current, e.isExpenseTxn)
	prev := filterTxns(previous, e.isExpenseTxn)

	factors := extractFactors(cur, prev, keyCategory, factorTypeCategory, "")
	factors = append(factors, extractTopDescriptionFactors(cur, prev)...)
	factors = append(factors, extractFactors(cur, prev, keyAccount, factorTypeAccount, "")...)
	return factors
}

// profitabilityFactors decomposes profitability into its revenue and expense
// components by category. Expense-side factors have their change sign
// inverted, since growing expenses reduce profitability.
func (e *Engine) profitabilityFactors(current, previous []Transaction) []RawFactor {
	curRev := filterTxns(current, e.isRevenueTxn)
	prevRev := filterTxns(previous, e.isRevenueTxn)
	curExp := filterTxns(current, e.isExpenseTxn)
	prevExp := filterTxns(previous, e.isExpenseTxn)

	factors := extractFactors(curRev, prevRev, keyCategory, factorTypeCategory, "Revenue - ")

	expense := extractFactors(curExp, prevExp, keyCategory, factorTypeCategory, "Expense - ")
	for i := range expense {
		expense[i].Change = -expense[i].Change
	}
	return append(factors, expense...)
}

// cashFlowFactors splits the by-category groupings into inflow and outflow
// sides and adds a by-account grouping over all transactions, unsplit.
func (e *Engine) cashFlowFactors(current, previous []Transaction) []RawFactor {
	curRev := filterTxns(current, e.isRevenueTxn)
	prevRev := filterTxns(previous, e.isRevenueTxn)
	curExp := filterTxns(current, e.isExpenseTxn)
	prevExp := filterTxns(previous, e.isExpenseTxn)

	factors := extractFactors(curRev, prevRev, keyCategory, factorTypeCategory, "Inflow - ")
	factors = append(factors, extractFactors(curExp, prevExp, keyCategory, factorTypeCategory, "Outflow - ")...)
	factors = append(factors, extractFactors(current, previous, keyAccount, factorTypeAccount, "")...)
	return factors
}

func (e *Engine) isRevenueTxn(t Transaction) bool { return e.rules.IsRevenue(t.Category) }
func (e *Engine) isExpenseTxn(t Transaction) bool { return !e.rules.IsRevenue(t.Category) }

func filterTxns(txns []Transaction, keep func(Transaction) bool) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func keyCategory(t Transaction) string    { return t.Category }
func keyAccount(t Transaction) string     { return t.Account }
func keyDescription(t Transaction) string { return t.Description }

// groupSums accumulates signed amount totals per group value while
// preserving first-encounter order, which is what keeps factor extraction
// deterministic across runs.
type groupSums struct {
	order  []string
	totals map[string]float64
}

func sumBy(txns []Transaction, key func(Transaction) string) groupSums {
	g := groupSums{totals: make(map[string]float64)}
	for _, t := range txns {
		k := key(t)
		if _, ok := g.totals[k]; !ok {
			g.order = append(g.order, k)
		}
		g.totals[k] += t.Amount
	}
	return g
}

// extractFactors builds one candidate factor per group value seen in either
// period, retaining only those whose absolute change clears the noise
// floor. Group values are visited in current-period encounter order, then
// previous-only values in their own encounter order.
func extractFactors(current, previous []Transaction, key func(Transaction) string, typeName, prefix string) []RawFactor {
	cur := sumBy(current, key)
	prev := sumBy(previous, key)

	names := make([]string, 0, len(cur.order)+len(prev.order))
	names = append(names, cur.order...)
	for _, name := range prev.order {
		if _, ok := cur.totals[name]; !ok {
			names = append(names, name)
		}
	}

	var factors []RawFactor
	for _, name := range names {
		currentVal := cur.totals[name]
		previousVal := prev.totals[name]
		change := currentVal - previousVal
		if abs(change) <= noiseFloor {
			continue
		}
		factors = append(factors, RawFactor{
			Name:          name,
			Type:          prefix + typeName,
			CurrentValue:  currentVal,
			PreviousValue: previousVal,
			Change:        change,
			ChangePercent: PctChange(currentVal, previousVal),
		})
	}
	return factors
}

// extractTopDescriptionFactors limits the by-description grouping to the
// ten descriptions with the largest absolute current-period totals before
// applying the usual retention test.
func extractTopDescriptionFactors(current, previous []Transaction) []RawFactor {
	cur := sumBy(current, keyDescription)
	prev := sumBy(previous, keyDescription)

	top := append([]string(nil), cur.order...)
	sort.SliceStable(top, func(i, j int) bool {
		return abs(cur.totals[top[i]]) > abs(cur.totals[top[j]])
	})
	if len(top) > topDescriptionLimit {
		top = top[:topDescriptionLimit]
	}

	var factors []RawFactor
	for _, name := range top {
		currentVal := cur.totals[name]
		previousVal := prev.totals[name]
		change := currentVal - previousVal
		if abs(change) <= noiseFloor {
			continue
		}
		factors = append(factors, RawFactor{
			Name:          name,
			Type:          factorTypeDescription,
			CurrentValue:  currentVal,
			PreviousValue: previousVal,
			Change:        change,
			ChangePercent: PctChange(currentVal, previousVal),
		})
	}
	return factors
}

// rankFactors scores candidates against the metric's total change and sorts
// them descending by impact. The sort is stable so ties keep encounter
// order, and ranks are assigned 1..N in sorted order. A degenerate total
// below the noise floor returns the factors unscored in original order.
func rankFactors(raw []RawFactor, totalChange float64) []Factor {
	ranked := make([]Factor, len(raw))
	for i, rf := range raw {
		ranked[i] = Factor{RawFactor: rf}
	}
	if abs(totalChange) < noiseFloor {
		return ranked
	}

	for i := range ranked {
		// Gross contribution, not a bounded share: offsetting factors can
		// each score above 100.
		ranked[i].ImpactScore = abs(ranked[i].Change/totalChange) * 100
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImpactScore > ranked[j].ImpactScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

func truncateFactors(ranked []Factor) []Factor {
	if len(ranked) > topFactorLimit {
		return ranked[:topFactorLimit]
	}
	return ranked
}

// Comprehensive runs root-cause analysis for all four metrics and
// synthesizes the cross-metric insights and priority actions.
func (e *Engine) Comprehensive(txns []Transaction) ComprehensiveAnalysis {
	e.logger.Debug("running comprehensive root-cause analysis",
		"transactions", len(txns),
	)

	// Metric values are trusted here, so the per-metric errors cannot fire.
	revenue, _ := e.AnalyzeRootCause(txns, MetricRevenue)
	expenses, _ := e.AnalyzeRootCause(txns, MetricExpenses)
	profitability, _ := e.AnalyzeRootCause(txns, MetricProfitability)
	cashFlow, _ := e.AnalyzeRootCause(txns, MetricCashFlow)

	insights, actions := Synthesize(revenue, expenses, profitability, cashFlow)
	return ComprehensiveAnalysis{
		Revenue:         revenue,
		Expenses:        expenses,
		Profitability:   profitability,
		CashFlow:        cashFlow,
		OverallInsights: insights,
		PriorityActions: actions,
	}
}

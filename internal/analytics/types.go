package analytics

import (
	"time"
)

// Transaction is a single dated ledger entry. Amounts are signed: inflows
// positive, outflows negative. Transactions are immutable once ingested.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Account     string    `json:"account"`
}

// YearMonth returns the calendar month the transaction belongs to, in
// YYYY-MM form. Month keys sort chronologically as plain strings.
func (t Transaction) YearMonth() string {
	return t.Date.Format("2006-01")
}

// PeriodMetrics holds the aggregated metrics for one calendar month.
// Expenses and capital expenditure are reported as positive magnitudes so
// they compare directly against revenue.
type PeriodMetrics struct {
	Period             string  `json:"period"`
	Revenue            float64 `json:"revenue"`
	Expenses           float64 `json:"expenses"`
	Profitability      float64 `json:"profitability"`
	CashFlow           float64 `json:"cash_flow"`
	OperatingCashFlow  float64 `json:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure"`
	FreeCashFlow       float64 `json:"free_cash_flow"`

	RevenuePctChange       float64 `json:"revenue_pct_change"`
	ExpensesPctChange      float64 `json:"expenses_pct_change"`
	ProfitabilityPctChange float64 `json:"profitability_pct_change"`
	CashFlowPctChange      float64 `json:"cash_flow_pct_change"`
	FreeCashFlowPctChange  float64 `json:"free_cash_flow_pct_change"`
}

// Comparison pairs the two most recent months present in the data with the
// absolute deltas for each headline metric. It is derived per request and
// never stored.
type Comparison struct {
	CurrentMonth  PeriodMetrics `json:"current_month"`
	PreviousMonth PeriodMetrics `json:"previous_month"`

	RevenueChange       float64 `json:"revenue_change"`
	ExpensesChange      float64 `json:"expenses_change"`
	ProfitabilityChange float64 `json:"profitability_change"`
	CashFlowChange      float64 `json:"cash_flow_change"`
	FreeCashFlowChange  float64 `json:"free_cash_flow_change"`
}

// MetricComparison is the single-metric projection of a Comparison, used by
// the per-metric workflow tasks and the dashboard tiles.
type MetricComparison struct {
	Metric         Metric  `json:"metric"`
	Period         string  `json:"period"`
	PreviousPeriod string  `json:"previous_period"`
	Current        float64 `json:"current"`
	Previous       float64 `json:"previous"`
	Change         float64 `json:"change"`
	ChangePercent  float64 `json:"change_percent"`
}

// TimeSeries holds aligned monthly sequences for every metric. All slices
// share identical length and index alignment; callers rely on that.
type TimeSeries struct {
	Dates         []string  `json:"dates"`
	Revenue       []float64 `json:"revenue"`
	Expenses      []float64 `json:"expenses"`
	Profitability []float64 `json:"profitability"`
	CashFlow      []float64 `json:"cash_flow"`
	FreeCashFlow  []float64 `json:"free_cash_flow"`

	RevenuePctChanges       []float64 `json:"revenue_pct_changes"`
	ExpensesPctChanges      []float64 `json:"expenses_pct_changes"`
	ProfitabilityPctChanges []float64 `json:"profitability_pct_changes"`
	CashFlowPctChanges      []float64 `json:"cash_flow_pct_changes"`
}

// Len returns the number of months in the series.
func (ts TimeSeries) Len() int {
	return len(ts.Dates)
}

// MetricSeries is the single-metric projection of a TimeSeries.
type MetricSeries struct {
	Metric     Metric    `json:"metric"`
	Dates      []string  `json:"dates"`
	Values     []float64 `json:"values"`
	PctChanges []float64 `json:"percentage_changes"`
}

// RawFactor is a candidate contributing factor produced by factor
// extraction. It carries no impact score or rank; those only exist on a
// Factor after ranking.
type RawFactor struct {
	Name          string  `json:"factor_name"`
	Type          string  `json:"factor_type"`
	CurrentValue  float64 `json:"current_value"`
	PreviousValue float64 `json:"previous_value"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// Factor is a ranked contributing factor. The impact score is the factor's
// change as a percentage of the metric's own total change, so scores are
// only comparable within a single analysis and may exceed 100 when factors
// partially offset each other.
type Factor struct {
	RawFactor
	ImpactScore float64 `json:"impact_score"`
	Rank        int     `json:"rank"`
}

// TrendDirection classifies the sign of a period-over-period delta.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// RootCauseAnalysis explains why one metric moved between the two most
// recent months, as a ranked factor breakdown plus a deterministic summary.
type RootCauseAnalysis struct {
	Metric          Metric         `json:"metric"`
	CurrentValue    float64        `json:"current_period_value"`
	PreviousValue   float64        `json:"previous_period_value"`
	TotalChange     float64        `json:"total_change"`
	ChangePercent   float64        `json:"change_percent"`
	TrendDirection  TrendDirection `json:"trend_direction"`
	TopFactors      []Factor       `json:"top_contributing_factors"`
	Summary         string         `json:"analysis_summary"`
	Recommendations []string       `json:"recommendations"`
}

// ComprehensiveAnalysis combines the four per-metric root-cause results
// with cross-metric insights and priority actions.
type ComprehensiveAnalysis struct {
	Revenue         RootCauseAnalysis `json:"revenue_analysis"`
	Expenses        RootCauseAnalysis `json:"expenses_analysis"`
	Profitability   RootCauseAnalysis `json:"profitability_analysis"`
	CashFlow        RootCauseAnalysis `json:"cash_flow_analysis"`
	OverallInsights []string          `json:"overall_insights"`
	PriorityActions []string          `json:"priority_actions"`
}

// Analyses returns the four analyses in canonical merge order (cash flow,
// revenue, expenses, profitability).
func (c ComprehensiveAnalysis) Analyses() []RootCauseAnalysis {
	return []RootCauseAnalysis{c.CashFlow, c.Revenue, c.Expenses, c.Profitability}
}

func trendOf(change float64) TrendDirection {
	switch {
	case change > 0:
		return TrendIncreasing
	case change < 0:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

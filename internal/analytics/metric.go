package analytics

import (
	"fmt"
	"strings"
)

// Metric identifies one of the four headline metrics the engine analyzes.
// The iota order is the canonical merge order: results produced by the
// per-metric workflow tasks are always assembled as cash flow, revenue,
// expenses, profitability regardless of task completion order.
type Metric int

const (
	MetricCashFlow Metric = iota
	MetricRevenue
	MetricExpenses
	MetricProfitability
)

// Metrics returns all metrics in canonical merge order.
func Metrics() []Metric {
	return []Metric{MetricCashFlow, MetricRevenue, MetricExpenses, MetricProfitability}
}

// InvalidMetricError is returned when a requested metric name is not one of
// the four supported metrics. It is rejected synchronously and never retried.
type InvalidMetricError struct {
	Name string
}

func (e *InvalidMetricError) Error() string {
	return fmt.Sprintf("unknown metric %q: must be one of Revenue, Expenses, Profitability, Cash Flow", e.Name)
}

// ParseMetric resolves a metric name case-insensitively. Both "Cash Flow"
// and "cash_flow" are accepted for the cash flow metric.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "revenue":
		return MetricRevenue, nil
	case "expenses":
		return MetricExpenses, nil
	case "profitability":
		return MetricProfitability, nil
	case "cash flow", "cash_flow":
		return MetricCashFlow, nil
	default:
		return 0, &InvalidMetricError{Name: name}
	}
}

// String returns the display name used in summaries and API payloads.
func (m Metric) String() string {
	if spec, ok := metricSpecs[m]; ok {
		return spec.display
	}
	return "unknown"
}

// Key returns the snake_case identifier used for dashboard sections and
// narrative lookups.
func (m Metric) Key() string {
	if spec, ok := metricSpecs[m]; ok {
		return spec.key
	}
	return "unknown"
}

// Valid reports whether m is one of the four supported metrics.
func (m Metric) Valid() bool {
	_, ok := metricSpecs[m]
	return ok
}

// metricSpec is the dispatch table entry for one metric: accessors into the
// aggregate structures plus the wording used by summary generation. Metric
// dispatch goes through this table rather than string comparison.
type metricSpec struct {
	display string
	key     string

	// value/change accessors
	value     func(PeriodMetrics) float64
	pctChange func(PeriodMetrics) float64
	change    func(Comparison) float64
	series    func(TimeSeries) []float64
	seriesPct func(TimeSeries) []float64

	// summary wording: {upWord, downWord} e.g. increased/decreased for
	// revenue and expenses, improved/declined for profitability and cash flow
	upWord   string
	downWord string
}

var metricSpecs = map[Metric]metricSpec{
	MetricRevenue: {
		display:   "Revenue",
		key:       "revenue",
		value:     func(p PeriodMetrics) float64 { return p.Revenue },
		pctChange: func(p PeriodMetrics) float64 { return p.RevenuePctChange },
		change:    func(c Comparison) float64 { return c.RevenueChange },
		series:    func(ts TimeSeries) []float64 { return ts.Revenue },
		seriesPct: func(ts TimeSeries) []float64 { return ts.RevenuePctChanges },
		upWord:    "increased",
		downWord:  "decreased",
	},
	MetricExpenses: {
		display:   "Expenses",
		key:       "expenses",
		value:     func(p PeriodMetrics) float64 { return p.Expenses },
		pctChange: func(p PeriodMetrics) float64 { return p.ExpensesPctChange },
		change:    func(c Comparison) float64 { return c.ExpensesChange },
		series:    func(ts TimeSeries) []float64 { return ts.Expenses },
		seriesPct: func(ts TimeSeries) []float64 { return ts.ExpensesPctChanges },
		upWord:    "increased",
		downWord:  "decreased",
	},
	MetricProfitability: {
		display:   "Profitability",
		key:       "income",
		value:     func(p PeriodMetrics) float64 { return p.Profitability },
		pctChange: func(p PeriodMetrics) float64 { return p.ProfitabilityPctChange },
		change:    func(c Comparison) float64 { return c.ProfitabilityChange },
		series:    func(ts TimeSeries) []float64 { return ts.Profitability },
		seriesPct: func(ts TimeSeries) []float64 { return ts.ProfitabilityPctChanges },
		upWord:    "improved",
		downWord:  "declined",
	},
	MetricCashFlow: {
		display:   "Cash Flow",
		key:       "cash_flow",
		value:     func(p PeriodMetrics) float64 { return p.CashFlow },
		pctChange: func(p PeriodMetrics) float64 { return p.CashFlowPctChange },
		change:    func(c Comparison) float64 { return c.CashFlowChange },
		series:    func(ts TimeSeries) []float64 { return ts.CashFlow },
		seriesPct: func(ts TimeSeries) []float64 { return ts.CashFlowPctChanges },
		upWord:    "improved",
		downWord:  "declined",
	},
}

// MarshalText renders the metric display name in JSON payloads.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, &InvalidMetricError{Name: fmt.Sprintf("Metric(%d)", int(m))}
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a metric from its display or snake_case name.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package analytics

// Window sizes for time-series generation. Detail views use the trailing
// twelve months, dashboard tiles the trailing six.
const (
	DefaultWindowMonths   = 12
	DashboardWindowMonths = 6
)

// GenerateTimeSeries produces aligned monthly sequences for every metric
// over the trailing monthsBack present months, chronological order. Percent
// changes for each month reference the immediately preceding present month,
// mirroring the comparison engine's gap-tolerant policy; the first month in
// the window has zero percent changes. All sequences share identical length
// and index alignment.
func (e *Engine) GenerateTimeSeries(txns []Transaction, monthsBack int) TimeSeries {
	if monthsBack <= 0 {
		monthsBack = DefaultWindowMonths
	}

	months := monthsPresent(txns)
	if len(months) > monthsBack {
		months = months[len(months)-monthsBack:]
	}

	n := len(months)
	ts := TimeSeries{
		Dates:                   make([]string, 0, n),
		Revenue:                 make([]float64, 0, n),
		Expenses:                make([]float64, 0, n),
		Profitability:           make([]float64, 0, n),
		CashFlow:                make([]float64, 0, n),
		FreeCashFlow:            make([]float64, 0, n),
		RevenuePctChanges:       make([]float64, 0, n),
		ExpensesPctChanges:      make([]float64, 0, n),
		ProfitabilityPctChanges: make([]float64, 0, n),
		CashFlowPctChanges:      make([]float64, 0, n),
	}

	for i, month := range months {
		previous := ""
		if i > 0 {
			previous = months[i-1]
		}
		pm := e.MonthlyMetrics(txns, month, previous)

		ts.Dates = append(ts.Dates, month)
		ts.Revenue = append(ts.Revenue, pm.Revenue)
		ts.Expenses = append(ts.Expenses, pm.Expenses)
		ts.Profitability = append(ts.Profitability, pm.Profitability)
		ts.CashFlow = append(ts.CashFlow, pm.CashFlow)
		ts.FreeCashFlow = append(ts.FreeCashFlow, pm.FreeCashFlow)
		ts.RevenuePctChanges = append(ts.RevenuePctChanges, pm.RevenuePctChange)
		ts.ExpensesPctChanges = append(ts.ExpensesPctChanges, pm.ExpensesPctChange)
		ts.ProfitabilityPctChanges = append(ts.ProfitabilityPctChanges, pm.ProfitabilityPctChange)
		ts.CashFlowPctChanges = append(ts.CashFlowPctChanges, pm.CashFlowPctChange)
	}

	return ts
}

// MetricSeries projects a time series onto a single metric.
func (e *Engine) MetricSeries(txns []Transaction, m Metric, monthsBack int) MetricSeries {
	ts := e.GenerateTimeSeries(txns, monthsBack)
	spec := metricSpecs[m]
	return MetricSeries{
		Metric:     m,
		Dates:      ts.Dates,
		Values:     spec.series(ts),
		PctChanges: spec.seriesPct(ts),
	}
}

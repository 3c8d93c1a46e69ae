package analytics

// Compare selects the two most recent distinct months present in the data
// and computes the absolute deltas between them. With fewer than two months
// the previous side is a zero PeriodMetrics with period "unknown", so deltas
// equal the current values. Only present months are considered; a sparse
// data set may silently compare months more than one calendar month apart.
func (e *Engine) Compare(txns []Transaction) Comparison {
	months := monthsPresent(txns)

	var current, previous PeriodMetrics
	switch {
	case len(months) == 0:
		current = zeroMetrics()
		previous = zeroMetrics()
	case len(months) == 1:
		current = e.MonthlyMetrics(txns, months[0], "")
		previous = zeroMetrics()
	default:
		currentMonth := months[len(months)-1]
		previousMonth := months[len(months)-2]
		current = e.MonthlyMetrics(txns, currentMonth, previousMonth)
		previous = e.MonthlyMetrics(txns, previousMonth, "")
	}

	return Comparison{
		CurrentMonth:        current,
		PreviousMonth:       previous,
		RevenueChange:       current.Revenue - previous.Revenue,
		ExpensesChange:      current.Expenses - previous.Expenses,
		ProfitabilityChange: current.Profitability - previous.Profitability,
		CashFlowChange:      current.CashFlow - previous.CashFlow,
		FreeCashFlowChange:  current.FreeCashFlow - previous.FreeCashFlow,
	}
}

// CompareMetric projects a full comparison onto a single metric, yielding
// the tile shown on the dashboard.
func (e *Engine) CompareMetric(txns []Transaction, m Metric) MetricComparison {
	c := e.Compare(txns)
	spec := metricSpecs[m]
	return MetricComparison{
		Metric:         m,
		Period:         c.CurrentMonth.Period,
		PreviousPeriod: c.PreviousMonth.Period,
		Current:        spec.value(c.CurrentMonth),
		Previous:       spec.value(c.PreviousMonth),
		Change:         spec.change(c),
		ChangePercent:  spec.pctChange(c.CurrentMonth),
	}
}

// Package analytics implements the financial analytics engine: period
// aggregation, month-over-month comparison, time-series generation and
// root-cause factor attribution over an in-memory transaction set.
//
// The engine is stateless per invocation. Every method is a pure function
// of the transaction set it receives, so identical inputs always produce
// byte-identical results, including factor ranking order.
//
// # Architecture
//
//   - types.go: core data structures (Transaction, PeriodMetrics, Factor, ...)
//   - metric.go: the Metric enum and its dispatch table
//   - rules.go: revenue and capital-expenditure category allow-lists
//   - aggregate.go: per-month aggregation and the percent-change policy
//   - compare.go: two-most-recent-months comparison
//   - timeseries.go: aligned trailing-window series generation
//   - rootcause.go: factor extraction, ranking and truncation
//   - summary.go: deterministic summary sentences and canned recommendations
//   - synthesis.go: cross-metric insights and priority actions
//
// # Usage
//
//	engine := analytics.NewEngine(analytics.DefaultCategoryRules(), logger)
//	comparison := engine.Compare(txns)
//	analysis, err := engine.AnalyzeRootCauseByName(txns, "Cash Flow")
package analytics

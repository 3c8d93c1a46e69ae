package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"finsight/internal/analytics"
)

// UncategorizedCategory is assigned when no rule matches a description.
const UncategorizedCategory = "Uncategorized"

// Categorizer assigns categories to transactions that arrive without one.
// Transactions that already carry a category pass through untouched.
type Categorizer interface {
	Categorize(ctx context.Context, txns []analytics.Transaction) ([]analytics.Transaction, error)
}

// KeywordRule maps description keywords to a category.
type KeywordRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// RuleCategorizer assigns categories by case-insensitive keyword match on
// the description. Rules are evaluated in order; first match wins.
type RuleCategorizer struct {
	rules []KeywordRule
}

// NewRuleCategorizer creates a categorizer from the given rules, or the
// defaults when none are supplied.
func NewRuleCategorizer(rules []KeywordRule) *RuleCategorizer {
	if len(rules) == 0 {
		rules = defaultKeywordRules()
	}
	return &RuleCategorizer{rules: rules}
}

// RulesFile is the YAML category configuration: keyword rules for the
// categorizer and optional overrides for the engine's revenue and capex
// allow-lists.
type RulesFile struct {
	RevenueCategories []string      `yaml:"revenue_categories"`
	CapexCategories   []string      `yaml:"capex_categories"`
	Keywords          []KeywordRule `yaml:"keywords"`
}

// LoadRulesFile reads category rules from a YAML file.
func LoadRulesFile(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category rules: %w", err)
	}
	var f RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category rules: %w", err)
	}
	return &f, nil
}

// EngineRules converts the allow-list overrides into engine category rules.
// Empty lists keep the defaults.
func (f *RulesFile) EngineRules() analytics.CategoryRules {
	return analytics.NewCategoryRules(f.RevenueCategories, f.CapexCategories)
}

// Categorize fills in missing categories. It never fails; the error return
// satisfies the Categorizer contract for model-backed implementations.
func (c *RuleCategorizer) Categorize(_ context.Context, txns []analytics.Transaction) ([]analytics.Transaction, error) {
	out := make([]analytics.Transaction, len(txns))
	copy(out, txns)
	for i := range out {
		if out[i].Category != "" {
			continue
		}
		out[i].Category = c.match(out[i].Description)
	}
	return out, nil
}

func (c *RuleCategorizer) match(description string) string {
	desc := strings.ToLower(description)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				return rule.Category
			}
		}
	}
	return UncategorizedCategory
}

func defaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Category: "Revenue", Keywords: []string{"invoice", "payment received", "sales"}},
		{Category: "Interest Income", Keywords: []string{"interest"}},
		{Category: "GST Collected", Keywords: []string{"gst"}},
		{Category: "Rent", Keywords: []string{"rent", "lease"}},
		{Category: "Payroll", Keywords: []string{"salary", "wages", "payroll"}},
		{Category: "Utilities", Keywords: []string{"electric", "water", "gas bill", "internet", "phone"}},
		{Category: "Office Supplies", Keywords: []string{"stationery", "office supplies"}},
		{Category: "Plant & Equipment", Keywords: []string{"equipment", "machinery"}},
		{Category: "Motor Vehicle", Keywords: []string{"vehicle", "car purchase"}},
		{Category: "Software", Keywords: []string{"subscription", "saas", "software"}},
		{Category: "Bank Fees", Keywords: []string{"fee", "charge"}},
	}
}

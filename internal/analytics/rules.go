package analytics

import "strings"

// Default category allow-lists. Matching is case-insensitive on the full
// category name.
var (
	defaultRevenueCategories = []string{
		"revenue/sales",
		"interest income",
		"other income",
		"gst collected",
	}
	defaultCapexCategories = []string{
		"plant & equipment",
		"motor vehicle",
		"office furniture and equipment",
	}
)

// CategoryRules decides which transaction categories count as revenue and
// which count as capital assets. Everything outside the revenue list is an
// expense; capital expenditure additionally requires outflow direction.
type CategoryRules struct {
	revenue map[string]struct{}
	capex   map[string]struct{}
}

// NewCategoryRules builds rules from explicit category lists. Empty lists
// fall back to the defaults.
func NewCategoryRules(revenue, capex []string) CategoryRules {
	if len(revenue) == 0 {
		revenue = defaultRevenueCategories
	}
	if len(capex) == 0 {
		capex = defaultCapexCategories
	}
	return CategoryRules{
		revenue: toSet(revenue),
		capex:   toSet(capex),
	}
}

// DefaultCategoryRules returns the built-in allow-lists.
func DefaultCategoryRules() CategoryRules {
	return NewCategoryRules(nil, nil)
}

// IsRevenue reports whether the category is on the revenue allow-list.
func (r CategoryRules) IsRevenue(category string) bool {
	_, ok := r.revenue[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

// IsCapex reports whether the transaction is a capital expenditure: a
// capital-asset category combined with outflow direction.
func (r CategoryRules) IsCapex(t Transaction) bool {
	if t.Amount >= 0 {
		return false
	}
	_, ok := r.capex[strings.ToLower(strings.TrimSpace(t.Category))]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

// Package ingest turns raw bank or accounting statements into normalized
// transactions. It accepts CSV and XLSX inputs with loosely standardized
// headers, validates every row, and reports per-row problems as issues
// instead of aborting the whole file.
package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"finsight/internal/analytics"
)

// supported statement date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01-02-06",
	"2 Jan 2006",
	"Jan 2, 2006",
}

var validate = validator.New()

// record is one normalized statement row before conversion to a
// transaction. Either Amount is set, or Debit/Credit are folded into it.
type record struct {
	Date        string `validate:"required"`
	Description string `validate:"required"`
	Amount      string
	Debit       string
	Credit      string
	Category    string
	Account     string
}

// columns maps normalized header names to their column index.
type columns map[string]int

// headerSynonyms folds the header spellings seen in real bank exports onto
// canonical column names.
var headerSynonyms = map[string]string{
	"date":             "date",
	"transaction date": "date",
	"posting date":     "date",
	"description":      "description",
	"details":          "description",
	"narrative":        "description",
	"memo":             "description",
	"amount":           "amount",
	"value":            "amount",
	"debit":            "debit",
	"withdrawal":       "debit",
	"credit":           "credit",
	"deposit":          "credit",
	"category":         "category",
	"type":             "category",
	"account":          "account",
	"account name":     "account",
}

// Parse reads a statement stream and returns normalized transactions plus
// per-row validation issues. The file extension selects the format; CSV is
// the fallback for unknown extensions.
func Parse(name string, r io.Reader) ([]analytics.Transaction, []string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return ParseXLSX(r)
	default:
		return ParseCSV(r)
	}
}

// mapHeader resolves a raw header row to column positions. Date,
// description, and at least one money column are mandatory.
func mapHeader(header []string) (columns, error) {
	cols := make(columns)
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if canonical, ok := headerSynonyms[key]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	if _, ok := cols["date"]; !ok {
		return nil, fmt.Errorf("statement header has no date column")
	}
	if _, ok := cols["description"]; !ok {
		return nil, fmt.Errorf("statement header has no description column")
	}
	_, hasAmount := cols["amount"]
	_, hasDebit := cols["debit"]
	_, hasCredit := cols["credit"]
	if !hasAmount && !hasDebit && !hasCredit {
		return nil, fmt.Errorf("statement header has no amount, debit, or credit column")
	}
	return cols, nil
}

func (c columns) cell(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (c columns) record(row []string) record {
	return record{
		Date:        c.cell(row, "date"),
		Description: c.cell(row, "description"),
		Amount:      c.cell(row, "amount"),
		Debit:       c.cell(row, "debit"),
		Credit:      c.cell(row, "credit"),
		Category:    c.cell(row, "category"),
		Account:     c.cell(row, "account"),
	}
}

// toTransaction validates and converts one record. Credits are positive
// inflows, debits negative outflows; a signed amount column wins when both
// forms are present.
func toTransaction(rec record) (analytics.Transaction, error) {
	if err := validate.Struct(rec); err != nil {
		return analytics.Transaction{}, fmt.Errorf("invalid record: %w", err)
	}

	date, err := parseDate(rec.Date)
	if err != nil {
		return analytics.Transaction{}, err
	}

	amount, err := parseAmount(rec)
	if err != nil {
		return analytics.Transaction{}, err
	}

	return analytics.Transaction{
		Date:        date,
		Description: rec.Description,
		Amount:      amount,
		Category:    rec.Category,
		Account:     rec.Account,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(rec record) (float64, error) {
	if rec.Amount != "" {
		d, err := parseMoney(rec.Amount)
		if err != nil {
			return 0, fmt.Errorf("parsing amount %q: %w", rec.Amount, err)
		}
		return d.InexactFloat64(), nil
	}

	total := decimal.Zero
	if rec.Credit != "" {
		d, err := parseMoney(rec.Credit)
		if err != nil {
			return 0, fmt.Errorf("parsing credit %q: %w", rec.Credit, err)
		}
		total = total.Add(d.Abs())
	}
	if rec.Debit != "" {
		d, err := parseMoney(rec.Debit)
		if err != nil {
			return 0, fmt.Errorf("parsing debit %q: %w", rec.Debit, err)
		}
		total = total.Sub(d.Abs())
	}
	if rec.Credit == "" && rec.Debit == "" {
		return 0, fmt.Errorf("record has no amount, debit, or credit value")
	}
	return total.InexactFloat64(), nil
}

// parseMoney accepts currency symbols, thousands separators, and
// accounting-style parentheses for negatives.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// collect converts rows into transactions, recording per-row failures as
// issues. Blank rows are ignored.
func collect(cols columns, rows [][]string, firstRowNumber int) ([]analytics.Transaction, []string) {
	var (
		txns   []analytics.Transaction
		issues []string
	)
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		txn, err := toTransaction(cols.record(row))
		if err != nil {
			issues = append(issues, fmt.Sprintf("row %d: %v", firstRowNumber+i, err))
			continue
		}
		txns = append(txns, txn)
	}
	return txns, issues
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

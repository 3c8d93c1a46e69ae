package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"finsight/internal/analytics"
)

// ParseXLSX reads an XLSX statement. The first sheet whose header maps to
// the expected columns is used; sheets that do not look like statements
// are skipped.
func ParseXLSX(r io.Reader) ([]analytics.Transaction, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening statement workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		headerIdx := findHeaderRow(rows)
		if headerIdx == -1 {
			continue
		}
		cols, err := mapHeader(rows[headerIdx])
		if err != nil {
			continue
		}

		txns, issues := collect(cols, rows[headerIdx+1:], headerIdx+2)
		return txns, issues, nil
	}

	return nil, nil, fmt.Errorf("no sheet with statement columns found in workbook")
}

// findHeaderRow scans the first few rows for one containing a date column
// and a money column. Bank exports often carry title rows above the header.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		text := strings.ToLower(strings.Join(rows[i], " "))
		if strings.Contains(text, "date") &&
			(strings.Contains(text, "amount") || strings.Contains(text, "debit") || strings.Contains(text, "credit")) {
			return i
		}
	}
	return -1
}

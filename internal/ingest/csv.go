package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"finsight/internal/analytics"
)

// ParseCSV reads a CSV statement. The first non-blank row is the header;
// every later row becomes a transaction or an issue.
func ParseCSV(r io.Reader) ([]analytics.Transaction, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading statement CSV: %w", err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil, nil, fmt.Errorf("statement is empty")
	}

	cols, err := mapHeader(rows[headerIdx])
	if err != nil {
		return nil, nil, err
	}

	txns, issues := collect(cols, rows[headerIdx+1:], headerIdx+2)
	return txns, issues, nil
}

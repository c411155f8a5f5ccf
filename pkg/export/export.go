// Package export renders tabular session data for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is an ordered set of rows with a header, ready for serialization.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV serializes the table to w as RFC 4180 CSV, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

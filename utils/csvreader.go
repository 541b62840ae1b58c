package utils

import (
	"encoding/csv"
	"io"
)

// ParseCSV reads a whole kiosk export into memory. Field-count checking is
// left to the caller so row errors can name the offending row.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

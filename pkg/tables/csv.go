// Package tables reads the B200 landing reference tables from CSV sources and
// memoizes loaded table sets.
//
// The dataset built into the binary is illustrative sample data with the
// shape of the B200 landing charts. Its values are not taken from the Pilot's
// Operating Handbook and must not be used for flight planning; point
// TablesConfig.Dir at CSV files transcribed from the POH for real figures.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a CSV source, discards the first skip records and returns the
// next record as the header and every later record as a data row. Blank
// lines are ignored.
func ReadCSV(r io.Reader, skip int) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	n := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		if isBlank(record) {
			continue
		}
		n++
		switch {
		case n <= skip:
			continue
		case header == nil:
			header = record
		default:
			rows = append(rows, record)
		}
	}

	if header == nil {
		return nil, nil, errors.New("csv source has no header row")
	}
	return header, rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

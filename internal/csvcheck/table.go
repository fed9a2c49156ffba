package csvcheck

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table summarizes the shape of one CSV file.
type Table struct {
	Path    string
	Columns []string
	Rows    int
}

// Has reports whether the table carries the named column.
func (t Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Read loads the header and counts the data rows of the CSV at path.
//
// The extraction macros terminate every record with a trailing comma, so
// trailing empty header cells are dropped and rows are counted regardless of
// field count. Blank lines are skipped by encoding/csv.
func Read(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return readTable(path, f)
}

func readTable(path string, src io.Reader) (Table, error) {
	r := csv.NewReader(src)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	table := Table{Path: path}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		return Table{}, fmt.Errorf("read header of %s: %w", path, err)
	}
	table.Columns = cleanHeader(header)

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read %s: %w", path, err)
		}
		if emptyRecord(record) {
			continue
		}
		table.Rows++
	}
	return table, nil
}

func cleanHeader(header []string) []string {
	columns := make([]string, 0, len(header))
	for _, cell := range header {
		columns = append(columns, strings.TrimSpace(cell))
	}
	for len(columns) > 0 && columns[len(columns)-1] == "" {
		columns = columns[:len(columns)-1]
	}
	return columns
}

func emptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package csvcheck

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMisaligned is returned by Report.Err when any problem was found.
var ErrMisaligned = errors.New("csv files are not aligned")

const errSuffix = "_err"

// Column names required by the downstream analysis.
var (
	DataColumns = []string{"m_center", "events", "events_err"}
	FitColumns  = []string{"detected_events", "detected_events_err"}
)

// Problem is a single alignment or convention failure.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// Report is the outcome of comparing a data CSV with a fit CSV.
type Report struct {
	Data     Table
	Fits     Table
	Pairs    []string
	Problems []Problem
}

// OK reports whether no problems were found.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// Err returns nil for a clean report, otherwise an error wrapping ErrMisaligned
// that lists every problem.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	parts := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Errorf("%w: %s", ErrMisaligned, strings.Join(parts, "; "))
}

// Check reads both files and compares them.
func Check(dataPath, fitsPath string) (Report, error) {
	data, err := Read(dataPath)
	if err != nil {
		return Report{}, err
	}
	fits, err := Read(fitsPath)
	if err != nil {
		return Report{}, err
	}
	return Compare(data, fits), nil
}

// Compare evaluates two already-read tables.
func Compare(data, fits Table) Report {
	report := Report{Data: data, Fits: fits}

	if data.Rows != fits.Rows {
		report.Problems = append(report.Problems, Problem{
			Message: fmt.Sprintf("row count mismatch: %s has %d rows, %s has %d", data.Path, data.Rows, fits.Path, fits.Rows),
		})
	}
	if data.Rows == 0 {
		report.Problems = append(report.Problems, Problem{Path: data.Path, Message: "no data rows"})
	}
	if fits.Rows == 0 {
		report.Problems = append(report.Problems, Problem{Path: fits.Path, Message: "no data rows"})
	}

	report.Problems = append(report.Problems, missingColumns(data, DataColumns)...)
	report.Problems = append(report.Problems, missingColumns(fits, FitColumns)...)

	pairs, orphans := errorPairs(fits.Columns)
	report.Pairs = pairs
	for _, name := range orphans {
		report.Problems = append(report.Problems, Problem{
			Path:    fits.Path,
			Message: fmt.Sprintf("column %q has no matching %q", name+errSuffix, name),
		})
	}
	return report
}

func missingColumns(t Table, required []string) []Problem {
	var problems []Problem
	for _, column := range required {
		if !t.Has(column) {
			problems = append(problems, Problem{Path: t.Path, Message: fmt.Sprintf("missing column %q", column)})
		}
	}
	return problems
}

// errorPairs returns the value columns that have a matching "_err" column and
// the base names of "_err" columns whose value column is absent. Both lists
// are sorted.
func errorPairs(columns []string) (pairs, orphans []string) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range columns {
		base, ok := strings.CutSuffix(c, errSuffix)
		if !ok || base == "" {
			continue
		}
		if present[base] {
			pairs = append(pairs, base)
		} else {
			orphans = append(orphans, base)
		}
	}
	sort.Strings(pairs)
	sort.Strings(orphans)
	return pairs, orphans
}

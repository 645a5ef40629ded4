package roster

import (
	"errors"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Filter is an explicit subset of students to extract.
type Filter struct {
	names []string
}

// NewFilter builds a filter from canonical names. Blank names are dropped.
func NewFilter(names []string) *Filter {
	f := &Filter{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			f.names = append(f.names, n)
		}
	}
	return f
}

// filterRow is one record of a student list; only the first field is used.
type filterRow struct {
	Name string `csv:"name"`
}

// LoadFilter reads a ';'-delimited student list; the first field of each
// record is the canonical name.
func LoadFilter(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to open student list", Cause: err}
	}
	defer file.Close()

	var rows []filterRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(newRecords(file, ';', 1), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return NewFilter(nil), nil
		}
		return nil, &LoadError{Path: path, Message: "failed to parse student list", Cause: err}
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return NewFilter(names), nil
}

// Match reports whether name equals one of the filter's names, ignoring case.
func (f *Filter) Match(name string) bool {
	for _, n := range f.names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

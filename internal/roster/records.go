package roster

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// records feeds csv records to gocsv. It drops a UTF-8 byte order mark from
// the first field and, when width is set, keeps at most width fields.
type records struct {
	r       *csv.Reader
	width   int
	started bool
}

func newRecords(in io.Reader, comma rune, width int) *records {
	r := csv.NewReader(in)
	if comma != 0 {
		r.Comma = comma
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return &records{r: r, width: width}
}

func (rs *records) Read() ([]string, error) {
	record, err := rs.r.Read()
	if err != nil {
		return nil, err
	}
	if !rs.started {
		rs.started = true
		if len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
	}
	if rs.width > 0 && len(record) > rs.width {
		record = record[:rs.width]
	}
	return record, nil
}

func (rs *records) ReadAll() ([][]string, error) {
	var all [][]string
	for {
		record, err := rs.Read()
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, record)
	}
}

// Package roster maps platform-mangled student names to canonical display names.
package roster

import (
	"errors"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/gocarina/gocsv"
)

// pointsPossible labels the row a gradebook export places under its header.
const pointsPossible = "Points Possible"

// gradebookRow holds the gradebook columns the roster needs. Section holds
// text like "CS 2110 A1"; the last token is the section id.
type gradebookRow struct {
	Student string `csv:"Student"`
	Section string `csv:"Section"`
}

// Identity is a student's canonical name plus its comparison key.
type Identity struct {
	Name string // "Last, First" or "Last, First Middle"
	Key  string // Squish(Name)
}

// NewIdentity builds an Identity from a canonical display name.
func NewIdentity(name string) Identity {
	return Identity{Name: name, Key: Squish(name)}
}

// Squish drops every non-alphanumeric rune and upper-cases the rest.
func Squish(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToUpper(r))
		}
	}
	return sb.String()
}

// Roster is the authoritative key -> canonical name mapping for one run.
type Roster struct {
	byKey    map[string]string
	names    []string
	sections map[string][]string
}

// Load reads a gradebook CSV export.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to open roster", Cause: err}
	}
	defer f.Close()

	r, err := Parse(f)
	if err != nil {
		var collision *CollisionError
		if errors.As(err, &collision) {
			return nil, err
		}
		return nil, &LoadError{Path: path, Message: "failed to parse roster", Cause: err}
	}
	return r, nil
}

// Parse reads a gradebook export from r. The "Points Possible" row under the
// header is dropped. Two canonical names squishing to the same key is a
// CollisionError.
func Parse(r io.Reader) (*Roster, error) {
	ros := &Roster{
		byKey:    make(map[string]string),
		sections: make(map[string][]string),
	}

	var rows []gradebookRow
	if err := gocsv.UnmarshalCSV(newRecords(r, 0, 0), &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return ros, nil
		}
		return nil, err
	}
	if len(rows) > 0 && strings.EqualFold(strings.TrimSpace(rows[0].Student), pointsPossible) {
		rows = rows[1:]
	}

	for _, row := range rows {
		name := strings.TrimSpace(row.Student)
		if name == "" {
			continue
		}
		id := NewIdentity(name)
		if id.Key == "" {
			continue
		}
		if existing, ok := ros.byKey[id.Key]; ok {
			if existing == name {
				continue
			}
			return nil, &CollisionError{Key: id.Key, First: existing, Second: name}
		}
		ros.byKey[id.Key] = name
		ros.names = append(ros.names, name)

		if fields := strings.Fields(row.Section); len(fields) > 0 {
			section := strings.ToUpper(fields[len(fields)-1])
			ros.sections[section] = append(ros.sections[section], name)
		}
	}

	return ros, nil
}

// Lookup resolves a squished key (any case) to its canonical identity.
func (r *Roster) Lookup(key string) (Identity, bool) {
	key = strings.ToUpper(key)
	name, ok := r.byKey[key]
	if !ok {
		return Identity{}, false
	}
	return Identity{Name: name, Key: key}, true
}

// Len returns the number of students.
func (r *Roster) Len() int {
	return len(r.names)
}

// Section returns the students of a section, matched case-insensitively.
func (r *Roster) Section(id string) []string {
	return append([]string(nil), r.sections[strings.ToUpper(strings.TrimSpace(id))]...)
}

package lateness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/submission-fix/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadZone(DefaultZone)
	if err != nil {
		t.Skipf("zone database not available: %v", err)
	}
	return loc
}

func writeTimestamp(t *testing.T, value string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TimestampFile), []byte(value), 0644))
	return dir
}

func TestParseTimestamp_ConvertsToEastern(t *testing.T) {
	loc := eastern(t)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"same day", "20050228221512345", time.Date(2005, 2, 28, 17, 15, 12, 0, loc)},
		{"previous day", "20050228033012345", time.Date(2005, 2, 27, 22, 30, 12, 0, loc)},
		{"daylight saving", "20150701160000000", time.Date(2015, 7, 1, 12, 0, 0, 0, loc)},
		{"no trailing digits", "20050228221512", time.Date(2005, 2, 28, 17, 15, 12, 0, loc)},
		{"trailing newline", "20050228221512345\n", time.Date(2005, 2, 28, 17, 15, 12, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got.In(loc))
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, input := range []string{"", "2005", "2005022822151x", "20051328221512"} {
		_, err := ParseTimestamp(input)
		assert.Error(t, err, input)
	}
}

func TestParseDue(t *testing.T) {
	loc := eastern(t)

	due, err := ParseDue("02/28/05 23:55", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 2, 28, 23, 55, 0, 0, loc), due)

	due, err = ParseDue("  02/28/05   23:55 ", loc)
	require.NoError(t, err)
	assert.Equal(t, 55, due.Minute())

	due, err = ParseDue("2/8/05 9:05", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 2, 8, 9, 5, 0, 0, loc), due)

	_, err = ParseDue("02/28/05", loc)
	assert.Error(t, err)
	_, err = ParseDue("2005-02-28 23:55", loc)
	assert.Error(t, err)

	_, err = ParseDue("02/28/05 23:55", nil)
	assert.ErrorIs(t, err, ErrNoTimezone)
}

func TestNew_RequiresZone(t *testing.T) {
	_, err := New(time.Now(), nil)
	assert.ErrorIs(t, err, ErrNoTimezone)
}

func TestEvaluate_Boundary(t *testing.T) {
	loc := eastern(t)
	due := time.Date(2005, 2, 28, 17, 15, 12, 0, loc)
	ev, err := New(due, loc)
	require.NoError(t, err)
	student := roster.NewIdentity("Snake, Solid")

	t.Run("exactly at due date is on time", func(t *testing.T) {
		_, late, err := ev.Evaluate(student, writeTimestamp(t, "20050228221512000"))
		require.NoError(t, err)
		assert.False(t, late)
	})

	t.Run("one second after is late", func(t *testing.T) {
		rec, late, err := ev.Evaluate(student, writeTimestamp(t, "20050228221513000"))
		require.NoError(t, err)
		require.True(t, late)
		assert.Equal(t, student, rec.Student)
		assert.Equal(t, "02/28/05 17:15:13 EST", rec.Local)
		assert.Equal(t, loc, rec.SubmittedAt.Location())
	})

	t.Run("earlier is on time", func(t *testing.T) {
		_, late, err := ev.Evaluate(student, writeTimestamp(t, "20050228033012345"))
		require.NoError(t, err)
		assert.False(t, late)
	})
}

func TestEvaluate_MissingTimestamp(t *testing.T) {
	loc := eastern(t)
	ev, err := New(time.Date(2005, 2, 28, 23, 55, 0, 0, loc), loc)
	require.NoError(t, err)

	_, late, err := ev.Evaluate(roster.NewIdentity("Fox, Grey"), t.TempDir())
	assert.False(t, late)
	assert.ErrorIs(t, err, ErrNoTimestamp)
}

func TestEvaluate_MalformedTimestamp(t *testing.T) {
	loc := eastern(t)
	ev, err := New(time.Date(2005, 2, 28, 23, 55, 0, 0, loc), loc)
	require.NoError(t, err)

	_, late, err := ev.Evaluate(roster.NewIdentity("Fox, Grey"), writeTimestamp(t, "yesterday"))
	assert.False(t, late)

	var tsErr *TimestampError
	require.True(t, errors.As(err, &tsErr))
	assert.Equal(t, "yesterday", tsErr.Value)
}

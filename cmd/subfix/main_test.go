package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/submission-fix/internal/organize"
	"github.com/jonathan/submission-fix/internal/report"
)

const snakeHash = "0123456789abcdef0123456789abcdef"

const gradebook = `Student,ID,SIS User ID,SIS Login ID,Section
    Points Possible,,,,
"Snake, Solid",1001,900000001,ssnake3,CS 2110 A1
"Silverburgh-Sasaki, Meryl",1003,900000003,msilver3,CS 2110 B2
`

func writeZip(t *testing.T, p string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
	return p
}

// runCLI executes subfix in-process and returns what it printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func requireZone(t *testing.T) {
	t.Helper()
	if _, err := time.LoadLocation("America/New_York"); err != nil {
		t.Skipf("time zone database unavailable: %v", err)
	}
}

func TestTSquareCommand_EndToEnd(t *testing.T) {
	requireZone(t)
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk_download.zip"), map[string]string{
		"Homework 0/Snake, Solid(" + snakeHash + ")/Submission attachment(s)/report.asm": "; report",
		"Homework 0/Snake, Solid(" + snakeHash + ")/timestamp.txt":                        "20050228221512345",
	})
	dest := filepath.Join(work, "graded")
	reportPath := filepath.Join(work, "run.json")

	stdout, _, err := runCLI(t, "", "tsquare", bulk, "-p", dest, "-m", "-t", "02/28/05 17:14", "--report", reportPath)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "Snake, Solid", "report.asm"))
	assert.FileExists(t, filepath.Join(dest, "Snake, Solid", "Text", "timestamp.txt"))
	assert.NoDirExists(t, filepath.Join(dest, "Homework 0"))
	assert.Contains(t, stdout, "Late submissions:\n  Snake, Solid  02/28/05 17:15:12 EST\n")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var summary report.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "tsquare", summary.Platform)
	require.Len(t, summary.Late, 1)
	assert.Equal(t, "Snake, Solid", summary.Late[0].Student)
}

func TestTSquareCommand_OnTime(t *testing.T) {
	requireZone(t)
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})

	stdout, _, err := runCLI(t, "", "tsquare", bulk, "-p", filepath.Join(work, "out"), "-t", "2/28/05 17:16")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stdout, "Done\n"), stdout)
}

func TestTSquareCommand_FilterMatchesNothing(t *testing.T) {
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})
	filter := filepath.Join(work, "students.txt")
	require.NoError(t, os.WriteFile(filter, []byte("Ocelot, Revolver;gtg000\n"), 0644))
	dest := filepath.Join(work, "out")

	_, _, err := runCLI(t, "", "tsquare", bulk, "-p", dest, "-c", filter)

	var cfgErr *organize.ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.NoDirExists(t, dest)
}

func TestTSquareCommand_DeclinedPrompt(t *testing.T) {
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})
	dest := filepath.Join(work, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("keep"), 0644))

	_, stderr, err := runCLI(t, "n\n", "tsquare", bulk, "-p", dest)

	assert.ErrorIs(t, err, organize.ErrDeclined)
	assert.Contains(t, stderr, "Overwrite it? [y/N]")
	assert.FileExists(t, filepath.Join(dest, "keep.txt"))
}

func TestTSquareCommand_AssumeYes(t *testing.T) {
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})
	dest := filepath.Join(work, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0644))

	_, _, err := runCLI(t, "", "tsquare", bulk, "-p", dest, "--yes")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dest, "old.txt"))
	assert.DirExists(t, filepath.Join(dest, "Snake, Solid"))
}

func TestTSquareCommand_BadDueDate(t *testing.T) {
	requireZone(t)
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})

	_, _, err := runCLI(t, "", "tsquare", bulk, "-p", filepath.Join(work, "out"), "-t", "28/02/05 17:14")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid due date")
}

func TestTSquareCommand_UnknownTimezoneSkipsLateness(t *testing.T) {
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "bulk.zip"), map[string]string{
		"Snake, Solid(" + snakeHash + ")/timestamp.txt": "20050228221512345",
	})

	stdout, stderr, err := runCLI(t, "", "tsquare", bulk, "-p", filepath.Join(work, "out"),
		"-t", "02/28/05 17:14", "--timezone", "Nowhere/Atlantis")
	require.NoError(t, err)
	assert.Contains(t, stderr, "late submissions will not be checked")
	assert.True(t, strings.HasSuffix(stdout, "Done\n"), stdout)
}

func TestTSquareCommand_Args(t *testing.T) {
	_, _, err := runCLI(t, "", "tsquare")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestCanvasCommand_SectionAndFlatten(t *testing.T) {
	work := t.TempDir()
	inner := filepath.Join(work, "inner.zip")
	writeZip(t, inner, map[string]string{"hw1/src/main.c": "int main;"})
	innerBytes, err := os.ReadFile(inner)
	require.NoError(t, err)

	bulk := writeZip(t, filepath.Join(work, "submissions.zip"), map[string]string{
		"snakesolid_1001_1_hw1.zip":                string(innerBytes),
		"silverburghsasakimeryl_late_1003_1_b.asm": "b",
	})
	roster := filepath.Join(work, "gradebook.csv")
	require.NoError(t, os.WriteFile(roster, []byte(gradebook), 0644))
	dest := filepath.Join(work, "out")

	stdout, _, err := runCLI(t, "", "canvas", bulk, roster, "-p", dest, "-s", "a1", "-m", "All")
	require.NoError(t, err)

	assert.Equal(t, "int main;", readFile(t, filepath.Join(dest, "Snake, Solid", "main.c")))
	assert.NoDirExists(t, filepath.Join(dest, "Snake, Solid", "hw1"))
	assert.NoDirExists(t, filepath.Join(dest, "Silverburgh-Sasaki, Meryl"))
	assert.Contains(t, stdout, "Students:  1")
}

func TestCanvasCommand_FlattenFromEnvironment(t *testing.T) {
	work := t.TempDir()
	inner := filepath.Join(work, "inner.zip")
	writeZip(t, inner, map[string]string{"hw1/src/main.c": "int main;"})
	innerBytes, err := os.ReadFile(inner)
	require.NoError(t, err)

	bulk := writeZip(t, filepath.Join(work, "submissions.zip"), map[string]string{
		"snakesolid_1001_1_hw1.zip": string(innerBytes),
	})
	roster := filepath.Join(work, "gradebook.csv")
	require.NoError(t, os.WriteFile(roster, []byte(gradebook), 0644))
	dest := filepath.Join(work, "out")
	t.Setenv("SUBFIX_FLATTEN", "1")

	_, _, err = runCLI(t, "", "canvas", bulk, roster, "-p", dest)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dest, "Snake, Solid", "src", "main.c"))
}

func TestCanvasCommand_BadFlatten(t *testing.T) {
	work := t.TempDir()
	roster := filepath.Join(work, "gradebook.csv")
	require.NoError(t, os.WriteFile(roster, []byte(gradebook), 0644))

	_, _, err := runCLI(t, "", "canvas", filepath.Join(work, "missing.zip"), roster, "-m", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'flatten' must be one of")
}

func TestCanvasCommand_MissingRoster(t *testing.T) {
	work := t.TempDir()
	bulk := writeZip(t, filepath.Join(work, "submissions.zip"), map[string]string{
		"snakesolid_1001_1_a.asm": "a",
	})

	_, _, err := runCLI(t, "", "canvas", bulk, filepath.Join(work, "nope.csv"), "-p", filepath.Join(work, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

package report

import (
	"fmt"
	"io"
	"strings"
)

const (
	// boxWidth is the width of the summary box
	boxWidth = 60
	// maxWarningsToShow caps the warnings listed in the summary box
	maxWarningsToShow = 5
)

// Printer handles the end-of-run console output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSummary prints the run box followed by the late list, or "Done" when
// nobody was late.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSummary(s *Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Platform:  %s\n", s.Platform))
	sb.WriteString(fmt.Sprintf("Archive:   %s\n", s.Bulk))
	sb.WriteString(fmt.Sprintf("Output:    %s\n", s.Destination))
	sb.WriteString(fmt.Sprintf("Students:  %d (%d of %d entries)\n", len(s.Students), s.Selected, s.Entries))
	if s.Due != "" {
		sb.WriteString(fmt.Sprintf("Due:       %s\n", s.Due))
	}
	if len(s.MarkedLate) > 0 {
		sb.WriteString(fmt.Sprintf("Marked late by platform: %d\n", len(s.MarkedLate)))
	}

	if len(s.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings: %d\n", len(s.Warnings)))
		count := min(len(s.Warnings), maxWarningsToShow)
		for i := 0; i < count; i++ {
			w := s.Warnings[i]
			if w.Student != "" {
				sb.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", w.Kind, w.Student, w.Message))
			} else {
				sb.WriteString(fmt.Sprintf("  • [%s] %s\n", w.Kind, w.Message))
			}
		}
		if len(s.Warnings) > maxWarningsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s.Warnings)-maxWarningsToShow))
		}
	}

	p.printBox("SUBMISSIONS ORGANIZED", strings.TrimSuffix(sb.String(), "\n"))

	if len(s.Late) == 0 {
		fmt.Fprintln(p.out, "Done")
		return
	}
	fmt.Fprintln(p.out, "Late submissions:")
	for _, row := range s.Late {
		fmt.Fprintf(p.out, "  %s  %s\n", row.Student, row.Local)
	}
}

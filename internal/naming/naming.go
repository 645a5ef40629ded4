// Package naming parses the filename and folder conventions of the supported
// learning-management platforms.
package naming

import "regexp"

// Canvas filename grammars, tried in this order; the first match wins.
const (
	PatternQuiz     = "quiz"
	PatternLate     = "late"
	PatternStandard = "standard"
)

type canvasPattern struct {
	name string
	re   *regexp.Regexp
	late bool
}

var canvasPatterns = []canvasPattern{
	// sasakijohnny1111_question_2222_3333_answer.txt
	{PatternQuiz, regexp.MustCompile(`^([A-Za-z]+)\d+_question_\d+_\d+_(.+)$`), false},
	// sasakijohnny_late_1111_2222_hw01.asm
	{PatternLate, regexp.MustCompile(`^([A-Za-z0-9]+)_(?:late|LATE)_\d+_\d+_(.+)$`), true},
	// sasakijohnny_1111_2222_hw01.asm
	{PatternStandard, regexp.MustCompile(`^([A-Za-z0-9]+)_\d+_\d+_(.+)$`), false},
}

// CanvasName is a parsed Canvas bulk-download filename.
type CanvasName struct {
	Squished string // name with separators removed, as Canvas wrote it
	File     string // the student's original filename, possibly with a resubmission suffix
	Late     bool   // Canvas marked the file late
	Pattern  string
}

// ParseCanvas matches base against the Canvas grammars.
func ParseCanvas(base string) (CanvasName, bool) {
	for _, p := range canvasPatterns {
		m := p.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		return CanvasName{
			Squished: m[1],
			File:     m[2],
			Late:     p.late,
			Pattern:  p.name,
		}, true
	}
	return CanvasName{}, false
}

// Canonical is the filename the student submitted, without Canvas'
// resubmission suffix.
func (n CanvasName) Canonical() string {
	return StripResubmission(n.File)
}

var hashSuffix = regexp.MustCompile(`^(.*)\(([0-9A-Fa-f]{8,})\)$`)

// StripHash removes the "(<hex>)" suffix T-Square appends to student folder
// names. Names without one are returned unchanged with ok false.
func StripHash(name string) (string, bool) {
	m := hashSuffix.FindStringSubmatch(name)
	if m == nil {
		return name, false
	}
	return m[1], true
}

var resubmission = regexp.MustCompile(`^(.+)-\d+(\.[^.]+)$`)

// StripResubmission removes a "-<digits>" suffix sitting directly before the
// final extension: "report-2.txt" becomes "report.txt".
func StripResubmission(name string) string {
	if m := resubmission.FindStringSubmatch(name); m != nil {
		return m[1] + m[2]
	}
	return name
}

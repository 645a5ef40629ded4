// Package textdump renders the HTML submission-text dumps some platforms
// include as plain text.
package textdump

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Render returns the visible text of an HTML document, one non-blank line
// per line of output with runs of spaces collapsed.
func Render(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// RenderDir writes a sibling .txt for every .html/.htm file directly in dir
// and returns the paths written.
func RenderDir(dir string) ([]string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var written []string
	for _, it := range items {
		ext := strings.ToLower(filepath.Ext(it.Name()))
		if it.IsDir() || (ext != ".html" && ext != ".htm") {
			continue
		}
		src := filepath.Join(dir, it.Name())
		data, err := os.ReadFile(src)
		if err != nil {
			return written, fmt.Errorf("failed to read %s: %w", src, err)
		}
		text, err := Render(string(data))
		if err != nil {
			return written, fmt.Errorf("%s: %w", src, err)
		}
		dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".txt"
		if err := os.WriteFile(dst, []byte(text), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}

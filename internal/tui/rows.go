// Package tui implements the interactive conversation picker.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"ccexport/internal/cli"
	"ccexport/internal/pipeline"
)

// Row is one selectable conversation in the picker.
type Row struct {
	Index           int // 1-based, stable across filtering
	Path            string
	RelPath         string
	Mtime           string
	Preview         string
	Events          int
	PrimaryEvents   int
	SecondaryEvents int
}

// BuildRows converts unit summaries to picker rows. Paths are shown
// relative to the common root of all primary files.
func BuildRows(summaries []pipeline.Summary) []Row {
	root := commonRoot(summaries)

	rows := make([]Row, 0, len(summaries))
	for i, s := range summaries {
		path := s.Unit.PrimaryFile
		rel := path
		if root != "" {
			if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}

		preview := s.Preview
		if s.Unit.SubagentFiles > 0 {
			preview = fmt.Sprintf("[+%d subagent file(s)] %s", s.Unit.SubagentFiles, preview)
		}

		rows = append(rows, Row{
			Index:           i + 1,
			Path:            path,
			RelPath:         rel,
			Mtime:           cli.FormatMtime(s.Unit.ModTime),
			Preview:         preview,
			Events:          s.Events,
			PrimaryEvents:   s.PrimaryEvents,
			SecondaryEvents: s.SecondaryEvents,
		})
	}
	return rows
}

// commonRoot finds the deepest directory shared by all primary files.
func commonRoot(summaries []pipeline.Summary) string {
	if len(summaries) == 0 {
		return ""
	}
	root := filepath.Dir(summaries[0].Unit.PrimaryFile)
	for _, s := range summaries[1:] {
		dir := filepath.Dir(s.Unit.PrimaryFile)
		for root != "" && !strings.HasPrefix(dir+string(filepath.Separator), root+string(filepath.Separator)) {
			parent := filepath.Dir(root)
			if parent == root {
				return ""
			}
			root = parent
		}
	}
	return root
}

// filterRows returns the rows whose relative path or preview contains the
// query, case-insensitively. An empty query passes everything through.
func filterRows(rows []Row, query string) []Row {
	if query == "" {
		return rows
	}
	q := strings.ToLower(query)
	var out []Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.RelPath), q) ||
			strings.Contains(strings.ToLower(r.Preview), q) {
			out = append(out, r)
		}
	}
	return out
}

// Package pipeline assembles transcript files into conversation units,
// merges their records chronologically, and resolves subagent linkage.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"ccexport/internal/cli"
	"ccexport/internal/source"
)

// Unit is one conversation: the transcript files that share a session ID,
// or a single file with no session ID anywhere in it.
type Unit struct {
	Key           string   // session ID, or "path:<file>" fallback
	SessionID     string   // empty for path-keyed units
	Files         []string // sorted by path
	PrimaryFile   string
	ModTime       time.Time // newest modification time across files
	SubagentFiles int
}

// BuildUnits clusters files by session identity and orders the resulting
// units newest-first. Files whose records cannot be read still form their
// own path-keyed unit, so units always partition the input set.
func BuildUnits(files []string) []Unit {
	grouped := make(map[string][]string)
	var keyOrder []string // discovery order, the tie-break for equal mtimes

	for _, path := range files {
		records, _ := source.ReadRecords(path)
		key := source.SessionID(records)
		if key == "" {
			key = "path:" + path
		}
		if _, seen := grouped[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		grouped[key] = append(grouped[key], path)
	}

	units := make([]Unit, 0, len(keyOrder))
	for _, key := range keyOrder {
		group := grouped[key]
		sort.Strings(group)

		u := Unit{Key: key, Files: group}
		if !strings.HasPrefix(key, "path:") {
			u.SessionID = key
		}

		// Primary file: first non-subagent transcript, else the first file.
		u.PrimaryFile = group[0]
		for _, path := range group {
			if !source.IsSubagentPath(path) {
				u.PrimaryFile = path
				break
			}
		}
		for _, path := range group {
			if source.IsSubagentPath(path) {
				u.SubagentFiles++
			}
		}

		for _, path := range group {
			if mt := cli.PathMtime(path); mt.After(u.ModTime) {
				u.ModTime = mt
			}
		}

		units = append(units, u)
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].ModTime.After(units[j].ModTime)
	})
	return units
}

package pipeline

import (
	"fmt"
	"os"
	"strings"

	"ccexport/internal/classify"
	"ccexport/internal/cli"
)

// Summary carries the per-unit aggregates the picker and list command
// display.
type Summary struct {
	Unit            Unit
	Preview         string
	Events          int
	PrimaryEvents   int
	SecondaryEvents int
}

// ProgressFunc is called while summaries are built. current is the number
// of units processed so far, total the unit count.
type ProgressFunc func(current, total int)

// previewWidth is the preview truncation width used for summaries.
const previewWidth = 80

// Summarize merges, annotates and classifies one unit to produce its
// summary. Deterministic: same files, same output.
func Summarize(u Unit) Summary {
	records := MergeUnit(u)

	s := Summary{Unit: u, Events: len(records)}
	preview := ""
	for _, rec := range records {
		e := classify.Normalize(rec)
		if e.Secondary {
			s.SecondaryEvents++
		} else {
			s.PrimaryEvents++
		}
		if preview == "" && e.Role == "user" {
			preview = flattenPreview(e.Text)
		}
	}
	if preview == "" {
		preview = "(no user message)"
	}
	s.Preview = preview
	return s
}

// LoadSummaries builds summaries for every unit, in order. Processing is
// sequential on purpose: the input set is bounded and output determinism
// matters more than wall-clock speed here.
func LoadSummaries(units []Unit, progress ProgressFunc) []Summary {
	summaries := make([]Summary, len(units))
	for i, u := range units {
		summaries[i] = Summarize(u)
		if progress != nil {
			progress(i+1, len(units))
		}
	}
	return summaries
}

// SummaryCache is the subset of the store the pipeline needs: fingerprint
// lookup plus cached count/preview rows.
type SummaryCache interface {
	GetFingerprints() (map[string]string, error)
	LoadCounts(unitKey string) (events, primary, secondary int, preview string, err error)
	SaveSummary(unitKey, fingerprint string, events, primary, secondary int, preview string) error
}

// LoadSummariesWithCache is LoadSummaries with a fingerprint diff against
// the cache: units whose member files are byte-for-byte untouched reuse
// their cached counts and preview; everything else is re-derived and saved
// back. Cache write failures are ignored; read failures fall back to a
// fresh parse of that unit.
func LoadSummariesWithCache(units []Unit, cache SummaryCache, progress ProgressFunc) []Summary {
	tracked, err := cache.GetFingerprints()
	if err != nil {
		return LoadSummaries(units, progress)
	}

	summaries := make([]Summary, len(units))
	for i, u := range units {
		fp := Fingerprint(u)
		if cached, ok := tracked[u.Key]; ok && cached == fp {
			events, primary, secondary, preview, err := cache.LoadCounts(u.Key)
			if err == nil {
				summaries[i] = Summary{
					Unit:            u,
					Preview:         preview,
					Events:          events,
					PrimaryEvents:   primary,
					SecondaryEvents: secondary,
				}
				if progress != nil {
					progress(i+1, len(units))
				}
				continue
			}
		}

		summaries[i] = Summarize(u)
		s := summaries[i]
		_ = cache.SaveSummary(u.Key, fp, s.Events, s.PrimaryEvents, s.SecondaryEvents, s.Preview)
		if progress != nil {
			progress(i+1, len(units))
		}
	}
	return summaries
}

// Fingerprint identifies the exact on-disk state of a unit's member files:
// any mtime or size change changes the fingerprint.
func Fingerprint(u Unit) string {
	var b strings.Builder
	for _, path := range u.Files {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(&b, "%s:?;", path)
			continue
		}
		fmt.Fprintf(&b, "%s:%d:%d;", path, info.ModTime().UnixNano(), info.Size())
	}
	return b.String()
}

// flattenPreview collapses text onto one line and truncates it.
func flattenPreview(text string) string {
	oneLine := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	return cli.Truncate(oneLine, previewWidth)
}

package pipeline

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSummarize_CountsAndPreview(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"),
		`{"sessionId":"A","type":"user","timestamp":"2025-06-01T10:00:00Z","message":{"content":"what is\nthe plan"}}`,
		`{"sessionId":"A","type":"assistant","timestamp":"2025-06-01T10:01:00Z","message":{"content":"here it is"}}`,
		`{"sessionId":"A","type":"assistant","timestamp":"2025-06-01T10:02:00Z","tool_name":"Bash"}`,
	)

	units := BuildUnits([]string{path})
	s := Summarize(units[0])

	if s.Events != 3 {
		t.Errorf("Events = %d, want 3", s.Events)
	}
	if s.PrimaryEvents != 2 {
		t.Errorf("PrimaryEvents = %d, want 2", s.PrimaryEvents)
	}
	if s.SecondaryEvents != 1 {
		t.Errorf("SecondaryEvents = %d, want 1", s.SecondaryEvents)
	}
	// Preview is the first user message, collapsed onto one line.
	if s.Preview != "what is the plan" {
		t.Errorf("Preview = %q", s.Preview)
	}
}

func TestSummarize_NoUserMessage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"),
		`{"sessionId":"A","type":"assistant","message":{"content":"monologue"}}`,
	)
	units := BuildUnits([]string{path})
	s := Summarize(units[0])
	if s.Preview != "(no user message)" {
		t.Errorf("Preview = %q", s.Preview)
	}
}

// fakeCache records calls so the fingerprint-diff behavior is observable
// without SQLite.
type fakeCache struct {
	fingerprints map[string]string
	counts       map[string][4]any
	fpErr        error
	saves        int
	loads        int
}

func (f *fakeCache) GetFingerprints() (map[string]string, error) {
	return f.fingerprints, f.fpErr
}

func (f *fakeCache) LoadCounts(unitKey string) (int, int, int, string, error) {
	f.loads++
	c, ok := f.counts[unitKey]
	if !ok {
		return 0, 0, 0, "", errors.New("not cached")
	}
	return c[0].(int), c[1].(int), c[2].(int), c[3].(string), nil
}

func (f *fakeCache) SaveSummary(unitKey, fingerprint string, events, primary, secondary int, preview string) error {
	f.saves++
	if f.fingerprints == nil {
		f.fingerprints = make(map[string]string)
	}
	if f.counts == nil {
		f.counts = make(map[string][4]any)
	}
	f.fingerprints[unitKey] = fingerprint
	f.counts[unitKey] = [4]any{events, primary, secondary, preview}
	return nil
}

func TestLoadSummariesWithCache_HitSkipsParse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"),
		`{"sessionId":"A","type":"user","message":{"content":"hi"}}`,
	)
	units := BuildUnits([]string{path})

	cache := &fakeCache{}
	first := LoadSummariesWithCache(units, cache, nil)
	if cache.saves != 1 {
		t.Fatalf("saves = %d, want 1 on cold cache", cache.saves)
	}

	second := LoadSummariesWithCache(units, cache, nil)
	if cache.saves != 1 {
		t.Errorf("saves = %d, want no new save on warm cache", cache.saves)
	}
	if cache.loads != 1 {
		t.Errorf("loads = %d, want 1", cache.loads)
	}
	if second[0].Events != first[0].Events || second[0].Preview != first[0].Preview {
		t.Errorf("cached summary differs: %+v vs %+v", second[0], first[0])
	}
}

func TestLoadSummariesWithCache_StaleFingerprintReparses(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"),
		`{"sessionId":"A","type":"user","message":{"content":"hi"}}`,
	)
	units := BuildUnits([]string{path})

	cache := &fakeCache{
		fingerprints: map[string]string{units[0].Key: "stale"},
		counts:       map[string][4]any{units[0].Key: {99, 99, 0, "stale preview"}},
	}
	summaries := LoadSummariesWithCache(units, cache, nil)
	if summaries[0].Events != 1 {
		t.Errorf("Events = %d, want fresh parse", summaries[0].Events)
	}
	if cache.saves != 1 {
		t.Errorf("saves = %d, want refreshed entry", cache.saves)
	}
}

func TestLoadSummariesWithCache_FingerprintErrorFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"),
		`{"sessionId":"A","type":"user","message":{"content":"hi"}}`,
	)
	units := BuildUnits([]string{path})

	cache := &fakeCache{fpErr: errors.New("corrupt db")}
	summaries := LoadSummariesWithCache(units, cache, nil)
	if len(summaries) != 1 || summaries[0].Events != 1 {
		t.Errorf("summaries = %+v, want uncached fallback", summaries)
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "s.jsonl"), `{"sessionId":"A"}`)
	units := BuildUnits([]string{path})

	before := Fingerprint(units[0])
	writeFile(t, path, `{"sessionId":"A","extra":"longer line now"}`)
	after := Fingerprint(units[0])

	if before == after {
		t.Error("fingerprint unchanged after file grew")
	}
}

// Package source discovers Claude Code JSONL transcript files and reads
// them into raw records.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Record is one decoded log line: arbitrary keys straight from the JSON
// object, plus engine bookkeeping fields.
type Record map[string]any

// Engine-added record keys. The underscore prefix keeps them out of the
// way of real transcript fields.
const (
	KeySourceLine    = "_source_line"
	KeySourceFile    = "_source_file"
	KeyInferredAgent = "_inferred_agent_id"
)

// TypeParseError is the reserved type of synthetic records produced for
// malformed lines.
const TypeParseError = "parse_error"

// Str returns the trimmed string value at key, or "" when the key is
// missing or holds a non-string value.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Map returns the nested object at key, or nil.
func (r Record) Map(key string) Record {
	if v, ok := r[key].(map[string]any); ok {
		return Record(v)
	}
	return nil
}

// List returns the array at key, or nil.
func (r Record) List(key string) []any {
	if v, ok := r[key].([]any); ok {
		return v
	}
	return nil
}

// Has reports whether key is present, regardless of its value.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// SourceLine returns the 1-based line number the record came from.
func (r Record) SourceLine() int {
	if n, ok := r[KeySourceLine].(int); ok {
		return n
	}
	return 0
}

// ReadRecords parses one JSONL transcript file into its ordered records.
//
// Policy: blank lines are skipped (they still advance line numbering); a
// line that fails to decode as JSON yields one synthetic parse-error record
// carrying the raw text, so the record count equals the non-blank line
// count; lines that decode to a non-object value are silently dropped.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			records = append(records, parseErrorRecord(line, lineNo))
			continue
		}

		obj, ok := decoded.(map[string]any)
		if !ok {
			// Valid JSON but not an object (array, string, number).
			// Not an event and not a parse error.
			continue
		}

		rec := Record(obj)
		rec[KeySourceLine] = lineNo
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan transcript: %w", err)
	}

	return records, nil
}

// parseErrorRecord builds the synthetic record for a malformed line. Its
// shape mirrors a real event so downstream classification stays total.
func parseErrorRecord(raw string, lineNo int) Record {
	return Record{
		"type":      TypeParseError,
		"timestamp": "",
		"message": map[string]any{
			"content": fmt.Sprintf("Invalid JSON at line %d", lineNo),
		},
		"raw":          raw,
		KeySourceLine: lineNo,
	}
}

// SessionID scans records in order for the first non-empty top-level
// sessionId, returning "" when none is present.
func SessionID(records []Record) string {
	for _, rec := range records {
		if id := rec.Str("sessionId"); id != "" {
			return id
		}
	}
	return ""
}

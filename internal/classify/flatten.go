// Package classify normalizes raw transcript records into display events
// and groups them into render blocks.
package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ccexport/internal/source"
)

// contentKeys is the probe order for content-bearing keys in an
// unrecognized mapping.
var contentKeys = []string{
	"text", "content", "message", "input", "output",
	"result", "error", "name", "tool_name", "arguments",
}

// Flatten reduces an arbitrary decoded JSON value to a single display
// string. It is total: when nothing text-like matches inside a mapping, the
// mapping's pretty-printed JSON is returned rather than an empty string.
func Flatten(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		var parts []string
		for _, item := range val {
			if s := Flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n"))
	case map[string]any:
		m := source.Record(val)
		switch m.Str("type") {
		case "text", "input_text", "output_text":
			if s := Flatten(m["text"]); s != "" {
				return s
			}
			if s := Flatten(m["content"]); s != "" {
				return s
			}
		}
		for _, key := range contentKeys {
			inner, ok := m[key]
			if !ok {
				continue
			}
			if s := Flatten(inner); s != "" {
				return s
			}
		}
		return prettyJSON(val)
	default:
		return fmt.Sprint(val)
	}
}

// prettyJSON renders v as indented JSON without HTML escaping. Keys are
// emitted in sorted order, keeping the fallback deterministic.
func prettyJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// compactJSON renders v as one-line JSON, lower-cased, for marker scans.
func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimRight(buf.String(), "\n"))
}

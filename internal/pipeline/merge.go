package pipeline

import (
	"math"
	"sort"
	"strings"
	"time"

	"ccexport/internal/classify"
	"ccexport/internal/source"
)

// MergeUnit reads every member file of a unit and returns one chronological
// record sequence with subagent linkage annotations applied. Member files
// that cannot be read contribute no records; merging never fails.
//
// Ordering is the total order (timestamp-or-+inf, file index, line number):
// records without a parseable timestamp sort after all timestamped ones,
// preserving file and line order among themselves.
func MergeUnit(u Unit) []source.Record {
	type tagged struct {
		ts      float64
		fileIdx int
		line    int
		rec     source.Record
	}

	var merged []tagged
	for fileIdx, path := range u.Files {
		records, err := source.ReadRecords(path)
		if err != nil && records == nil {
			continue
		}
		for _, rec := range records {
			rec[source.KeySourceFile] = path
			ts := math.Inf(1)
			if v, ok := parseSortTime(classify.ExtractTimestamp(rec)); ok {
				ts = v
			}
			merged = append(merged, tagged{
				ts:      ts,
				fileIdx: fileIdx,
				line:    rec.SourceLine(),
				rec:     rec,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.ts != b.ts {
			return a.ts < b.ts
		}
		if a.fileIdx != b.fileIdx {
			return a.fileIdx < b.fileIdx
		}
		return a.line < b.line
	})

	ordered := make([]source.Record, len(merged))
	for i, t := range merged {
		ordered[i] = t.rec
	}

	annotateLinkage(ordered)
	return ordered
}

// sortTimeLayouts accepts RFC 3339 timestamps and the local-time form the
// classifier produces for epoch values.
var sortTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseSortTime(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	for _, layout := range sortTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return float64(t.UnixNano()) / float64(time.Second), true
		}
	}
	return 0, false
}

// toolIDKeys carry tool-use identifiers directly on a record.
var toolIDKeys = []string{"parentToolUseID", "toolUseID"}

// annotateLinkage infers subagent attribution for events that lack the
// explicit tag.
//
// Pass 1 collects identifier tables from explicitly tagged events: event
// uuid -> agent, and tool-use id -> agent (direct fields plus tool_use
// content items). Pass 2 resolves untagged events against those tables via,
// in order: the generic data.message.uuid wrapper, the direct
// sourceToolAssistantUUID cross-reference, a direct tool-use id, and a
// tool_result content item. Inference is one hop only: inferred
// attributions never seed the tables.
func annotateLinkage(ordered []source.Record) {
	toolToAgent := make(map[string]string)
	uuidToAgent := make(map[string]string)

	for _, rec := range ordered {
		agentID := rec.Str("agentId")
		if agentID == "" {
			continue
		}
		if uuid := rec.Str("uuid"); uuid != "" {
			uuidToAgent[uuid] = agentID
		}
		for _, key := range toolIDKeys {
			if id := rec.Str(key); id != "" {
				toolToAgent[id] = agentID
			}
		}
		if msg := rec.Map("message"); msg != nil {
			for _, item := range msg.List("content") {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				m := source.Record(obj)
				if strings.ToLower(m.Str("type")) == "tool_use" {
					if id := m.Str("id"); id != "" {
						toolToAgent[id] = agentID
					}
				}
			}
		}
	}

	for _, rec := range ordered {
		if rec.Str("agentId") != "" {
			continue
		}
		if agent := inferAgent(rec, uuidToAgent, toolToAgent); agent != "" {
			rec[source.KeyInferredAgent] = agent
		}
	}
}

func inferAgent(rec source.Record, uuidToAgent, toolToAgent map[string]string) string {
	if data := rec.Map("data"); data != nil {
		if dataMsg := data.Map("message"); dataMsg != nil {
			if agent, ok := uuidToAgent[dataMsg.Str("uuid")]; ok {
				return agent
			}
		}
	}
	if agent, ok := uuidToAgent[rec.Str("sourceToolAssistantUUID")]; ok {
		return agent
	}
	for _, key := range toolIDKeys {
		if agent, ok := toolToAgent[rec.Str(key)]; ok {
			return agent
		}
	}
	if msg := rec.Map("message"); msg != nil {
		for _, item := range msg.List("content") {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			m := source.Record(obj)
			if strings.ToLower(m.Str("type")) != "tool_result" {
				continue
			}
			if agent, ok := toolToAgent[m.Str("tool_use_id")]; ok {
				return agent
			}
		}
	}
	return ""
}

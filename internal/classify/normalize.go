package classify

import (
	"fmt"
	"strings"
	"time"

	"ccexport/internal/source"
)

// Category labels the kind of a classified event.
type Category string

const (
	CategoryPrimary  Category = "primary"
	CategorySubagent Category = "subagent"
	CategorySystem   Category = "system"
	CategorySkill    Category = "skill"
	CategoryMCP      Category = "mcp"
	CategoryTool     Category = "tool"
	CategoryOther    Category = "other"
)

// Conversational roles shown unconditionally.
var primaryRoles = map[string]bool{"user": true, "assistant": true}

// Roles that never represent a conversational turn.
var nonConversationalRoles = map[string]bool{
	"progress":              true,
	"file-history-snapshot": true,
}

// Event is the normalized, read-only view of one raw record.
type Event struct {
	Role      string
	Timestamp string
	Text      string
	Secondary bool
	Category  Category
	FlowName  string
	CallName  string
	Raw       source.Record
}

// Normalize classifies one record (with any linkage annotation already
// applied). Pure function of the record: no cross-event state.
func Normalize(rec source.Record) Event {
	role := Role(rec)
	text := Text(rec)
	secondary := isSecondary(rec, role, text)
	category := CategoryPrimary
	if secondary {
		category = secondaryCategory(rec, role, text)
	}
	return Event{
		Role:      role,
		Timestamp: ExtractTimestamp(rec),
		Text:      text,
		Secondary: secondary,
		Category:  category,
		FlowName:  flowName(rec),
		CallName:  CallName(rec),
		Raw:       rec,
	}
}

// Role resolves the event role: top-level role, type, event, then
// message.role; lower-cased, default "unknown".
func Role(rec source.Record) string {
	for _, key := range []string{"role", "type", "event"} {
		if v := rec.Str(key); v != "" {
			return strings.ToLower(v)
		}
	}
	if msg := rec.Map("message"); msg != nil {
		if v := msg.Str("role"); v != "" {
			return strings.ToLower(v)
		}
	}
	return "unknown"
}

// timestampKeys is the top-level probe order; the nested message probe
// omits "date".
var timestampKeys = []string{"timestamp", "created_at", "createdAt", "time", "date"}

// ExtractTimestamp resolves the display timestamp. Presence wins over
// content: a present-but-null key yields "". Numeric values are epoch
// seconds, rendered in local time.
func ExtractTimestamp(rec source.Record) string {
	for _, key := range timestampKeys {
		if rec.Has(key) {
			return stampString(rec[key])
		}
	}
	if msg := rec.Map("message"); msg != nil {
		for _, key := range timestampKeys[:4] {
			if msg.Has(key) {
				return stampString(msg[key])
			}
		}
	}
	return ""
}

func stampString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return time.Unix(int64(t), 0).Local().Format("2006-01-02 15:04:05")
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Text resolves the display text: message.content/message.text first, then
// common top-level keys, falling back to the whole record's JSON so text is
// never silently lost.
func Text(rec source.Record) string {
	if msg := rec.Map("message"); msg != nil {
		for _, key := range []string{"content", "text"} {
			if msg.Has(key) {
				if s := Flatten(msg[key]); s != "" {
					return s
				}
			}
		}
	}
	for _, key := range []string{"content", "text", "input", "output", "result", "error", "raw"} {
		if rec.Has(key) {
			if s := Flatten(rec[key]); s != "" {
				return s
			}
		}
	}
	return prettyJSON(map[string]any(rec))
}

// SubagentID returns the event's agent identifier: the explicit tag wins,
// else the linkage-inferred annotation, else "".
func SubagentID(rec source.Record) string {
	if id := rec.Str("agentId"); id != "" {
		return id
	}
	return rec.Str(source.KeyInferredAgent)
}

func flowName(rec source.Record) string {
	if id := SubagentID(rec); id != "" {
		return "agent:" + id
	}
	return ""
}

// toolPayloadKeys mark a record as carrying a structured tool call/result.
var toolPayloadKeys = []string{
	"toolUseResult", "sourceToolAssistantUUID",
	"parentToolUseID", "toolUseID", "tool_name", "tool",
}

// HasToolPayload reports whether the record carries a structured tool-call
// or tool-result payload, directly or in message content items.
func HasToolPayload(rec source.Record) bool {
	for _, key := range toolPayloadKeys {
		if rec.Has(key) {
			return true
		}
	}
	msg := rec.Map("message")
	if msg == nil {
		return false
	}
	for _, item := range msg.List("content") {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch strings.ToLower(source.Record(obj).Str("type")) {
		case "tool_use", "tool_result":
			return true
		}
	}
	return false
}

// isSecondary applies the priority chain from the classification design:
// subagent attribution, tool payload, system role, non-conversational role,
// inline skill marker, unrecognized role.
func isSecondary(rec source.Record, role, text string) bool {
	if SubagentID(rec) != "" {
		return true
	}
	if HasToolPayload(rec) {
		return true
	}
	if role == "system" {
		return true
	}
	if nonConversationalRoles[role] {
		return true
	}
	if strings.Contains(text, "<command-name>/skill") || strings.Contains(text, "<command-message>skill") {
		return true
	}
	return !primaryRoles[role]
}

// secondaryCategory assigns the category for a secondary event. Priority:
// subagent attribution, system role, skill markers, mcp markers, tool
// payload, generic subagent marker, other.
func secondaryCategory(rec source.Record, role, text string) Category {
	if SubagentID(rec) != "" {
		return CategorySubagent
	}
	if role == "system" {
		return CategorySystem
	}
	call := strings.ToLower(CallName(rec))
	lowText := strings.ToLower(text)
	raw := compactJSON(map[string]any(rec))
	if strings.Contains(call, "skill") ||
		strings.Contains(lowText, "<command-name>/skill") ||
		strings.Contains(lowText, "/skill") {
		return CategorySkill
	}
	if strings.Contains(call, "mcp") || strings.Contains(raw, "mcp") {
		return CategoryMCP
	}
	if HasToolPayload(rec) {
		return CategoryTool
	}
	if strings.Contains(raw, "subagent") {
		return CategorySubagent
	}
	return CategoryOther
}

// CallName resolves the best-effort tool/skill identifier: direct name-like
// fields, then tool_use/tool_result content items, then one nesting hop
// inside the generic data.message wrapper.
func CallName(rec source.Record) string {
	for _, key := range []string{"tool_name", "tool", "name"} {
		if v := rec.Str(key); v != "" {
			return v
		}
	}
	if msg := rec.Map("message"); msg != nil {
		if name := callNameFromContent(msg.List("content")); name != "" {
			return name
		}
	}
	if data := rec.Map("data"); data != nil {
		if dataMsg := data.Map("message"); dataMsg != nil {
			if nested := dataMsg.Map("message"); nested != nil {
				if name := callNameFromContent(nested.List("content")); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func callNameFromContent(content []any) string {
	for _, item := range content {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		m := source.Record(obj)
		switch strings.ToLower(m.Str("type")) {
		case "tool_use":
			if name := m.Str("name"); name != "" {
				return name
			}
		case "tool_result":
			if id := m.Str("tool_use_id"); id != "" {
				return id
			}
		}
	}
	return ""
}

// StepKind derives the finer step kind used for nested sub-grouping inside
// a subagent run: message, skill, mcp, tool, system, or other.
func StepKind(e Event) string {
	if primaryRoles[e.Role] && !HasToolPayload(e.Raw) {
		return "message"
	}
	call := strings.ToLower(e.CallName)
	lowText := strings.ToLower(e.Text)
	raw := compactJSON(map[string]any(e.Raw))
	if strings.Contains(call, "skill") ||
		strings.Contains(lowText, "<command-name>/skill") ||
		strings.Contains(lowText, "/skill") {
		return "skill"
	}
	if strings.Contains(call, "mcp") || strings.Contains(raw, "mcp") {
		return "mcp"
	}
	if HasToolPayload(e.Raw) {
		return "tool"
	}
	if e.Role == "system" || nonConversationalRoles[e.Role] {
		return "system"
	}
	return "other"
}

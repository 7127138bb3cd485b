package classify

import (
	"testing"
	"time"

	"ccexport/internal/source"
)

func TestRole_ProbeOrder(t *testing.T) {
	cases := []struct {
		name string
		rec  source.Record
		want string
	}{
		{"top-level role", source.Record{"role": "User", "type": "x"}, "user"},
		{"type fallback", source.Record{"type": "Assistant"}, "assistant"},
		{"event fallback", source.Record{"event": "progress"}, "progress"},
		{"nested message role", source.Record{"message": map[string]any{"role": "user"}}, "user"},
		{"nothing", source.Record{"foo": "bar"}, "unknown"},
	}
	for _, tc := range cases {
		if got := Role(tc.rec); got != tc.want {
			t.Errorf("%s: Role = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtractTimestamp(t *testing.T) {
	if got := ExtractTimestamp(source.Record{"timestamp": "2025-06-01T10:00:00Z"}); got != "2025-06-01T10:00:00Z" {
		t.Errorf("string timestamp = %q", got)
	}

	// Presence wins: a present-but-null timestamp shadows created_at.
	rec := source.Record{"timestamp": nil, "created_at": "2025-06-01"}
	if got := ExtractTimestamp(rec); got != "" {
		t.Errorf("null timestamp = %q, want empty", got)
	}

	// Epoch seconds render in local time.
	epoch := float64(1748772000)
	want := time.Unix(1748772000, 0).Local().Format("2006-01-02 15:04:05")
	if got := ExtractTimestamp(source.Record{"time": epoch}); got != want {
		t.Errorf("epoch = %q, want %q", got, want)
	}

	// Nested message probe, without "date".
	rec = source.Record{"message": map[string]any{"createdAt": "inner"}}
	if got := ExtractTimestamp(rec); got != "inner" {
		t.Errorf("nested = %q, want inner", got)
	}
	rec = source.Record{"message": map[string]any{"date": "never"}}
	if got := ExtractTimestamp(rec); got != "" {
		t.Errorf("nested date = %q, want empty", got)
	}
}

func TestText_FallbackNeverEmpty(t *testing.T) {
	rec := source.Record{"message": map[string]any{"content": "hello"}}
	if got := Text(rec); got != "hello" {
		t.Errorf("Text = %q, want hello", got)
	}

	rec = source.Record{"output": "tool output"}
	if got := Text(rec); got != "tool output" {
		t.Errorf("Text = %q, want tool output", got)
	}

	rec = source.Record{"weird_key": float64(7)}
	if got := Text(rec); got == "" {
		t.Error("Text fallback produced empty string")
	}
}

func TestNormalize_PrimaryConversation(t *testing.T) {
	e := Normalize(source.Record{
		"type":      "user",
		"timestamp": "2025-06-01T10:00:00Z",
		"message":   map[string]any{"content": "question"},
	})
	if e.Secondary {
		t.Error("plain user message classified secondary")
	}
	if e.Category != CategoryPrimary {
		t.Errorf("Category = %q, want primary", e.Category)
	}
	if e.Text != "question" {
		t.Errorf("Text = %q", e.Text)
	}
}

func TestNormalize_SecondaryPriority(t *testing.T) {
	cases := []struct {
		name string
		rec  source.Record
		want Category
	}{
		{
			"subagent attribution wins over tool payload",
			source.Record{"type": "assistant", "agentId": "a1", "tool_name": "Bash"},
			CategorySubagent,
		},
		{
			"inferred agent counts as subagent",
			source.Record{"type": "user", source.KeyInferredAgent: "a2"},
			CategorySubagent,
		},
		{
			"system role",
			source.Record{"type": "system", "content": "hook ran"},
			CategorySystem,
		},
		{
			"skill marker in text",
			source.Record{
				"type":    "user",
				"message": map[string]any{"content": "<command-name>/skill:review</command-name>"},
			},
			CategorySkill,
		},
		{
			"mcp marker in payload",
			source.Record{"type": "progress", "server": "mcp__github"},
			CategoryMCP,
		},
		{
			"tool payload",
			source.Record{"type": "assistant", "toolUseResult": map[string]any{"stdout": "ok"}},
			CategoryTool,
		},
		{
			"unrecognized role falls to other",
			source.Record{"type": "summary", "summary": "topic"},
			CategoryOther,
		},
	}
	for _, tc := range cases {
		e := Normalize(tc.rec)
		if !e.Secondary {
			t.Errorf("%s: classified primary", tc.name)
			continue
		}
		if e.Category != tc.want {
			t.Errorf("%s: Category = %q, want %q", tc.name, e.Category, tc.want)
		}
	}
}

func TestNormalize_ToolUseContentItem(t *testing.T) {
	rec := source.Record{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{
				map[string]any{"type": "tool_use", "name": "Read", "input": map[string]any{"path": "x"}},
			},
		},
	}
	e := Normalize(rec)
	if !e.Secondary || e.Category != CategoryTool {
		t.Fatalf("tool_use content: Secondary=%v Category=%q", e.Secondary, e.Category)
	}
	if e.CallName != "Read" {
		t.Errorf("CallName = %q, want Read", e.CallName)
	}
}

func TestCallName(t *testing.T) {
	if got := CallName(source.Record{"tool_name": "Bash", "name": "shadowed"}); got != "Bash" {
		t.Errorf("CallName = %q, want Bash", got)
	}

	rec := source.Record{
		"message": map[string]any{
			"content": []any{
				map[string]any{"type": "tool_result", "tool_use_id": "toolu_01"},
			},
		},
	}
	if got := CallName(rec); got != "toolu_01" {
		t.Errorf("CallName = %q, want toolu_01", got)
	}

	rec = source.Record{
		"data": map[string]any{
			"message": map[string]any{
				"message": map[string]any{
					"content": []any{
						map[string]any{"type": "tool_use", "name": "Grep"},
					},
				},
			},
		},
	}
	if got := CallName(rec); got != "Grep" {
		t.Errorf("nested CallName = %q, want Grep", got)
	}
}

func TestStepKind(t *testing.T) {
	msg := Normalize(source.Record{"type": "assistant", "message": map[string]any{"content": "thought"}})
	if got := StepKind(msg); got != "message" {
		t.Errorf("StepKind = %q, want message", got)
	}

	tool := Normalize(source.Record{"type": "assistant", "tool_name": "Write"})
	if got := StepKind(tool); got != "tool" {
		t.Errorf("StepKind = %q, want tool", got)
	}

	sys := Normalize(source.Record{"type": "file-history-snapshot", "snapshot": map[string]any{}})
	if got := StepKind(sys); got != "system" {
		t.Errorf("StepKind = %q, want system", got)
	}
}

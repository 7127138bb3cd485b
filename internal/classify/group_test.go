package classify

import (
	"testing"

	"ccexport/internal/source"
)

func primaryEvent(text string) Event {
	return Normalize(source.Record{
		"type":    "user",
		"message": map[string]any{"content": text},
	})
}

func toolEvent(name string) Event {
	return Normalize(source.Record{"type": "assistant", "tool_name": name})
}

func agentEvent(agentID string) Event {
	return Normalize(source.Record{"type": "assistant", "agentId": agentID})
}

func TestGroupEvents_PrimaryEventsStandalone(t *testing.T) {
	events := []Event{primaryEvent("one"), primaryEvent("two")}
	blocks := GroupEvents(events)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	for i, b := range blocks {
		if b.Primary == nil {
			t.Errorf("block %d has nil Primary", i)
		}
		if b.Category != CategoryPrimary {
			t.Errorf("block %d Category = %q", i, b.Category)
		}
	}
}

func TestGroupEvents_ContiguousSecondaryRunsCollapse(t *testing.T) {
	events := []Event{
		primaryEvent("ask"),
		toolEvent("Bash"),
		toolEvent("Bash"),
		toolEvent("Read"),
		primaryEvent("answer"),
	}
	blocks := GroupEvents(events)
	if len(blocks) != 4 {
		t.Fatalf("len(blocks) = %d, want 4: %+v", len(blocks), blocks)
	}

	run := blocks[1]
	if run.Primary != nil || run.Category != CategoryTool {
		t.Fatalf("blocks[1] = %+v, want tool run", run)
	}
	if len(run.Events) != 2 || run.GroupKey != "bash" {
		t.Errorf("bash run: %d events, key %q", len(run.Events), run.GroupKey)
	}
	if blocks[2].GroupKey != "read" {
		t.Errorf("blocks[2] key = %q, want read", blocks[2].GroupKey)
	}
}

func TestGroupEvents_SubagentKeySplitsByAgent(t *testing.T) {
	events := []Event{
		agentEvent("a1"),
		agentEvent("a1"),
		agentEvent("a2"),
	}
	blocks := GroupEvents(events)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].GroupKey != "agent:a1" || len(blocks[0].Events) != 2 {
		t.Errorf("blocks[0] = key %q, %d events", blocks[0].GroupKey, len(blocks[0].Events))
	}
	if blocks[1].GroupKey != "agent:a2" {
		t.Errorf("blocks[1] key = %q", blocks[1].GroupKey)
	}
}

func TestGroupEvents_SubagentFileFallbackKey(t *testing.T) {
	rec := source.Record{
		"type":                "other-thing",
		"subagent":            true,
		source.KeySourceFile: "/logs/subagents/agent-1.jsonl",
	}
	e := Normalize(rec)
	if e.Category != CategorySubagent {
		t.Fatalf("Category = %q, want subagent", e.Category)
	}
	blocks := GroupEvents([]Event{e})
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d", len(blocks))
	}
	if got := blocks[0].GroupKey; got != "file:/logs/subagents/agent-1.jsonl" {
		t.Errorf("GroupKey = %q", got)
	}
}

// Primary events survive grouping unchanged and in order, whatever
// secondary events surround them.
func TestGroupEvents_PrimaryOrderPreserved(t *testing.T) {
	events := []Event{
		toolEvent("Bash"),
		primaryEvent("p1"),
		agentEvent("a1"),
		agentEvent("a1"),
		primaryEvent("p2"),
		toolEvent("Read"),
		primaryEvent("p3"),
	}
	blocks := GroupEvents(events)

	var got []string
	for _, b := range blocks {
		if b.Primary != nil {
			got = append(got, b.Primary.Text)
		}
	}
	want := []string{"p1", "p2", "p3"}
	if len(got) != len(want) {
		t.Fatalf("primary texts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("primary[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Every input event lands in exactly one block.
	total := 0
	for _, b := range blocks {
		if b.Primary != nil {
			total++
		} else {
			total += len(b.Events)
		}
	}
	if total != len(events) {
		t.Errorf("events across blocks = %d, want %d", total, len(events))
	}
}

func TestGroupSteps(t *testing.T) {
	events := []Event{
		Normalize(source.Record{"type": "user", "agentId": "a1", "message": map[string]any{"content": "task"}}),
		Normalize(source.Record{"type": "assistant", "agentId": "a1", "tool_name": "Bash"}),
		Normalize(source.Record{"type": "assistant", "agentId": "a1", "tool_name": "Bash"}),
		Normalize(source.Record{"type": "assistant", "agentId": "a1", "message": map[string]any{"content": "done"}}),
	}
	groups := GroupSteps(events)
	if len(groups) != 3 {
		t.Fatalf("len(groups) = %d, want 3: %+v", len(groups), groups)
	}
	if groups[0].Kind != "message" {
		t.Errorf("groups[0].Kind = %q", groups[0].Kind)
	}
	if groups[1].Kind != "tool" || groups[1].Key != "bash" || len(groups[1].Events) != 2 {
		t.Errorf("groups[1] = %+v", groups[1])
	}
	if groups[2].Kind != "message" {
		t.Errorf("groups[2].Kind = %q", groups[2].Kind)
	}
}

func TestCallNameHint(t *testing.T) {
	events := []Event{
		toolEvent("Bash"), toolEvent("Read"), toolEvent("Bash"),
	}
	if got := CallNameHint(events); got != "Bash, Read" {
		t.Errorf("hint = %q, want Bash, Read", got)
	}

	events = []Event{
		toolEvent("A"), toolEvent("B"), toolEvent("C"), toolEvent("D"),
	}
	if got := CallNameHint(events); got != "A, B, C..." {
		t.Errorf("hint = %q, want truncated list", got)
	}

	if got := CallNameHint(nil); got != "" {
		t.Errorf("hint = %q, want empty", got)
	}
}

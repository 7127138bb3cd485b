package classify

import (
	"path/filepath"
	"strings"

	"ccexport/internal/source"
)

// Block is one display unit: either a single primary event or a contiguous
// run of secondary events sharing a (category, group key).
type Block struct {
	Primary  *Event // non-nil for primary blocks
	Category Category
	GroupKey string
	Events   []Event
}

// StepGroup is a nested run inside a subagent block, keyed by the finer
// step kind (and call name for tool/mcp/skill steps).
type StepGroup struct {
	Kind   string
	Key    string
	Events []Event
}

// GroupEvents walks the ordered event sequence once, emitting primary
// events as standalone blocks and collapsing contiguous same-category,
// same-key secondary events into group blocks.
func GroupEvents(events []Event) []Block {
	var blocks []Block
	var pending []Event
	var pendingCategory Category
	pendingKey := ""

	flush := func() {
		if len(pending) > 0 {
			blocks = append(blocks, Block{
				Category: pendingCategory,
				GroupKey: pendingKey,
				Events:   pending,
			})
		}
		pending = nil
		pendingCategory = ""
		pendingKey = ""
	}

	for _, e := range events {
		if !e.Secondary {
			flush()
			ev := e
			blocks = append(blocks, Block{Primary: &ev, Category: CategoryPrimary})
			continue
		}
		key := groupKey(e)
		if len(pending) > 0 && (pendingCategory != e.Category || pendingKey != key) {
			flush()
		}
		pendingCategory = e.Category
		pendingKey = key
		pending = append(pending, e)
	}
	flush()
	return blocks
}

// groupKey splits contiguous secondary events by concrete caller identity:
// flow name (falling back to the source file) for subagent runs, call name
// for tool/mcp/skill runs, and the empty key for system/other so those
// merge freely.
func groupKey(e Event) string {
	switch e.Category {
	case CategorySubagent:
		if flow := strings.ToLower(strings.TrimSpace(e.FlowName)); flow != "" {
			return flow
		}
		if file := e.Raw.Str(source.KeySourceFile); file != "" {
			if abs, err := filepath.Abs(file); err == nil {
				file = abs
			}
			return "file:" + file
		}
		return "subagent"
	case CategoryTool, CategoryMCP, CategorySkill:
		return strings.ToLower(strings.TrimSpace(e.CallName))
	default:
		return ""
	}
}

// GroupSteps applies a second contiguous-run pass inside a finalized
// subagent block, using the step kind plus call name so per-step detail
// stays visible behind collapsible boundaries.
func GroupSteps(events []Event) []StepGroup {
	var groups []StepGroup
	var pending []Event
	pendingKind := ""
	pendingKey := ""

	flush := func() {
		if len(pending) > 0 {
			groups = append(groups, StepGroup{
				Kind:   pendingKind,
				Key:    pendingKey,
				Events: pending,
			})
		}
		pending = nil
		pendingKind = ""
		pendingKey = ""
	}

	for _, e := range events {
		kind := StepKind(e)
		key := ""
		switch kind {
		case "tool", "mcp", "skill":
			key = strings.ToLower(strings.TrimSpace(e.CallName))
		}
		if len(pending) > 0 && (pendingKind != kind || pendingKey != key) {
			flush()
		}
		pendingKind = kind
		pendingKey = key
		pending = append(pending, e)
	}
	flush()
	return groups
}

// CallNameHint returns up to three distinct non-empty call names from a
// run, joined for display, with "..." when more exist.
func CallNameHint(events []Event) string {
	var uniq []string
	seen := make(map[string]bool)
	for _, e := range events {
		name := strings.TrimSpace(e.CallName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		uniq = append(uniq, name)
	}
	if len(uniq) == 0 {
		return ""
	}
	hint := strings.Join(uniq[:min(3, len(uniq))], ", ")
	if len(uniq) > 3 {
		hint += "..."
	}
	return hint
}

// FlowNameOf returns the first non-empty flow name in a run.
func FlowNameOf(events []Event) string {
	for _, e := range events {
		if flow := strings.TrimSpace(e.FlowName); flow != "" {
			return flow
		}
	}
	return ""
}

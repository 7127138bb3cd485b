// Package export renders selected conversations into one self-contained
// HTML document and resolves where to write it.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"ccexport/internal/classify"
)

// Section is one selected conversation: its display label (the primary
// transcript path) and its ordered display blocks.
type Section struct {
	Path   string
	Blocks []classify.Block
}

// Document is the full render input.
type Document struct {
	Title    string
	Source   string
	Sections []sectionView
}

// Render writes the complete HTML document for the selected units.
func Render(w io.Writer, title, sourcePath string, sections []Section) error {
	doc := Document{Title: title, Source: sourcePath}
	for _, s := range sections {
		doc.Sections = append(doc.Sections, buildSectionView(s))
	}
	return pageTemplate.Execute(w, doc)
}

// ── Render model ────────────────────────────────────────────────

type sectionView struct {
	Path   string
	Blocks []blockView
}

type blockView struct {
	Primary *stepView // set for primary blocks

	// Secondary group fields
	Category  string
	Count     int
	NameHint  string
	FlowHint  string
	Steps     []stepView      // flat steps (non-subagent groups)
	SubGroups []subGroupView  // nested step-kind runs (subagent groups)
}

type subGroupView struct {
	Kind     string
	Count    int
	NameHint string
	Message  bool // message runs render inline, without an inner details
	Steps    []stepView
}

type stepView struct {
	Badge     string
	Role      string
	RoleClass string
	Timestamp string
	Text      string
	Long      bool
	CallName  string
	RawJSON   string
}

const (
	longTextChars = 900
	longTextLines = 20
)

func buildSectionView(s Section) sectionView {
	view := sectionView{Path: s.Path}
	for _, b := range s.Blocks {
		view.Blocks = append(view.Blocks, buildBlockView(b))
	}
	return view
}

func buildBlockView(b classify.Block) blockView {
	if b.Primary != nil {
		sv := buildStepView(*b.Primary, "")
		return blockView{Primary: &sv}
	}

	view := blockView{
		Category: string(b.Category),
		Count:    len(b.Events),
	}

	if b.Category == classify.CategorySubagent {
		view.FlowHint = classify.FlowNameOf(b.Events)
		for _, g := range classify.GroupSteps(b.Events) {
			sub := subGroupView{
				Kind:     g.Kind,
				Count:    len(g.Events),
				NameHint: classify.CallNameHint(g.Events),
				Message:  g.Kind == "message",
			}
			badge := g.Kind
			if sub.Message {
				badge = "subagent"
			}
			for _, e := range g.Events {
				sub.Steps = append(sub.Steps, buildStepView(e, badge))
			}
			view.SubGroups = append(view.SubGroups, sub)
		}
		return view
	}

	view.NameHint = classify.CallNameHint(b.Events)
	for _, e := range b.Events {
		view.Steps = append(view.Steps, buildStepView(e, string(e.Category)))
	}
	return view
}

func buildStepView(e classify.Event, badge string) stepView {
	text := strings.TrimSpace(e.Text)
	if badge != "" && text == "" {
		text = "(empty)"
	}
	return stepView{
		Badge:     badge,
		Role:      capitalize(e.Role),
		RoleClass: roleClass(e.Role),
		Timestamp: e.Timestamp,
		Text:      text,
		Long:      isLongText(text),
		CallName:  strings.TrimSpace(e.CallName),
		RawJSON:   rawJSON(e),
	}
}

func rawJSON(e classify.Event) string {
	data, err := json.MarshalIndent(map[string]any(e.Raw), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", e.Raw)
	}
	return string(data)
}

// isLongText decides whether a body gets the clamped-with-expander layout.
func isLongText(text string) bool {
	if len(text) > longTextChars {
		return true
	}
	return strings.Count(text, "\n")+1 > longTextLines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// roleClass restricts the CSS role class to the known palette.
func roleClass(role string) string {
	switch role {
	case "user", "assistant", "system", "subagent", "skill", "mcp", "tool":
		return role
	default:
		return "other"
	}
}

var pageTemplate = template.Must(template.New("page").Parse(pageTmpl))

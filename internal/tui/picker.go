package tui

import (
	"fmt"
	"sort"
	"strings"

	"ccexport/internal/cli"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Picker is the Bubble Tea model for conversation selection. Its state
// machine has three modes: browsing (default), filtering (text-entry
// overlay), and terminal (confirmed or cancelled, no further input).
type Picker struct {
	rows     []Row
	pageSize int

	page   int
	cursor int // position within the current page

	selected map[int]bool // keyed by Row.Index

	filtering   bool
	filterInput textinput.Model
	query       string

	notice string

	done      bool
	cancelled bool
	result    []int

	width  int
	height int
}

// NewPicker builds a picker over rows with a fixed page size.
func NewPicker(rows []Row, pageSize int) Picker {
	if pageSize < 1 {
		pageSize = 15
	}
	return Picker{
		rows:     rows,
		pageSize: pageSize,
		selected: make(map[int]bool),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Result returns the confirmed selection (sorted 1-based indices) and
// whether the picker finished with a confirmation rather than a cancel.
func (p Picker) Result() ([]int, bool) {
	if p.cancelled || len(p.result) == 0 {
		return nil, false
	}
	return p.result, true
}

// visible returns the filtered rows and the slice shown on the current
// page, clamping page and cursor. Filtering is recomputed every time: it is
// never destructive to the full row set.
func (p *Picker) visible() (filtered, pageRows []Row) {
	filtered = filterRows(p.rows, p.query)

	totalPages := (len(filtered) + p.pageSize - 1) / p.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if p.page > totalPages-1 {
		p.page = totalPages - 1
	}
	if p.page < 0 {
		p.page = 0
	}

	start := p.page * p.pageSize
	end := start + p.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}
	pageRows = filtered[start:end]

	if len(pageRows) == 0 {
		p.cursor = 0
	} else if p.cursor > len(pageRows)-1 {
		p.cursor = len(pageRows) - 1
	} else if p.cursor < 0 {
		p.cursor = 0
	}
	return filtered, pageRows
}

func (p *Picker) totalPages() int {
	filtered := filterRows(p.rows, p.query)
	n := (len(filtered) + p.pageSize - 1) / p.pageSize
	if n < 1 {
		n = 1
	}
	return n
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		if p.done {
			return p, nil
		}
		if p.filtering {
			return p.updateFiltering(msg)
		}
		return p.updateBrowsing(msg)
	}
	return p, nil
}

func (p Picker) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, pageRows := p.visible()
	p.notice = ""

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		p.done = true
		p.cancelled = true
		return p, tea.Quit

	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil

	case "down", "j":
		if p.cursor < len(pageRows)-1 {
			p.cursor++
		}
		return p, nil

	case "n", "pgdown":
		if p.page < p.totalPages()-1 {
			p.page++
			p.cursor = 0
		}
		return p, nil

	case "p", "pgup":
		if p.page > 0 {
			p.page--
			p.cursor = 0
		}
		return p, nil

	case " ", "enter":
		if len(pageRows) > 0 {
			idx := pageRows[p.cursor].Index
			if p.selected[idx] {
				delete(p.selected, idx)
			} else {
				p.selected[idx] = true
			}
		}
		return p, nil

	case "a":
		for _, r := range pageRows {
			p.selected[r.Index] = true
		}
		return p, nil

	case "c":
		p.selected = make(map[int]bool)
		return p, nil

	case "/":
		p.filtering = true
		p.filterInput = newFilterInput(p.query)
		return p, textinput.Blink

	case "e":
		if len(p.selected) == 0 {
			p.notice = "No selection yet. Press Enter/Space to select items first."
			return p, nil
		}
		p.result = sortedKeys(p.selected)
		p.done = true
		return p, tea.Quit
	}

	return p, nil
}

func (p Picker) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		p.query = strings.TrimSpace(p.filterInput.Value())
		p.filtering = false
		p.page = 0
		p.cursor = 0
		return p, nil

	case "esc":
		// Cancel text entry, keep the previous query.
		p.filtering = false
		return p, nil
	}

	var cmd tea.Cmd
	p.filterInput, cmd = p.filterInput.Update(msg)
	return p, cmd
}

func newFilterInput(initial string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Filter> "
	ti.CharLimit = 128
	ti.SetValue(initial)
	ti.Focus()
	return ti
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Run starts the picker on the terminal and blocks until a terminal state.
// It returns the sorted selected indices, or ErrCancelled when the user
// quit without exporting.
func Run(rows []Row, pageSize int) ([]int, error) {
	prog := tea.NewProgram(NewPicker(rows, pageSize), tea.WithAltScreen())
	m, err := prog.Run()
	if err != nil {
		return nil, cli.WrapUser("failed to initialize terminal UI", err)
	}

	picker, ok := m.(Picker)
	if !ok {
		return nil, cli.Errorf("terminal UI returned unexpected state")
	}
	result, confirmed := picker.Result()
	if !confirmed {
		return nil, cli.ErrCancelled
	}
	return result, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.done {
		return ""
	}

	filtered, pageRows := p.visible()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Claude Conversation Exporter"))
	b.WriteString("\n")

	queryLabel := p.query
	if queryLabel == "" {
		queryLabel = "(none)"
	}
	meta := fmt.Sprintf("Search: %s | Total: %d | Visible: %d | Selected: %d | Page: %d/%d",
		queryLabel, len(p.rows), len(filtered), len(p.selected), p.page+1, p.totalPages())
	b.WriteString(metaStyle.Render(p.fit(meta)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render(p.fit(
		"ID  Sel  Events  P/S      Updated           Preview                              Path")))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(p.fit("Events=all  P/S=primary/secondary")))
	b.WriteString("\n")

	for i, row := range pageRows {
		marker := "[ ]"
		if p.selected[row.Index] {
			marker = "[x]"
		}
		ps := fmt.Sprintf("%d/%d", row.PrimaryEvents, row.SecondaryEvents)
		line := fmt.Sprintf("%2d  %s  %6d  %-7s  %-16s  %-35s  %-30s",
			row.Index, marker, row.Events, ps, row.Mtime,
			cli.Truncate(row.Preview, 35),
			cli.CompressMiddle(row.RelPath, 30),
		)
		line = p.fit(line)
		switch {
		case i == p.cursor:
			b.WriteString(cursorStyle.Render(line))
		case p.selected[row.Index]:
			b.WriteString(selectedStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	if len(pageRows) == 0 {
		b.WriteString(dimStyle.Render("  (no matching conversations)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(p.fit(
		"up/down move  n/p page  enter/space toggle  / filter  a all-visible  c clear")))
	b.WriteString("\n")
	if p.filtering {
		b.WriteString(p.filterInput.View())
	} else if p.notice != "" {
		b.WriteString(noticeStyle.Render(p.fit(p.notice)))
	} else {
		b.WriteString(metaStyle.Render(p.fit("Actions: [N]ext page  [P]rev page  [E]xport selected  [Q]uit")))
	}

	return b.String()
}

// fit truncates a line to the terminal width when known.
func (p Picker) fit(line string) string {
	if p.width <= 0 {
		return line
	}
	return cli.Truncate(line, p.width-1)
}

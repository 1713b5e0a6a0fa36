// Package ui provides the interactive terminal board.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"todolist/internal/models"
	"todolist/internal/service"
	"todolist/internal/tasklist"
)

const columnWidth = 30

type viewMode int

const (
	modeBoard viewMode = iota
	modeList
)

// RunBoard opens the board over svc and blocks until the user quits.
func RunBoard(ctx context.Context, svc service.TaskService) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("board requires a TTY")
	}

	status := &StatusLine{}
	model := newBoardModel(ctx, tasklist.New(svc, status), status)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// StatusLine is the board's notifier: it keeps the latest notice for display.
type StatusLine struct {
	mu    sync.Mutex
	text  string
	isErr bool
}

func (s *StatusLine) ShowSuccess(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.isErr = message, false
}

func (s *StatusLine) ShowError(title, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.isErr = title+": "+message, true
}

// Text returns the latest notice and whether it was an error.
func (s *StatusLine) Text() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, s.isErr
}

type boardModel struct {
	ctx    context.Context
	store  *tasklist.Store
	status *StatusLine
	now    func() time.Time

	mode     viewMode
	col      int
	row      int
	cursor   int
	busy     bool
	loaded   bool
	showHelp bool
}

// doneMsg reports that a store operation finished.
type doneMsg struct{}

func newBoardModel(ctx context.Context, store *tasklist.Store, status *StatusLine) *boardModel {
	return &boardModel{
		ctx:    ctx,
		store:  store,
		status: status,
		now:    time.Now,
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.do(func() { m.store.Refresh(m.ctx) })
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.busy = false
		m.loaded = true
		m.clamp()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "tab":
		if m.mode == modeBoard {
			m.mode = modeList
		} else {
			m.mode = modeBoard
		}
		m.clamp()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "left", "h":
		if m.mode == modeBoard {
			m.col--
			m.clamp()
		}
		return m, nil
	case "right", "l":
		if m.mode == modeBoard {
			m.col++
			m.clamp()
		}
		return m, nil
	}

	// Everything below talks to the service; one operation at a time.
	if m.busy {
		return m, nil
	}

	switch key {
	case "r", "f5":
		return m, m.do(func() { m.store.Refresh(m.ctx) })
	case "0":
		return m, m.do(func() { m.store.SetFilter(m.ctx, "") })
	case "1", "2", "3", "4":
		status := models.Statuses[int(key[0]-'1')]
		return m, m.do(func() { m.store.SetFilter(m.ctx, status) })
	}

	task, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch key {
	case "c":
		return m, m.do(func() { m.store.Complete(m.ctx, task.ID) })
	case "x", "delete":
		return m, m.do(func() { m.store.Delete(m.ctx, task.ID) })
	case "<", ">":
		next, ok := shiftStatus(task.Status, key == ">")
		if !ok {
			return m, nil
		}
		return m, m.do(func() { m.store.ChangeStatus(m.ctx, task.ID, next) })
	}
	return m, nil
}

// do runs op off the update loop and reports back with doneMsg.
func (m *boardModel) do(op func()) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		op()
		return doneMsg{}
	}
}

func (m *boardModel) moveCursor(delta int) {
	if m.mode == modeBoard {
		m.row += delta
	} else {
		m.cursor += delta
	}
	m.clamp()
}

// clamp keeps the cursors inside the loaded data.
func (m *boardModel) clamp() {
	m.col = clampInt(m.col, 0, len(models.Statuses)-1)
	cols := m.store.Columns()
	m.row = clampInt(m.row, 0, len(cols[m.col].Tasks)-1)
	m.cursor = clampInt(m.cursor, 0, len(m.store.Tasks())-1)
}

func (m *boardModel) selected() (models.Task, bool) {
	if m.mode == modeBoard {
		tasks := m.store.Columns()[m.col].Tasks
		if m.row < len(tasks) {
			return tasks[m.row], true
		}
		return models.Task{}, false
	}
	tasks := m.store.Tasks()
	if m.cursor < len(tasks) {
		return tasks[m.cursor], true
	}
	return models.Task{}, false
}

func (m *boardModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	if filter := m.store.Filter(); filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", filter.Label()))
	}

	if !m.loaded {
		b.WriteString("Loading...\n\n")
	} else if m.mode == modeBoard {
		m.writeBoard(&b)
	} else {
		m.writeList(&b)
	}

	if text, isErr := m.status.Text(); text != "" {
		if isErr {
			b.WriteString("! ")
		}
		b.WriteString(text + "\n\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func (m *boardModel) writeBoard(b *strings.Builder) {
	cols := m.store.Columns()

	height := 0
	for i, col := range cols {
		header := fmt.Sprintf("%s (%d)", col.Status.Label(), len(col.Tasks))
		if i == m.col {
			header = "[" + header + "]"
		}
		b.WriteString(pad(header, columnWidth))
		if len(col.Tasks) > height {
			height = len(col.Tasks)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", columnWidth*len(cols)) + "\n")

	for r := 0; r < height; r++ {
		for c, col := range cols {
			cell := ""
			if r < len(col.Tasks) {
				marker := " "
				if c == m.col && r == m.row {
					marker = ">"
				}
				cell = fmt.Sprintf("%s #%d %s", marker, col.Tasks[r].ID, col.Tasks[r].Title)
			}
			b.WriteString(pad(cell, columnWidth))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *boardModel) writeList(b *strings.Builder) {
	tasks := m.store.Tasks()
	if len(tasks) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	now := m.now()
	for i, task := range tasks {
		b.WriteString(formatTask(&task, i == m.cursor, now))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeTitle(b *strings.Builder) {
	title := "Todo List"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  tab          Switch between board and list\n")
	b.WriteString("  arrows/hjkl  Move the cursor\n")
	b.WriteString("  < >          Move task to previous/next status\n")
	b.WriteString("  c            Complete task\n")
	b.WriteString("  x            Delete task\n")
	b.WriteString("  1-4          Filter by Pending/In progress/Completed/Cancelled\n")
	b.WriteString("  0            Clear filter\n")
	b.WriteString("  r, F5        Refresh\n")
	b.WriteString("  ?            Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder, mode viewMode) {
	name := "board"
	if mode == modeList {
		name = "list"
	}
	b.WriteString(fmt.Sprintf("[%s] ? for help | tab to switch view | q to quit\n", name))
}

func formatTask(t *models.Task, selected bool, now time.Time) string {
	marker := " "
	if selected {
		marker = ">"
	}

	icon := " "
	switch t.Status {
	case models.StatusInProgress:
		icon = "~"
	case models.StatusCompleted:
		icon = "x"
	case models.StatusCancelled:
		icon = "-"
	}

	line := fmt.Sprintf("%s [%s] #%d %s", marker, icon, t.ID, t.Title)
	if t.IsOverdue(now) {
		line += "  (overdue)"
	}
	if desc := t.DescriptionText(); desc != "" {
		if r := []rune(desc); len(r) > 60 {
			desc = string(r[:57]) + "..."
		}
		line += "\n        " + desc
	}
	return line
}

// shiftStatus returns the neighbouring status in board order.
func shiftStatus(s models.Status, forward bool) (models.Status, bool) {
	i := statusIndex(s)
	if forward {
		i++
	} else {
		i--
	}
	if i < 0 || i >= len(models.Statuses) {
		return s, false
	}
	return models.Statuses[i], true
}

func statusIndex(s models.Status) int {
	for i, status := range models.Statuses {
		if status == s {
			return i
		}
	}
	return 0
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width-4]) + "... "
	}
	return s + strings.Repeat(" ", width-len(r))
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

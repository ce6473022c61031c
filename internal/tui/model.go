package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"momentum/internal/engine"
	"momentum/internal/storage"
	"momentum/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string

	width  int
	height int

	profile *engine.ProfileView
	tasks   []storage.Task

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	profile *engine.ProfileView
	tasks   []storage.Task
	err     error
}

type completedMsg struct {
	id  string
	res *engine.CompleteResult
	err error
}

type startedMsg struct {
	id  string
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID string) boardModel {
	if userID == "" {
		userID = engine.DefaultUserID
	}
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.svc.GetProfile(m.ctx, m.userID)
		if err != nil {
			return loadedMsg{err: err}
		}
		tasks, err := m.svc.ListTasks(m.ctx, m.userID, "")
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{profile: p, tasks: tasks}
	}
}

func (m boardModel) completeCmd(id string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.CompleteTask(m.ctx, m.userID, id)
		return completedMsg{id: id, res: res, err: err}
	}
}

func (m boardModel) startCmd(id string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.StartTask(m.ctx, m.userID, id)
		return startedMsg{id: id, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.profile = msg.profile
		m.tasks = msg.tasks
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case completedMsg:
		if msg.err != nil {
			m.lastLog = "Complete failed: " + msg.err.Error()
			return m, nil
		}
		log := fmt.Sprintf("Done: +%d XP, streak %d", msg.res.XPAwarded, msg.res.CurrentStreak)
		if msg.res.LevelUp {
			log += fmt.Sprintf(", level %d!", msg.res.NewLevel)
		}
		for _, a := range msg.res.NewAchievements {
			log += fmt.Sprintf(" %s %s", a.Icon, a.Name)
		}
		m.lastLog = log
		return m, m.loadCmd()
	case startedMsg:
		if msg.err != nil {
			m.lastLog = "Start failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = "Started."
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			rows := m.boardRows()
			if m.selected < len(rows)-1 {
				m.selected++
			}
			return m, nil
		case "s":
			t := m.selectedTask()
			if t == nil {
				return m, nil
			}
			if t.Status != string(engine.StatusTodo) {
				m.lastLog = "Only tasks in the todo column can be started."
				return m, nil
			}
			m.lastLog = "Starting…"
			return m, m.startCmd(t.ID)
		case "c", " ":
			t := m.selectedTask()
			if t == nil {
				return m, nil
			}
			if t.Status == string(engine.StatusDone) {
				m.lastLog = "Already done."
				return m, nil
			}
			m.lastLog = "Completing…"
			return m, m.completeCmd(t.ID)
		}
	}
	return m, nil
}

type boardRow struct {
	taskIdx  int // index into m.tasks, -1 for section headers
	heading  string
	isHeader bool
}

// boardRows flattens the board into selectable rows, grouped by status
// column in board order.
func (m boardModel) boardRows() []boardRow {
	var out []boardRow
	for _, st := range []engine.Status{engine.StatusInProgress, engine.StatusTodo, engine.StatusDone} {
		var idxs []int
		for i := range m.tasks {
			if m.tasks[i].Status == string(st) {
				idxs = append(idxs, i)
			}
		}
		if len(idxs) == 0 {
			continue
		}
		out = append(out, boardRow{taskIdx: -1, heading: ui.StatusText(string(st)), isHeader: true})
		for _, i := range idxs {
			out = append(out, boardRow{taskIdx: i})
		}
	}
	return out
}

func (m boardModel) selectableRows() []boardRow {
	all := m.boardRows()
	rows := make([]boardRow, 0, len(all))
	for _, r := range all {
		if !r.isHeader {
			rows = append(rows, r)
		}
	}
	return rows
}

func (m boardModel) selectedTask() *storage.Task {
	rows := m.selectableRows()
	if len(rows) == 0 {
		return nil
	}
	sel := m.selected
	if sel >= len(rows) {
		sel = len(rows) - 1
	}
	if sel < 0 {
		sel = 0
	}
	return &m.tasks[rows[sel].taskIdx]
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.profile == nil {
		return "Momentum — loading…"
	}
	bar := ui.ProgressBar(m.profile.XPInLevel, m.profile.XPInLevel+m.profile.XPToNextLevel, 30)
	return fmt.Sprintf("Momentum | Level %d | XP %d %s", m.profile.CurrentLevel, m.profile.TotalXP, bar)
}

func (m boardModel) renderSidebar() string {
	if m.profile == nil {
		return "Stats\n\nLoading…"
	}
	lines := []string{"Stats"}
	lines = append(lines, fmt.Sprintf("- %s streak: %d", ui.IconFire, m.profile.CurrentStreak))
	lines = append(lines, fmt.Sprintf("- best: %d", m.profile.LongestStreak))
	lines = append(lines, fmt.Sprintf("- to next level: %d XP", m.profile.XPToNextLevel))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- s: start")
	lines = append(lines, "- c/space: complete")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	rows := m.boardRows()
	if len(rows) == 0 {
		return "Board\n\n(no tasks; add one with `mo add`)"
	}

	selectable := m.selectableRows()
	sel := m.selected
	if sel >= len(selectable) {
		sel = len(selectable) - 1
	}
	var selIdx = -1
	if sel >= 0 && sel < len(selectable) {
		selIdx = selectable[sel].taskIdx
	}

	out := []string{"Board"}
	for _, row := range rows {
		if row.isHeader {
			out = append(out, "")
			out = append(out, row.heading)
			continue
		}
		t := m.tasks[row.taskIdx]
		cursor := "  "
		if row.taskIdx == selIdx {
			cursor = "> "
		}
		out = append(out, fmt.Sprintf("%s%s %s (xp=%d)", cursor, ui.CategoryIcon(t.Category), t.Title, t.XPValue))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

package teaui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/cache"
	"github.com/rejonpardenilla/minderal/pkg/node"
	"github.com/rejonpardenilla/minderal/pkg/printers"
	"github.com/rejonpardenilla/minderal/pkg/runner/set"
	"github.com/rejonpardenilla/minderal/pkg/runner/tea/internal/bottombar"
	"github.com/rejonpardenilla/minderal/pkg/runner/tea/internal/theme"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// Model states
type mode int

const (
	modeNormal mode = iota
	modeKindSelect
	modeInsert
	modeEdit
	modeHelp
)

const (
	normalHelp = "j/k move, enter open, h up, o add, i edit, x toggle, +/- count, dd delete, ? help, q quit"
	ddWindow   = 500 * time.Millisecond
)

var helpLines = []string{
	"j, down      move down",
	"k, up        move up",
	"g, G         first, last",
	"enter, l     open node (toggles checkboxes and to-dos on enter)",
	"h, backspace go to parent",
	"o, a         add a child here",
	"i, e         edit the value of the node",
	"x, space     toggle checkbox or to-do",
	"+, -         change a counter",
	"dd           delete the node; its children are kept",
	"r            reload",
	"q, ctrl+c    quit",
}

// Model contains UI state
type Model struct {
	session *app.Session
	ctx     context.Context
	mode    mode

	snap   cache.Snapshot
	cursor int

	kinds     []widget.Widget
	kindIndex int
	editing   node.Node

	input  textinput.Model
	footer bottombar.Model
	theme  theme.Theme

	awaitingDD bool
	lastDTime  time.Time

	width  int
	height int
}

// New creates a UI model backed by the session.
func New(ctx context.Context, s *app.Session) Model {
	th := theme.Default()

	ti := textinput.New()
	ti.Placeholder = "Type here"
	ti.CharLimit = 1024
	ti.Prompt = "> "

	footer := bottombar.New(th.Footer)
	footer.SetHelp(normalHelp)

	kinds := widget.List()
	m := Model{
		session: s,
		ctx:     ctx,
		mode:    modeNormal,
		kinds:   kinds,
		input:   ti,
		footer:  footer,
		theme:   th,
		width:   80,
		height:  24,
	}
	if s != nil {
		m.snap = s.Snapshot()
	}
	m.footer.SetPendingWidget(m.kinds[m.kindIndex])
	return m
}

// messages
type errMsg struct{ err error }
type viewMsg struct{ snap cache.Snapshot }
type updatedMsg struct{ update cache.Updated }
type statusMsg struct {
	status string
	snap   cache.Snapshot
}

// Init selects the session's current node and starts following updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.selectCmd(m.snap.Selected.ID()), m.waitForUpdate())
}

func (m Model) selectCmd(id string) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		if err := s.Select(ctx, id); err != nil {
			return errMsg{err}
		}
		return viewMsg{s.Snapshot()}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		if err := s.Refresh(ctx); err != nil {
			return errMsg{err}
		}
		return viewMsg{s.Snapshot()}
	}
}

func (m Model) createCmd(value string, w widget.Widget) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		n, err := s.Create(ctx, value, w)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg{status: fmt.Sprintf("added %s %s", w.Label, printers.Describe(n.Content())), snap: s.Snapshot()}
	}
}

func (m Model) updateCmd(n node.Node, value any) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		if err := s.Update(ctx, &n, value); err != nil {
			return errMsg{err}
		}
		return statusMsg{status: "saved " + printers.Describe(n.Content()), snap: s.Snapshot()}
	}
}

func (m Model) deleteCmd(n node.Node) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		if err := s.DeleteNonCascading(ctx, n); err != nil {
			return errMsg{err}
		}
		return statusMsg{status: "deleted " + printers.Describe(n.Content()), snap: s.Snapshot()}
	}
}

// waitForUpdate blocks until the session applies a new view.
func (m Model) waitForUpdate() tea.Cmd {
	events, ctx := m.session.Events(), m.ctx
	return func() tea.Msg {
		select {
		case u, ok := <-events:
			if !ok {
				return nil
			}
			return updatedMsg{u}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages and keybindings
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case viewMsg:
		m.setSnapshot(msg.snap)
		return m, nil
	case statusMsg:
		m.setSnapshot(msg.snap)
		m.footer.SetStatus(msg.status)
		return m, nil
	case updatedMsg:
		if msg.update.Version > m.snap.Version {
			m.setSnapshot(m.session.Snapshot())
		}
		return m, m.waitForUpdate()
	case errMsg:
		m.footer.SetStatus(m.theme.Error.Render(msg.err.Error()))
		if m.session != nil {
			m.setSnapshot(m.session.Snapshot())
		}
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeKindSelect:
			return m.updateKindSelect(msg)
		case modeInsert, modeEdit:
			return m.updateInput(msg)
		case modeHelp:
			m.setMode(modeNormal)
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m *Model) setSnapshot(snap cache.Snapshot) {
	if snap.Version < m.snap.Version {
		return
	}
	if snap.Selected != m.snap.Selected {
		m.cursor = 0
	}
	m.snap = snap
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.snap.Children) {
		m.cursor = len(m.snap.Children) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setMode(md mode) {
	m.mode = md
	switch md {
	case modeKindSelect:
		m.footer.SetMode(bottombar.ModeKindSelect)
		m.footer.SetKinds(m.kinds, m.kindIndex)
		m.footer.SetHelp("←/→ choose kind, enter confirm, esc cancel")
	case modeInsert, modeEdit:
		m.footer.SetMode(bottombar.ModeInsert)
		m.footer.SetHelp("enter save, esc cancel")
	case modeHelp:
		m.footer.SetMode(bottombar.ModeHelp)
		m.footer.SetHelp("any key to close")
	default:
		m.footer.SetMode(bottombar.ModeNormal)
		m.footer.SetHelp(normalHelp)
		m.input.Blur()
		m.input.Reset()
	}
}

func (m Model) current() (node.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Children) {
		return node.Node{}, false
	}
	return m.snap.Children[m.cursor], true
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "d" {
		m.awaitingDD = false
	}
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.snap.Children) - 1
		m.clampCursor()
	case "enter":
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		if cmd := m.toggle(n); cmd != nil {
			return m, cmd
		}
		return m, m.selectCmd(n.ID)
	case "l", "right":
		if n, ok := m.current(); ok {
			return m, m.selectCmd(n.ID)
		}
	case "h", "left", "backspace":
		return m, m.selectCmd(m.parentID())
	case "o", "a":
		m.setMode(modeKindSelect)
	case "i", "e":
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		m.editing = n
		m.input.SetValue(editText(n))
		m.input.Placeholder = "value"
		m.input.Focus()
		m.setMode(modeEdit)
	case "x", " ":
		if n, ok := m.current(); ok {
			return m, m.toggle(n)
		}
	case "+", "-":
		n, ok := m.current()
		if !ok {
			return m, nil
		}
		c, isCounter := n.Content().(node.Counter)
		if !isCounter {
			return m, nil
		}
		delta := 1.0
		if key == "-" {
			delta = -1
		}
		return m, m.updateCmd(n, c.Count+delta)
	case "d":
		now := time.Now()
		if m.awaitingDD && now.Sub(m.lastDTime) <= ddWindow {
			m.awaitingDD = false
			if n, ok := m.current(); ok {
				return m, m.deleteCmd(n)
			}
			return m, nil
		}
		m.awaitingDD = true
		m.lastDTime = now
	case "r":
		return m, m.refreshCmd()
	case "?":
		m.setMode(modeHelp)
	}
	return m, nil
}

// toggle flips checkboxes and to-dos. It returns nil for other kinds.
func (m Model) toggle(n node.Node) tea.Cmd {
	switch c := n.Content().(type) {
	case node.Checkbox:
		return m.updateCmd(n, !c.Checked)
	case node.Todo:
		return m.updateCmd(n, !c.Done)
	}
	return nil
}

func (m Model) parentID() string {
	if len(m.snap.Path) < 2 {
		return ""
	}
	return m.snap.Path[len(m.snap.Path)-2].ID
}

func (m Model) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.setMode(modeNormal)
	case "left", "h", "shift+tab":
		m.kindIndex = (m.kindIndex - 1 + len(m.kinds)) % len(m.kinds)
		m.footer.SetKinds(m.kinds, m.kindIndex)
	case "right", "l", "tab":
		m.kindIndex = (m.kindIndex + 1) % len(m.kinds)
		m.footer.SetKinds(m.kinds, m.kindIndex)
	case "enter":
		w := m.kinds[m.kindIndex]
		m.footer.SetPendingWidget(w)
		m.input.Reset()
		if w.IsText() {
			m.input.Placeholder = "text"
		} else {
			m.input.Placeholder = strings.ToLower(w.Label) + " name"
		}
		m.input.Focus()
		m.setMode(modeInsert)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setMode(modeNormal)
		return m, nil
	case "enter":
		value := m.input.Value()
		md := m.mode
		m.setMode(modeNormal)
		if md == modeInsert {
			return m, m.createCmd(value, m.kinds[m.kindIndex])
		}
		return m, m.updateCmd(m.editing, set.ValueFor(m.editing, value))
	}
	// Cursor blinking is not used; the input's own commands are dropped.
	m.input, _ = m.input.Update(msg)
	return m, nil
}

// editText is the initial input when editing n.
func editText(n node.Node) string {
	switch c := n.Content().(type) {
	case node.Text:
		return c.Body
	case node.Link:
		return c.URL
	case node.Audio:
		return c.Source
	case node.Countdown:
		return c.Target
	case node.Counter:
		return strconv.FormatFloat(c.Count, 'f', -1, 64)
	case node.Checkbox:
		return strconv.FormatBool(c.Checked)
	case node.Todo:
		return strconv.FormatBool(c.Done)
	}
	return string(n.Value())
}

// View renders the breadcrumb, the children and the footer.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Header.Render(m.breadcrumb()))
	b.WriteString("\n\n")

	footer, footerLines := m.footer.View()
	rows := m.height - footerLines - 3
	if m.mode == modeInsert || m.mode == modeEdit {
		rows--
	}

	if m.mode == modeHelp {
		for _, l := range helpLines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.renderChildren(rows))
	}

	if m.mode == modeInsert || m.mode == modeEdit {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(footer)
	return b.String()
}

func (m Model) breadcrumb() string {
	parts := []string{"/"}
	for _, c := range m.snap.Path {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " › ")
}

func (m Model) renderChildren(rows int) string {
	if len(m.snap.Children) == 0 {
		return m.theme.Empty.Render("empty, press o to add") + "\n"
	}
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.snap.Children) {
		end = len(m.snap.Children)
	}

	width := uint(m.width)
	if width < 10 {
		width = 10
	}
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		n := m.snap.Children[i]
		symbol := "?"
		if w, ok := widget.Lookup(n.Kind()); ok {
			symbol = w.Symbol
		}
		text := truncate.StringWithTail(printers.Describe(n.Content()), width-2, "…")
		row := m.theme.Row
		if i == m.cursor {
			row = m.theme.Selected
		}
		lines = append(lines, m.theme.Symbol.Render(symbol)+" "+row.Render(text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// Run starts the browser and blocks until it exits.
func Run(ctx context.Context, s *app.Session) error {
	if s == nil {
		return errors.New("teaui: no session")
	}
	p := tea.NewProgram(New(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

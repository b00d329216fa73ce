package bottombar

import (
	"fmt"
	"strings"

	"github.com/rejonpardenilla/minderal/pkg/runner/tea/internal/theme"
	"github.com/rejonpardenilla/minderal/pkg/widget"
)

// Mode represents the UI mode that influences footer layout.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeKindSelect
	ModeHelp
)

// Model tracks footer/help/status rendering state.
type Model struct {
	mode       Mode
	helpLine   string
	statusLine string
	pending    widget.Widget
	kinds      []widget.Widget
	kindIndex  int
	styles     theme.FooterTheme
}

// New returns a footer model with sensible defaults.
func New(styles theme.FooterTheme) Model {
	return Model{
		mode:   ModeNormal,
		styles: styles,
	}
}

// SetMode updates the visual mode.
func (m *Model) SetMode(mode Mode) {
	m.mode = mode
}

// Mode reports the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// SetHelp sets the contextual help line.
func (m *Model) SetHelp(help string) {
	m.helpLine = help
}

// SetStatus sets the status message to display.
func (m *Model) SetStatus(status string) {
	m.statusLine = status
}

// Status returns the current status message.
func (m Model) Status() string {
	return m.statusLine
}

// SetPendingWidget shows which kind the next add will create.
func (m *Model) SetPendingWidget(w widget.Widget) {
	m.pending = w
}

// SetKinds configures the kind picker and its highlighted entry.
func (m *Model) SetKinds(kinds []widget.Widget, index int) {
	m.kinds = kinds
	m.kindIndex = index
}

// Height reports the number of lines consumed by the footer.
func (m Model) Height() int {
	if m.mode == ModeKindSelect {
		return 2
	}
	return 1
}

// View renders the footer string and reports lines consumed.
func (m Model) View() (string, int) {
	switch m.mode {
	case ModeKindSelect:
		return m.renderKinds() + "\n" + m.renderStatusLine(), 2
	default:
		return m.renderStatusLine(), 1
	}
}

func (m Model) renderStatusLine() string {
	var segments []string
	if m.helpLine != "" {
		segments = append(segments, m.styles.Help.Render(m.helpLine))
	}
	if m.statusLine != "" {
		segments = append(segments, m.styles.Status.Render(m.statusLine))
	}
	if m.pending.Index != "" {
		segments = append(segments, m.styles.Widget.Render(fmt.Sprintf("add %s %s", m.pending.Symbol, m.pending.Label)))
	}
	if len(segments) == 0 {
		return " "
	}
	return strings.Join(segments, " │ ")
}

func (m Model) renderKinds() string {
	parts := make([]string, 0, len(m.kinds))
	for i, k := range m.kinds {
		label := fmt.Sprintf(" %s %s ", k.Symbol, k.Label)
		if i == m.kindIndex {
			parts = append(parts, m.styles.KindSelected.Render(label))
		} else {
			parts = append(parts, m.styles.Kind.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

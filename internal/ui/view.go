package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/jex/internal/formatter"
	"github.com/oakwood-commons/jex/internal/pipeline"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// View renders the latest snapshot into the alt-screen frame.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *Model) render() string {
	var b strings.Builder
	b.WriteString(m.editorLine())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(m.resultPane())
	if popup := m.popupPane(); popup != "" {
		b.WriteByte('\n')
		b.WriteString(popup)
	}
	if m.cfg.ShowHints {
		b.WriteByte('\n')
		b.WriteString(m.truncate(m.st.dim.Render(hintLine(m.focus))))
	}
	return b.String()
}

// editorLine is the prompt, the expression input, and the spinner glyph at
// the right edge while work is in flight.
func (m *Model) editorLine() string {
	var prompt string
	if m.focus == focusEditor {
		prompt = m.st.accent.Render(m.cfg.PromptFocused)
	} else {
		prompt = m.st.dim.Render(m.cfg.PromptDefocused)
	}
	line := prompt + m.input.View()

	if m.snap.Spinner.Active {
		frame := spinnerFrames[m.snap.Spinner.Phase%len(spinnerFrames)]
		pad := m.width - lipgloss.Width(line) - runewidth.StringWidth(frame) - 1
		if pad > 0 {
			line += strings.Repeat(" ", pad) + m.st.accent.Render(frame)
		}
	}
	return m.truncate(line)
}

// statusLine reflects the latest outcome: errors verbatim, otherwise a row
// and stream count.
func (m *Model) statusLine() string {
	out := m.snap.Query.Outcome
	switch out.Kind {
	case pipeline.OutcomeEvalError:
		return m.truncate(m.st.errText.Render("error: " + out.Message))
	case pipeline.OutcomeEngineDown:
		return m.truncate(m.st.errText.Render("engine unavailable: " + out.Message))
	case pipeline.OutcomeEmpty:
		return m.truncate(m.st.dim.Render("no result"))
	case pipeline.OutcomePending:
		return m.truncate(m.st.dim.Render("…"))
	}
	status := fmt.Sprintf("%d rows", len(m.snap.Rows))
	if m.cfg.StreamCount > 1 {
		status += fmt.Sprintf(" · %d streams", m.cfg.StreamCount)
	}
	return m.truncate(m.st.dim.Render(status))
}

// resultPane renders the visible window over the formatted row list.
func (m *Model) resultPane() string {
	rows := m.snap.Rows
	vh := m.viewportHeight()
	lines := make([]string, 0, vh)
	for i := m.rowOffset; i < len(rows) && len(lines) < vh; i++ {
		lines = append(lines, m.renderRow(rows[i], m.focus == focusViewer && i == m.cursor))
	}
	for len(lines) < vh {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row formatter.Row, selected bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", row.Depth*m.cfg.Theme.Indent))
	if row.Key != "" {
		b.WriteString(m.st.key.Render(strconv.Quote(row.Key)))
		b.WriteString(": ")
	}
	b.WriteString(m.st.valueStyle(row.Kind).Render(m.linkify(row)))
	if row.Comma {
		b.WriteString(",")
	}
	line := m.truncate(b.String())
	if selected {
		pad := m.width - lipgloss.Width(line)
		if pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		line = m.st.selection.Render(line)
	}
	return line
}

// linkify wraps URL string values in an OSC-8 hyperlink.
func (m *Model) linkify(row formatter.Row) string {
	if row.Kind != formatter.KindString {
		return row.Text
	}
	url, err := strconv.Unquote(row.Text)
	if err != nil || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
		return row.Text
	}
	return ansi.SetHyperlink(url) + row.Text + ansi.ResetHyperlink()
}

// popupPane renders the suggestion window around the selection cursor.
func (m *Model) popupPane() string {
	n := m.popupLines()
	if n == 0 {
		return ""
	}
	page := m.snap.Suggestions
	start := 0
	if page.Cursor >= n {
		start = page.Cursor - n + 1
	}
	lines := make([]string, 0, n)
	for i := start; i < len(page.Candidates) && len(lines) < n; i++ {
		if i == page.Cursor {
			lines = append(lines, m.truncate(m.st.accent.Render("❯ ")+page.Candidates[i]))
		} else {
			lines = append(lines, m.truncate("  "+m.st.dim.Render(page.Candidates[i])))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) truncate(s string) string {
	return ansi.Truncate(s, m.width, "…")
}

package model

import (
	"strings"

	"github.com/palemoky/citychain/internal/ui/common"
)

// View renders the model.
func (m *OnlineModel) View() string {
	var sb strings.Builder

	sb.WriteString(common.TitleStyle(common.TitleText))
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(common.BoxStyle.Render(m.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(common.PromptStyle.Render(m.input.View()))

	if m.error != "" {
		sb.WriteString("\n")
		sb.WriteString(common.ErrorStyle.Render(m.error))
	}

	return common.DocStyle.Render(sb.String())
}

func (m *OnlineModel) statusLine() string {
	if m.myTurn {
		return common.TurnStyle.Render(common.TurnIcon + " Your turn!")
	}
	return common.StatusStyle.Render(common.IdleIcon + " " + m.phase.String() + " · PgUp/PgDn to scroll · Esc to quit")
}

// refreshLog re-renders the message log into the viewport and scrolls to the end.
func (m *OnlineModel) refreshLog() {
	rendered := make([]string, len(m.lines))
	for i, l := range m.lines {
		rendered[i] = renderLine(l)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewport.GotoBottom()
}

func renderLine(l logLine) string {
	switch l.style {
	case styleList:
		return common.ListStyle.Render(l.text)
	case styleError:
		return common.ErrorStyle.Render(l.text)
	case styleTurn:
		return common.TurnStyle.Render(l.text)
	case styleEcho:
		return common.StatusStyle.Render(l.text)
	default:
		return l.text
	}
}

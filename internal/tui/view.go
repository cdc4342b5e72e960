package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the current state of the model.
func (m Model) View() string {
	lines := make([]string, 0, len(m.items)+2)
	for i, it := range m.items {
		lines = append(lines, m.renderItem(i, it))
	}
	if m.err != "" {
		lines = append(lines, "", failureStyle.Render(m.err))
	}
	lines = append(lines, helpStyle.Render(m.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderItem(i int, it item) string {
	if it.kind == kindLabel {
		return labelStyle.Render(it.name)
	}

	cursor := "  "
	if i == m.focus {
		cursor = cursorStyle.Render("> ")
	}

	switch it.kind {
	case kindScroll:
		return cursor + nameStyle.Render(it.name+": ") + it.value() + ansi.ResetStyle
	case kindString:
		return cursor + nameStyle.Render(it.name+": ") + it.input.View()
	default:
		return cursor + buttonStyle.Render(it.name)
	}
}

func (m Model) helpLine() string {
	var parts []string
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

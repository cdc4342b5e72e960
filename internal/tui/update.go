package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.QuitMsg:
		if !m.submitted {
			m.cancelled = true
		}
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	current := m.items[m.focus]

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		cmd := m.setFocus(m.next(m.focus, -1))
		return m, cmd
	case key.Matches(msg, m.keys.Down):
		cmd := m.setFocus(m.next(m.focus, 1))
		return m, cmd
	}

	switch current.kind {
	case kindScroll:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycle(-1)
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Enter):
			m.cycle(1)
		}
		return m, nil
	case kindButton:
		if key.Matches(msg, m.keys.Enter) {
			return m.submit()
		}
		return m, nil
	case kindString:
		if key.Matches(msg, m.keys.Enter) {
			cmd := m.setFocus(m.next(m.focus, 1))
			return m, cmd
		}
		m.err = ""
		return m.forward(msg)
	}

	return m, nil
}

func (m *Model) cycle(dir int) {
	it := &m.items[m.focus]
	if len(it.values) == 0 {
		return
	}
	n := len(it.values)
	it.index = ((it.index+dir)%n + n) % n
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	for i, it := range m.items {
		if it.kind == kindString && !it.allowEmpty && it.input.Value() == "" {
			m.err = fmt.Sprintf("%s must not be empty", it.name)
			cmd := m.setFocus(i)
			return m, cmd
		}
		if it.kind == kindScroll && len(it.values) == 0 {
			m.err = fmt.Sprintf("%s has no values to choose from", it.name)
			return m, nil
		}
	}
	m.err = ""
	m.submitted = true
	return m, tea.Quit
}

// forward passes msg to the focused text input, if any.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus < 0 || m.items[m.focus].kind != kindString {
		return m, nil
	}
	var cmd tea.Cmd
	m.items[m.focus].input, cmd = m.items[m.focus].input.Update(msg)
	return m, cmd
}

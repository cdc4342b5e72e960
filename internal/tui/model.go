// Package tui renders the interactive form that collects a new entry's fields.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/alexisbeaulieu97/add-entry/internal/entry"
	"github.com/alexisbeaulieu97/add-entry/internal/theme"
)

// Header lines shown above the form.
var Header = []string{"-----------------", "Make a new entry!", "-----------------"}

// SubmitLabel is the text of the submit button.
const SubmitLabel = "enter!"

// Field names, in form order.
const (
	FieldSection = "section"
	FieldTitle   = "title"
	FieldType    = "type"
	FieldDate    = "date"
	FieldAuthor  = "author"
	FieldWitness = "witness"
)

type itemKind int

const (
	kindLabel itemKind = iota
	kindScroll
	kindString
	kindButton
)

type item struct {
	kind       itemKind
	name       string
	values     []string
	index      int
	input      textinput.Model
	allowEmpty bool
}

func (it item) selectable() bool {
	return it.kind != kindLabel
}

func (it item) value() string {
	switch it.kind {
	case kindScroll:
		if len(it.values) == 0 {
			return ""
		}
		return it.values[it.index]
	case kindString:
		return it.input.Value()
	default:
		return it.name
	}
}

// Options seeds the form.
type Options struct {
	EntryTypes []theme.EntryType
	// Today is the date field's default.
	Today string
	// Author is the author field's default.
	Author string
}

// Model is the Bubbletea state of the entry form.
type Model struct {
	items     []item
	focus     int
	keys      keyMap
	err       string
	submitted bool
	cancelled bool
}

// NewModel builds the form with focus on the first selectable item.
func NewModel(opts Options) Model {
	types := make([]string, 0, len(opts.EntryTypes))
	for _, et := range opts.EntryTypes {
		types = append(types, et.Display())
	}

	items := make([]item, 0, len(Header)+7)
	for _, line := range Header {
		items = append(items, item{kind: kindLabel, name: line})
	}
	items = append(items,
		item{kind: kindScroll, name: FieldSection, values: entry.Sections},
		stringItem(FieldTitle, "", false),
		item{kind: kindScroll, name: FieldType, values: types},
		stringItem(FieldDate, opts.Today, false),
		stringItem(FieldAuthor, opts.Author, false),
		stringItem(FieldWitness, "", true),
		item{kind: kindButton, name: SubmitLabel},
	)

	m := Model{items: items, keys: defaultKeyMap, focus: -1}
	m.setFocus(m.next(-1, 1))
	return m
}

func stringItem(name, value string, allowEmpty bool) item {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0 // unlimited
	ti.SetValue(value)
	return item{kind: kindString, name: name, input: ti, allowEmpty: allowEmpty}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Submitted reports whether the user pressed the submit button with a valid form.
func (m Model) Submitted() bool {
	return m.submitted
}

// Cancelled reports whether the user left the form without submitting.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Focused returns the name of the focused item.
func (m Model) Focused() string {
	if m.focus < 0 || m.focus >= len(m.items) {
		return ""
	}
	return m.items[m.focus].name
}

// Value returns the current value of the named field.
func (m Model) Value(name string) string {
	for _, it := range m.items {
		if it.name == name && it.kind != kindLabel {
			return it.value()
		}
	}
	return ""
}

// Selection returns the submitted fields. The entry type has its color
// escape removed.
func (m Model) Selection() entry.Selection {
	return entry.Selection{
		Section:   m.Value(FieldSection),
		Title:     m.Value(FieldTitle),
		EntryType: ansi.Strip(m.Value(FieldType)),
		Date:      m.Value(FieldDate),
		Author:    m.Value(FieldAuthor),
		Witness:   m.Value(FieldWitness),
	}
}

// next returns the index of the next selectable item from start in
// direction dir, wrapping around.
func (m Model) next(start, dir int) int {
	n := len(m.items)
	for step := 1; step <= n; step++ {
		i := ((start+dir*step)%n + n) % n
		if m.items[i].selectable() {
			return i
		}
	}
	return start
}

func (m *Model) setFocus(i int) tea.Cmd {
	if m.focus >= 0 && m.focus < len(m.items) && m.items[m.focus].kind == kindString {
		m.items[m.focus].input.Blur()
	}
	m.focus = i
	if i >= 0 && i < len(m.items) && m.items[i].kind == kindString {
		return m.items[i].input.Focus()
	}
	return nil
}

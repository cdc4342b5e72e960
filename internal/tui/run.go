package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/add-entry/internal/entry"
)

var (
	// ErrCancelled is returned when the user leaves the form without submitting.
	ErrCancelled = errors.New("entry creation cancelled")
	// ErrNotTerminal is returned when the form cannot take over a terminal.
	ErrNotTerminal = errors.New("the entry form needs an interactive terminal")
	// ErrNoEntryTypes is returned when there is nothing to offer in the type field.
	ErrNoEntryTypes = errors.New("no entry types to choose from")
)

// Prompter collects a selection from the user.
type Prompter interface {
	Prompt(ctx context.Context, opts Options) (entry.Selection, error)
}

var isTerminal = term.IsTerminal

// TerminalPrompter shows the form full screen on a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out *os.File
}

var _ Prompter = TerminalPrompter{}

// Prompt runs the form until it is submitted or cancelled.
func (p TerminalPrompter) Prompt(ctx context.Context, opts Options) (entry.Selection, error) {
	if len(opts.EntryTypes) == 0 {
		return entry.Selection{}, ErrNoEntryTypes
	}

	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if !isTerminal(int(in.Fd())) || !isTerminal(int(out.Fd())) {
		return entry.Selection{}, ErrNotTerminal
	}

	return run(ctx, NewModel(opts), in, out, tea.WithAltScreen())
}

func run(ctx context.Context, m Model, in io.Reader, out io.Writer, extra ...tea.ProgramOption) (entry.Selection, error) {
	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	}, extra...)

	final, err := tea.NewProgram(m, opts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return entry.Selection{}, ctxErr
	}
	if err != nil {
		return entry.Selection{}, fmt.Errorf("run entry form: %w", err)
	}

	result, ok := final.(Model)
	if !ok || !result.Submitted() {
		return entry.Selection{}, ErrCancelled
	}

	sel := result.Selection()
	if err := sel.Validate(); err != nil {
		return entry.Selection{}, err
	}
	return sel, nil
}

package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/add-entry/internal/config"
	"github.com/alexisbeaulieu97/add-entry/internal/entry"
	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/shell"
	"github.com/alexisbeaulieu97/add-entry/internal/tui"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

const radialCatalog = `[[
  ["radial", [["build", "rgb(\"#FF0000\")"], ["notes", "rgb(\"#00FF00\")"]]],
  ["polar", [["test", {"color": "rgb(\"#0000FF\")"}]]]
]]`

const radialMain = `#import "/packages.typ": notebookinator
#import notebookinator: *
#import themes.radial: radial-theme, components

#show: notebook.with(theme: radial-theme)

#include "/entries/entries.typ"
`

type fakeExecutor struct {
	typstOut string
	typstErr error
	gitOut   string
	calls    []shell.Command
}

func (f *fakeExecutor) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.calls = append(f.calls, cmd)
	if cmd.Name == "git" {
		return shell.Result{Stdout: []byte(f.gitOut)}, nil
	}
	return shell.Result{Stdout: []byte(f.typstOut)}, f.typstErr
}

type scriptedPrompter struct {
	selection entry.Selection
	err       error
	got       *tui.Options
}

func (p *scriptedPrompter) Prompt(_ context.Context, opts tui.Options) (entry.Selection, error) {
	p.got = &opts
	return p.selection, p.err
}

type notebook struct {
	root     string
	stderr   *bytes.Buffer
	exec     *fakeExecutor
	prompter *scriptedPrompter
	service  *Service
}

var fixedNow = time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

func newNotebook(t *testing.T, mainTyp string, sel entry.Selection) *notebook {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.typ"), []byte(mainTyp), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "entries"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "entries", "entries.typ"), nil, 0o644))

	nb := &notebook{
		root:     root,
		stderr:   &bytes.Buffer{},
		exec:     &fakeExecutor{typstOut: radialCatalog, gitOut: "Ada\n"},
		prompter: &scriptedPrompter{selection: sel},
	}
	nb.service = &Service{
		Executor: nb.exec,
		Prompter: nb.prompter,
		Stderr:   nb.stderr,
		Logger:   logger.Nop(),
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	}
	return nb
}

func (nb *notebook) run(t *testing.T) (*Result, error) {
	t.Helper()
	return nb.service.AddEntry(context.Background(), Request{Root: nb.root, Config: config.Default()})
}

func (nb *notebook) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(nb.root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func firstEntry() entry.Selection {
	return entry.Selection{
		Section:   "body",
		Title:     "First Entry",
		EntryType: "build",
		Date:      "2024-03-07",
		Author:    "Ada",
		Witness:   "",
	}
}

func TestAddEntryCreatesFirstEntry(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	res, err := nb.run(t)
	require.NoError(t, err)

	require.Equal(t, "radial", res.Theme)
	require.False(t, res.FellBack)
	require.Equal(t, filepath.Join(nb.root, "entries", "first_entry", "first_entry.typ"), res.Paths.File)

	require.Equal(t, `#import "/packages.typ": *
#import components: *
// TODO: add comment
#show: create-entry.with(
    section: "body",
    title: "First Entry",
    type: "build",
    date: datetime(year: 2024, month: 03, day: 07),
    author: "Ada",
    witness: "",
)`, nb.read(t, "entries/first_entry/first_entry.typ"))
	require.Equal(t, "\n\n#include \"/entries/first_entry/first_entry.typ\"", nb.read(t, "entries/entries.typ"))
	require.Empty(t, nb.stderr.String())
}

func TestAddEntryPassesFormDefaults(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	_, err := nb.run(t)
	require.NoError(t, err)

	opts := nb.prompter.got
	require.NotNil(t, opts)
	require.Equal(t, "2025-06-01", opts.Today)
	require.Equal(t, "Ada", opts.Author)
	require.Len(t, opts.EntryTypes, 2)
	require.Equal(t, "build", opts.EntryTypes[0].Name)
	require.Equal(t, "\x1b[38;2;0;255;0mnotes", opts.EntryTypes[1].Display())
}

func TestAddEntryTwiceFailsWithEntryExists(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	_, err := nb.run(t)
	require.NoError(t, err)
	aggregator := nb.read(t, "entries/entries.typ")

	_, err = nb.run(t)
	require.Error(t, err)
	require.Equal(t, apperrors.KindEntryExists, apperrors.KindOf(err))
	require.Equal(t, aggregator, nb.read(t, "entries/entries.typ"))
}

func TestAddEntryNestedTitle(t *testing.T) {
	t.Parallel()

	sel := firstEntry()
	sel.Title = "Nested/Deep Entry/"
	nb := newNotebook(t, radialMain, sel)

	_, err := nb.run(t)
	require.NoError(t, err)

	require.DirExists(t, filepath.Join(nb.root, "entries", "nested", "deep_entry"))
	require.Contains(t, nb.read(t, "entries/nested/deep_entry/deep_entry.typ"), `title: "Deep Entry",`)
	require.Equal(t, "\n\n#include \"/entries/nested/deep_entry/deep_entry.typ\"", nb.read(t, "entries/entries.typ"))
}

func TestAddEntryUnparseableDateUsesToday(t *testing.T) {
	t.Parallel()

	sel := firstEntry()
	sel.Date = "not a date"
	nb := newNotebook(t, radialMain, sel)

	res, err := nb.run(t)
	require.NoError(t, err)
	require.True(t, res.DateRecovered)
	require.Contains(t, nb.stderr.String(), "failed to parse date!")
	require.Contains(t, nb.read(t, "entries/first_entry/first_entry.typ"), "date: datetime(year: 2025, month: 06, day: 01),")
}

func TestAddEntryMatchesThemeBySubstring(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, "#show: notebook.with(theme: dark-radial)\n", firstEntry())
	res, err := nb.run(t)
	require.NoError(t, err)
	require.Equal(t, "radial", res.Theme)
	require.False(t, res.FellBack)
	require.Equal(t, "build", nb.prompter.got.EntryTypes[0].Name)
}

func TestAddEntryPicksDeclaredTheme(t *testing.T) {
	t.Parallel()

	sel := firstEntry()
	sel.EntryType = "test"
	nb := newNotebook(t, "#show: notebook.with(theme: themes.polar.polar-theme)\n", sel)
	res, err := nb.run(t)
	require.NoError(t, err)
	require.Equal(t, "polar", res.Theme)
	require.Len(t, nb.prompter.got.EntryTypes, 1)
}

func TestAddEntryFallsBackWithDiagnostic(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, "= A notebook without a theme\n", firstEntry())
	res, err := nb.run(t)
	require.NoError(t, err)
	require.True(t, res.FellBack)
	require.Equal(t, "radial", res.Theme)
	require.Equal(t, "Could not find theme in ./main.typ, defaulting to radial.\n", nb.stderr.String())
}

func TestAddEntryEmptyTitleTouchesNothing(t *testing.T) {
	t.Parallel()

	sel := firstEntry()
	sel.Title = ""
	nb := newNotebook(t, radialMain, sel)

	_, err := nb.run(t)
	require.ErrorIs(t, err, apperrors.ErrEmptyTitle)
	require.Contains(t, err.Error(), "title must be specified!")

	entries, readErr := os.ReadDir(filepath.Join(nb.root, "entries"))
	require.NoError(t, readErr)
	require.Len(t, entries, 1)
	require.Empty(t, nb.read(t, "entries/entries.typ"))
}

func TestAddEntryQueryFailureStopsEarly(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	nb.exec.typstErr = errors.New("exit status 1")

	_, err := nb.run(t)
	require.Equal(t, apperrors.KindTypstQuery, apperrors.KindOf(err))
	require.Nil(t, nb.prompter.got)
}

func TestAddEntryBadColorIsFatal(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	nb.exec.typstOut = `[[["radial", [["build", "rgb(\"#FF00\")"]]]]]`

	_, err := nb.run(t)
	require.Equal(t, apperrors.KindBadColor, apperrors.KindOf(err))
	require.Nil(t, nb.prompter.got)
}

func TestAddEntryNoThemes(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	nb.exec.typstOut = `[[["radial", null]]]`

	_, err := nb.run(t)
	require.ErrorIs(t, err, apperrors.ErrNoThemes)
}

func TestAddEntryMissingMainFile(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	require.NoError(t, os.Remove(filepath.Join(nb.root, "main.typ")))

	_, err := nb.run(t)
	require.Equal(t, apperrors.KindMainTypRead, apperrors.KindOf(err))
}

func TestAddEntryCancelledForm(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	nb.prompter.err = tui.ErrCancelled

	_, err := nb.run(t)
	require.ErrorIs(t, err, tui.ErrCancelled)
	require.Empty(t, nb.read(t, "entries/entries.typ"))
}

func TestAddEntryEscapesWhenConfigured(t *testing.T) {
	t.Parallel()

	sel := firstEntry()
	sel.Title = `Quote "me"`
	nb := newNotebook(t, radialMain, sel)
	cfg := config.Default()
	cfg.EscapeStrings = true

	_, err := nb.service.AddEntry(context.Background(), Request{Root: nb.root, Config: cfg})
	require.NoError(t, err)
	require.Contains(t, nb.read(t, `entries/quote_"me"/quote_"me".typ`), `title: "Quote \"me\"",`)
}

func TestAddEntryRunsQueryAndGitInRoot(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	_, err := nb.run(t)
	require.NoError(t, err)

	require.Len(t, nb.exec.calls, 2)
	require.Equal(t, "-c", nb.exec.calls[0].Args[0])
	require.Equal(t, nb.stderr, nb.exec.calls[0].Stderr)
	require.Equal(t, "git", nb.exec.calls[1].Name)
	for _, call := range nb.exec.calls {
		require.Equal(t, nb.root, call.Dir)
	}
}

func TestAddEntryDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	nb := newNotebook(t, radialMain, firstEntry())
	res, err := nb.service.AddEntry(context.Background(), Request{Root: nb.root, Config: config.Default(), DryRun: true})
	require.NoError(t, err)
	require.NotNil(t, res.Preview)

	require.Contains(t, string(res.Preview.Content), `title: "First Entry",`)
	require.Equal(t, "--- a/entries/entries.typ\n"+
		"+++ b/entries/entries.typ\n"+
		"+\n"+
		"+\n"+
		"+#include \"/entries/first_entry/first_entry.typ\"\n", res.Preview.AggregatorDiff)

	require.NoDirExists(t, filepath.Join(nb.root, "entries", "first_entry"))
	require.Empty(t, nb.read(t, "entries/entries.typ"))
}

package typst

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/add-entry/internal/shell"
	"github.com/alexisbeaulieu97/add-entry/internal/theme"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

type fakeExecutor struct {
	result shell.Result
	err    error
	calls  []shell.Command
}

func (f *fakeExecutor) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.calls = append(f.calls, cmd)
	return f.result, f.err
}

const radialOutput = `[[
  ["radial", [["build", "rgb(\"#FF0000\")"], ["notes", {"color": "rgb(\"#00FF00\")", "icon": "notes.svg"}]]],
  ["linear", null],
  ["polar", []],
  ["default", [["test", {"color": "rgb(\"#0000ff\")"}]]]
]]`

func TestScriptImportsConfiguredPackage(t *testing.T) {
	t.Parallel()

	q := &Querier{Package: "@local/notebookinator:2.0.0", Typst: "/opt/typst"}
	script, err := q.Script()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(script, "/opt/typst query - '<entry-types>' --field value <<EOF\n"))
	require.Contains(t, script, `#import "@local/notebookinator:2.0.0": themes`)
	require.Contains(t, script, `key == "entry-type-metadata"`)
	require.True(t, strings.HasSuffix(script, ") <entry-types>\nEOF"))
}

func TestScriptDefaults(t *testing.T) {
	t.Parallel()

	script, err := (&Querier{}).Script()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(script, "typst query - '<entry-types>'"))
	require.Contains(t, script, `#import "@local/notebookinator:1.0.1": themes`)
}

func TestEntryTypesRunsScriptThroughShell(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{result: shell.Result{Stdout: []byte(radialOutput)}}
	q := &Querier{Executor: fake, Shell: "/bin/bash", Dir: "/notebook"}

	catalog, err := q.EntryTypes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"radial", "default"}, catalog.Names())

	require.Len(t, fake.calls, 1)
	call := fake.calls[0]
	require.Equal(t, "/bin/bash", call.Name)
	require.Equal(t, "-c", call.Args[0])
	require.Contains(t, call.Args[1], "query - '<entry-types>'")
	require.Equal(t, "/notebook", call.Dir)
}

func TestEntryTypesWrapsCommandFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{
		result: shell.Result{Stderr: "error: package not found"},
		err:    errors.New("exit status 1"),
	}
	_, err := (&Querier{Executor: fake}).EntryTypes(context.Background())
	require.Error(t, err)

	var queryErr *apperrors.QueryError
	require.ErrorAs(t, err, &queryErr)
	require.Contains(t, err.Error(), "package not found")
	require.Equal(t, apperrors.KindTypstQuery, apperrors.KindOf(err))
}

func TestEntryTypesWrapsMissingShell(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{err: exec.ErrNotFound}
	_, err := (&Querier{Executor: fake}).EntryTypes(context.Background())
	require.ErrorIs(t, err, exec.ErrNotFound)
	require.Equal(t, apperrors.KindTypstQuery, apperrors.KindOf(err))
}

func TestEntryTypesRejectsBadOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{result: shell.Result{Stdout: []byte("not json")}}
	_, err := (&Querier{Executor: fake}).EntryTypes(context.Background())
	require.Equal(t, apperrors.KindTypstQuery, apperrors.KindOf(err))
}

func TestDecodeCatalogFlattensColorVariants(t *testing.T) {
	t.Parallel()

	catalog, err := DecodeCatalog([]byte(radialOutput))
	require.NoError(t, err)

	radial, ok := catalog.Lookup("radial")
	require.True(t, ok)
	require.Equal(t, []theme.RawEntryType{
		{Name: "build", Color: `rgb("#FF0000")`},
		{Name: "notes", Color: `rgb("#00FF00")`},
	}, radial.EntryTypes)

	def, ok := catalog.Lookup("default")
	require.True(t, ok)
	require.Equal(t, `rgb("#0000ff")`, def.EntryTypes[0].Color)
}

func TestDecodeCatalogDropsThemesWithoutEntries(t *testing.T) {
	t.Parallel()

	catalog, err := DecodeCatalog([]byte(radialOutput))
	require.NoError(t, err)
	_, ok := catalog.Lookup("linear")
	require.False(t, ok)
	_, ok = catalog.Lookup("polar")
	require.False(t, ok)
}

func TestDecodeCatalogEmptyList(t *testing.T) {
	t.Parallel()

	catalog, err := DecodeCatalog([]byte(`[[]]`))
	require.NoError(t, err)
	require.Zero(t, catalog.Len())
}

func TestDecodeCatalogRejectsShapeMismatch(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":              ``,
		"no outer element":   `[]`,
		"two outer elements": `[[], []]`,
		"null theme list":    `[null]`,
		"object":             `{"radial": []}`,
		"short theme pair":   `[[["radial"]]]`,
		"null theme name":    `[[[null, []]]]`,
		"numeric name":       `[[[1, []]]]`,
		"short entry":        `[[["radial", [["build"]]]]]`,
		"null color":         `[[["radial", [["build", null]]]]]`,
		"numeric color":      `[[["radial", [["build", 3]]]]]`,
		"object sans color":  `[[["radial", [["build", {"fill": "red"}]]]]]`,
		"null object color":  `[[["radial", [["build", {"color": null}]]]]]`,
		"trailing data":      `[[]] [[]]`,
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeCatalog([]byte(input))
			require.Error(t, err)
		})
	}
}

func TestDecodeCatalogRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := DecodeCatalog([]byte("[[[\"rad\xffial\", null]]]"))
	require.ErrorContains(t, err, "UTF-8")
}

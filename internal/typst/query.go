// Package typst talks to the Typst toolchain and reads notebook sources.
package typst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	"github.com/alexisbeaulieu97/add-entry/internal/shell"
	"github.com/alexisbeaulieu97/add-entry/internal/theme"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

const (
	DefaultPackage = "@local/notebookinator:1.0.1"
	DefaultLabel   = "entry-types"
	DefaultBinary  = "typst"
)

var scriptTemplate = template.Must(template.New("query").Parse(`{{.Typst}} query - '<{{.Label}}>' --field value <<EOF
#import "{{.Package}}": themes
#metadata(
  dictionary(themes).pairs().map(((name, theme)) => {
    let entry-metadata = dictionary(theme.components).pairs().find((
      (key, _value),
    ) => key == "entry-type-metadata")
    if (entry-metadata == none) {
      return (name, entry-metadata)
    }
    return (name, entry-metadata.at(1).pairs())
  }),
) <{{.Label}}>
EOF`))

// Querier asks Typst which entry types each Notebookinator theme defines.
type Querier struct {
	Executor shell.Executor
	// Shell runs the query script. Empty selects the platform default.
	Shell   string
	Typst   string
	Package string
	Label   string
	Dir     string
	// Stderr receives the query's diagnostics.
	Stderr io.Writer
	Logger *logger.Logger
}

func (q *Querier) typst() string {
	if q.Typst == "" {
		return DefaultBinary
	}
	return q.Typst
}

func (q *Querier) pkg() string {
	if q.Package == "" {
		return DefaultPackage
	}
	return q.Package
}

func (q *Querier) label() string {
	if q.Label == "" {
		return DefaultLabel
	}
	return q.Label
}

// Script renders the shell script that runs the query.
func (q *Querier) Script() (string, error) {
	var buf bytes.Buffer
	err := scriptTemplate.Execute(&buf, struct {
		Typst   string
		Label   string
		Package string
	}{q.typst(), q.label(), q.pkg()})
	if err != nil {
		return "", fmt.Errorf("render query script: %w", err)
	}
	return buf.String(), nil
}

func (q *Querier) describe() string {
	return fmt.Sprintf("%s query - '<%s>' --field value", q.typst(), q.label())
}

// EntryTypes runs the query and returns the themes that define entry types.
func (q *Querier) EntryTypes(ctx context.Context) (*theme.Catalog, error) {
	if q.Executor == nil {
		return nil, apperrors.NewQueryError(q.describe(), errors.New("no executor configured"))
	}

	script, err := q.Script()
	if err != nil {
		return nil, apperrors.NewQueryError(q.describe(), err)
	}

	cmd := shell.Command{
		Name:   shell.Determine(q.Shell),
		Args:   []string{"-c", script},
		Dir:    q.Dir,
		Stderr: q.Stderr,
	}
	q.Logger.Debug("querying typst for entry types", "shell", cmd.Name, "package", q.pkg())

	result, err := q.Executor.Run(ctx, cmd)
	if err != nil {
		if result.Stderr != "" {
			err = fmt.Errorf("%w: %s", err, result.Stderr)
		}
		return nil, apperrors.NewQueryError(q.describe(), err)
	}

	catalog, err := DecodeCatalog(result.Stdout)
	if err != nil {
		return nil, apperrors.NewQueryError(q.describe(), err)
	}
	q.Logger.Debug("typst reported themes", "themes", catalog.Names())
	return catalog, nil
}

// DecodeCatalog decodes the query output. Typst emits one array per labelled
// value, so stdout holds exactly one element: the list of
// [theme, entries-or-null] pairs.
func DecodeCatalog(stdout []byte) (*theme.Catalog, error) {
	if !utf8.Valid(stdout) {
		return nil, errors.New("query output is not valid UTF-8")
	}

	var outer []json.RawMessage
	if err := json.Unmarshal(stdout, &outer); err != nil {
		return nil, fmt.Errorf("decode query output: %w", err)
	}
	if len(outer) != 1 {
		return nil, fmt.Errorf("decode query output: expected 1 labelled value, got %d", len(outer))
	}
	if isNull(outer[0]) {
		return nil, errors.New("decode query output: theme list is null")
	}

	var themes []themeJSON
	if err := json.Unmarshal(outer[0], &themes); err != nil {
		return nil, fmt.Errorf("decode theme list: %w", err)
	}

	catalog := theme.NewCatalog()
	for _, t := range themes {
		catalog.Add(t.Theme)
	}
	return catalog, nil
}

// themeJSON is the pair [name, entries] where entries may be null.
type themeJSON struct {
	theme.Theme
}

func (t *themeJSON) UnmarshalJSON(data []byte) error {
	pair, err := decodePair(data, "theme")
	if err != nil {
		return err
	}
	if err := decodeString(pair[0], &t.Name); err != nil {
		return fmt.Errorf("theme name: %w", err)
	}
	if isNull(pair[1]) {
		t.EntryTypes = nil
		return nil
	}

	var entries []entryTypeJSON
	if err := json.Unmarshal(pair[1], &entries); err != nil {
		return fmt.Errorf("theme %q: %w", t.Name, err)
	}
	t.EntryTypes = make([]theme.RawEntryType, 0, len(entries))
	for _, e := range entries {
		t.EntryTypes = append(t.EntryTypes, e.RawEntryType)
	}
	return nil
}

// entryTypeJSON is the pair [name, color].
type entryTypeJSON struct {
	theme.RawEntryType
}

func (e *entryTypeJSON) UnmarshalJSON(data []byte) error {
	pair, err := decodePair(data, "entry type")
	if err != nil {
		return err
	}
	if err := decodeString(pair[0], &e.Name); err != nil {
		return fmt.Errorf("entry type name: %w", err)
	}
	var color colorJSON
	if err := json.Unmarshal(pair[1], &color); err != nil {
		return fmt.Errorf("entry type %q: %w", e.Name, err)
	}
	e.Color = string(color)
	return nil
}

// colorJSON accepts either a bare string or an object with a color field.
type colorJSON string

func (c *colorJSON) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return errors.New("color is null")
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = colorJSON(s)
		return nil
	}

	var obj struct {
		Color json.RawMessage `json:"color"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("color must be a string or an object with a color field: %w", err)
	}
	if obj.Color == nil {
		return errors.New("color object has no color field")
	}
	if err := decodeString(obj.Color, &s); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	*c = colorJSON(s)
	return nil
}

func decodePair(data []byte, what string) ([]json.RawMessage, error) {
	if isNull(data) {
		return nil, fmt.Errorf("%s is null", what)
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if len(pair) != 2 {
		return nil, fmt.Errorf("%s: expected 2 elements, got %d", what, len(pair))
	}
	return pair, nil
}

func decodeString(data json.RawMessage, dst *string) error {
	if isNull(data) {
		return errors.New("unexpected null")
	}
	return json.Unmarshal(data, dst)
}

func isNull(data []byte) bool {
	return strings.TrimSpace(string(data)) == "null"
}

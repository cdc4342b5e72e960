package entry

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/alexisbeaulieu97/add-entry/internal/logger"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

var entryTemplate = template.Must(template.New("entry").Parse(`#import "/packages.typ": *
#import components: *
// TODO: add comment
#show: create-entry.with(
    section: "{{.Section}}",
    title: "{{.Title}}",
    type: "{{.Type}}",
    date: {{.Date}},
    author: "{{.Author}}",
    witness: "{{.Witness}}",
)`))

// Paths are the locations touched for one entry.
type Paths struct {
	Dir  string
	File string
	// Include is the path written into the aggregator, rooted at the notebook.
	Include string
}

// Materializer writes entries into a notebook rooted at Root.
type Materializer struct {
	Root       string
	EntriesDir string
	Aggregator string
	// Escape quotes string fields for Typst instead of substituting them verbatim.
	Escape bool
	Logger *logger.Logger
}

// Paths derives where e lives.
func (m *Materializer) Paths(e *Entry) Paths {
	rel := path.Join(m.EntriesDir, e.Slug)
	file := path.Join(rel, e.Stem()+".typ")
	return Paths{
		Dir:     filepath.Join(m.Root, filepath.FromSlash(rel)),
		File:    filepath.Join(m.Root, filepath.FromSlash(file)),
		Include: "/" + file,
	}
}

// Materialize creates the directory chain, writes the entry file and appends
// its include directive.
func (m *Materializer) Materialize(e *Entry) (Paths, error) {
	paths := m.Paths(e)
	if err := m.EnsureDir(e); err != nil {
		return paths, err
	}
	if err := m.WriteEntry(e); err != nil {
		return paths, err
	}
	if err := m.AppendInclude(e); err != nil {
		return paths, err
	}
	return paths, nil
}

// EnsureDir creates every prefix of the entry directory in turn. Prefixes
// that already exist as directories are kept.
func (m *Materializer) EnsureDir(e *Entry) error {
	current := m.Root
	for _, segment := range strings.Split(path.Join(m.EntriesDir, e.Slug), "/") {
		current = filepath.Join(current, segment)

		err := os.Mkdir(current, 0o755)
		if err == nil {
			m.Logger.Debug("created directory", "path", current)
			continue
		}
		if !errors.Is(err, fs.ErrExist) {
			return apperrors.NewFileError(apperrors.OpMkdir, current, err)
		}
		info, statErr := os.Stat(current)
		if statErr != nil {
			return apperrors.NewFileError(apperrors.OpMkdir, current, statErr)
		}
		if !info.IsDir() {
			return apperrors.NewFileError(apperrors.OpMkdir, current, errors.New("exists and is not a directory"))
		}
	}
	return nil
}

// WriteEntry creates the entry file, failing if it already exists.
func (m *Materializer) WriteEntry(e *Entry) error {
	file := m.Paths(e).File

	content, err := m.Render(e)
	if err != nil {
		return apperrors.NewFileError(apperrors.OpWrite, file, err)
	}

	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return apperrors.NewFileError(apperrors.OpCreate, file, err)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return apperrors.NewFileError(apperrors.OpWrite, file, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return apperrors.NewFileError(apperrors.OpWrite, file, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewFileError(apperrors.OpWrite, file, err)
	}

	m.Logger.Debug("wrote entry", "path", file)
	return nil
}

// Render returns the entry file contents.
func (m *Materializer) Render(e *Entry) ([]byte, error) {
	quote := m.quote()
	var buf bytes.Buffer
	err := entryTemplate.Execute(&buf, struct {
		Section, Title, Type, Date, Author, Witness string
	}{
		Section: quote(e.Section),
		Title:   quote(e.Leaf),
		Type:    quote(e.EntryType),
		Date:    e.DateLiteral,
		Author:  quote(e.Author),
		Witness: quote(e.Witness),
	})
	if err != nil {
		return nil, fmt.Errorf("render entry template: %w", err)
	}
	return buf.Bytes(), nil
}

// IncludeLine is the text appended to the aggregator for e.
func (m *Materializer) IncludeLine(e *Entry) string {
	return "\n\n#include \"" + m.quote()(m.Paths(e).Include) + "\""
}

// AppendInclude adds e's include directive to the aggregator in a single
// write. The aggregator must already exist.
func (m *Materializer) AppendInclude(e *Entry) error {
	aggregator := filepath.Join(m.Root, filepath.FromSlash(m.Aggregator))

	f, err := os.OpenFile(aggregator, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return apperrors.NewFileError(apperrors.OpAppend, aggregator, err)
	}
	if _, err := f.Write([]byte(m.IncludeLine(e))); err != nil {
		_ = f.Close()
		return apperrors.NewFileError(apperrors.OpAppend, aggregator, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return apperrors.NewFileError(apperrors.OpAppend, aggregator, err)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewFileError(apperrors.OpAppend, aggregator, err)
	}

	m.Logger.Debug("appended include", "aggregator", aggregator, "include", m.Paths(e).Include)
	return nil
}

func (m *Materializer) quote() func(string) string {
	if !m.Escape {
		return func(s string) string { return s }
	}
	return EscapeString
}

// EscapeString makes s safe inside a Typst string literal.
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '"':
			b.WriteString(`\"`)
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Plan is what Materialize would do for an entry, computed without writing.
type Plan struct {
	Paths   Paths
	Content []byte
	// AggregatorPath is the aggregator file on disk.
	AggregatorPath string
	Before         string
	After          string
}

// Plan renders e and the aggregator's new contents. It reports the same
// entry-exists and missing-aggregator failures Materialize would.
func (m *Materializer) Plan(e *Entry) (*Plan, error) {
	paths := m.Paths(e)

	if _, err := os.Lstat(paths.File); err == nil {
		return nil, apperrors.NewFileError(apperrors.OpCreate, paths.File, fs.ErrExist)
	}

	content, err := m.Render(e)
	if err != nil {
		return nil, apperrors.NewFileError(apperrors.OpWrite, paths.File, err)
	}

	aggregator := filepath.Join(m.Root, filepath.FromSlash(m.Aggregator))
	before, err := os.ReadFile(aggregator)
	if err != nil {
		return nil, apperrors.NewFileError(apperrors.OpAppend, aggregator, err)
	}

	return &Plan{
		Paths:          paths,
		Content:        content,
		AggregatorPath: aggregator,
		Before:         string(before),
		After:          string(before) + m.IncludeLine(e),
	}, nil
}

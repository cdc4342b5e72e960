package errors

import (
	stderrors "errors"
	"fmt"
	"os"
)

// Kind names a class of failure reported by add-entry.
type Kind string

const (
	KindUnknown          Kind = "unknown"
	KindTypstQuery       Kind = "typst_query_failed"
	KindMainTypRead      Kind = "main_typ_read_failed"
	KindMainTypParse     Kind = "main_typ_parse_failed"
	KindBadColor         Kind = "bad_color_literal"
	KindNoThemes         Kind = "no_themes_available"
	KindEmptyTitle       Kind = "empty_title"
	KindEntryExists      Kind = "entry_already_exists"
	KindAggregatorAppend Kind = "aggregator_append_failed"
	KindFilesystem       Kind = "filesystem"
	KindValidation       Kind = "validation"
)

var (
	// ErrEmptyTitle is returned when the title's last segment is empty.
	ErrEmptyTitle = stderrors.New("title must be specified!")
	// ErrNoThemes is returned when the Typst query reports no usable theme.
	ErrNoThemes = stderrors.New("no themes with entry types available")
)

// ParseError represents a source parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures user input and configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// QueryError represents a failed Typst metadata query.
type QueryError struct {
	Command string
	Err     error
}

// NewQueryError constructs a QueryError for the given command.
func NewQueryError(command string, err error) error {
	return &QueryError{Command: command, Err: err}
}

func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}
	if e.Command != "" {
		return fmt.Sprintf("typst query failed (%s): %v", e.Command, e.Err)
	}
	return fmt.Sprintf("typst query failed: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ColorError indicates a color literal that is not of the form rgb("#RRGGBB").
type ColorError struct {
	Literal string
	Message string
	Err     error
}

// NewColorError constructs a ColorError for the given literal.
func NewColorError(literal, message string, err error) error {
	return &ColorError{Literal: literal, Message: message, Err: err}
}

func (e *ColorError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("bad color literal %q: %s", e.Literal, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ColorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ThemeError indicates that no theme could be selected.
type ThemeError struct {
	Message string
	Err     error
}

// NewThemeError constructs a ThemeError.
func NewThemeError(message string, err error) error {
	return &ThemeError{Message: message, Err: err}
}

func (e *ThemeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("theme error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ThemeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// File operations reported by FileError.
const (
	OpRead   = "read"
	OpMkdir  = "mkdir"
	OpCreate = "create"
	OpWrite  = "write"
	OpAppend = "append"
)

// FileError represents a filesystem failure on a notebook path.
type FileError struct {
	Op   string
	Path string
	Err  error
}

// NewFileError constructs a FileError.
func NewFileError(op, path string, err error) error {
	return &FileError{Op: op, Path: path, Err: err}
}

func (e *FileError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf classifies err by walking its chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		queryErr *QueryError
		parseErr *ParseError
		colorErr *ColorError
		themeErr *ThemeError
		fileErr  *FileError
		valErr   *ValidationError
	)

	switch {
	case stderrors.Is(err, ErrEmptyTitle):
		return KindEmptyTitle
	case stderrors.Is(err, ErrNoThemes), stderrors.As(err, &themeErr):
		return KindNoThemes
	case stderrors.As(err, &queryErr):
		return KindTypstQuery
	case stderrors.As(err, &colorErr):
		return KindBadColor
	case stderrors.As(err, &fileErr):
		switch fileErr.Op {
		case OpRead:
			return KindMainTypRead
		case OpCreate:
			if stderrors.Is(fileErr.Err, os.ErrExist) {
				return KindEntryExists
			}
			return KindFilesystem
		case OpAppend:
			return KindAggregatorAppend
		default:
			return KindFilesystem
		}
	case stderrors.As(err, &parseErr):
		return KindMainTypParse
	case stderrors.As(err, &valErr):
		return KindValidation
	}
	return KindUnknown
}

package main

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/add-entry/internal/tui"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error {
	return e.cause
}

// describeFailure turns a service error into what the user sees. Input
// mistakes are reported as a bare message.
func describeFailure(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrEmptyTitle):
		return apperrors.ErrEmptyTitle
	case errors.Is(err, tui.ErrCancelled):
		return err
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindTypstQuery:
		return newCommandError("query entry types", "typst query", err, "Check that typst is on PATH and the notebookinator package is installed locally")
	case apperrors.KindMainTypRead:
		return newCommandError("read notebook", "main file", err, "Run add-entry from the notebook root or pass --dir")
	case apperrors.KindMainTypParse:
		return newCommandError("parse notebook", "main file", err, "Make sure the main file is valid UTF-8")
	case apperrors.KindBadColor:
		return newCommandError("load entry types", "theme colors", err, `Entry type colors must be rgb("#RRGGBB") literals`)
	case apperrors.KindNoThemes:
		return newCommandError("select theme", "no theme defines entry types", err, "Check the notebookinator package version in the config")
	case apperrors.KindEntryExists:
		return newCommandError("create entry", "entry file already exists", err, "Choose a different title")
	case apperrors.KindAggregatorAppend:
		return newCommandError("register entry", "append include", err, "Create the aggregator file; the entry file was kept")
	case apperrors.KindValidation:
		return newCommandError("add entry", "invalid input", err, "Check the title for empty, '.' or '..' segments")
	default:
		return err
	}
}

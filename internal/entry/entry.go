// Package entry turns a completed entry form into files in the notebook.
package entry

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/alexisbeaulieu97/add-entry/internal/config"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

// Sections lists the notebook sections an entry can belong to, in menu order.
var Sections = []string{"body", "frontmatter", "appendix"}

// Selection is what the user submitted in the entry form.
type Selection struct {
	Section   string `validate:"required,oneof=body frontmatter appendix"`
	Title     string
	EntryType string `validate:"required"`
	Date      string
	Author    string
	Witness   string
}

// Validate checks the fields the form itself constrains. Title is checked by
// NewEntry.
func (s Selection) Validate() error {
	if err := config.GetValidator().Struct(s); err != nil {
		return apperrors.NewValidationError("selection", err.Error(), err)
	}
	return nil
}

// Entry is a selection resolved into the values written to disk.
type Entry struct {
	Section     string
	RawTitle    string
	Leaf        string
	EntryType   string
	DateLiteral string
	Author      string
	Witness     string
	Slug        string
}

// NewEntry derives the entry for sel. The title must have a non-empty last
// segment, and its slug may not contain empty, "." or ".." segments.
func NewEntry(sel Selection, dateLiteral string) (*Entry, error) {
	leaf := Leaf(sel.Title)
	if leaf == "" {
		return nil, apperrors.NewValidationError("title", apperrors.ErrEmptyTitle.Error(), apperrors.ErrEmptyTitle)
	}

	slug := Slug(sel.Title)
	for _, segment := range strings.Split(slug, "/") {
		switch segment {
		case "", ".", "..":
			return nil, apperrors.NewValidationError("title", fmt.Sprintf("title %q has an invalid path segment %q", sel.Title, segment), nil)
		}
	}

	return &Entry{
		Section:     sel.Section,
		RawTitle:    sel.Title,
		Leaf:        leaf,
		EntryType:   sel.EntryType,
		DateLiteral: dateLiteral,
		Author:      sel.Author,
		Witness:     sel.Witness,
		Slug:        slug,
	}, nil
}

// Stem is the entry file name without extension: the last slug segment.
func (e *Entry) Stem() string {
	return lastSegment(e.Slug)
}

// Leaf returns the last segment of title, ignoring trailing slashes.
func Leaf(title string) string {
	return lastSegment(strings.TrimRight(title, "/"))
}

// Slug lowercases title, replaces spaces with underscores and trims trailing
// slashes.
func Slug(title string) string {
	lowered := cases.Lower(language.Und).String(title)
	return strings.TrimRight(strings.ReplaceAll(lowered, " ", "_"), "/")
}

func lastSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

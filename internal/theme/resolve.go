package theme

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/add-entry/internal/rgb"
	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

// DefaultFallback is the theme used when main.typ names none we know.
const DefaultFallback = "radial"

// EntryType is a category of notebook entry with its display color.
type EntryType struct {
	Name  string
	Color rgb.RGB
}

// Display returns the name prefixed with the SGR escape for its color.
func (e EntryType) Display() string {
	return e.Color.ForegroundSequence() + e.Name
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Theme Theme
	// Candidate is the main.typ theme expression that selected Theme.
	Candidate string
	// Matches lists every theme name contained in Candidate, in catalog order.
	Matches  []string
	Fallback bool
}

// Ambiguous reports whether more than one theme name matched the candidate.
func (r Resolution) Ambiguous() bool {
	return len(r.Matches) > 1
}

// Resolve picks the theme for a notebook. The first candidate containing a
// catalog theme name wins, with ties going to the earliest theme in the
// catalog. Without a match the fallback theme is used, then the first theme.
func Resolve(catalog *Catalog, candidates []string, fallback string) (Resolution, error) {
	if catalog.Len() == 0 {
		return Resolution{}, apperrors.NewThemeError("no theme in the notebookinator package defines entry types", apperrors.ErrNoThemes)
	}

	themes := catalog.Themes()
	for _, candidate := range candidates {
		var matches []string
		for _, t := range themes {
			if strings.Contains(candidate, t.Name) {
				matches = append(matches, t.Name)
			}
		}
		if len(matches) == 0 {
			continue
		}
		selected, _ := catalog.Lookup(matches[0])
		return Resolution{Theme: selected, Candidate: candidate, Matches: matches}, nil
	}

	if fallback != "" {
		if t, ok := catalog.Lookup(fallback); ok {
			return Resolution{Theme: t, Fallback: true}, nil
		}
	}
	return Resolution{Theme: themes[0], Fallback: true}, nil
}

// DecodePalette decodes every color of raw. Any malformed color is an error.
func DecodePalette(raw []RawEntryType) ([]EntryType, error) {
	palette := make([]EntryType, 0, len(raw))
	for _, r := range raw {
		color, err := rgb.Decode(r.Color)
		if err != nil {
			return nil, fmt.Errorf("entry type %q: %w", r.Name, err)
		}
		palette = append(palette, EntryType{Name: r.Name, Color: color})
	}
	return palette, nil
}

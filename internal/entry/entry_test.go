package entry

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/alexisbeaulieu97/add-entry/pkg/errors"
)

func TestSlugAndLeaf(t *testing.T) {
	t.Parallel()

	require.Equal(t, "my_entry/sub", Slug("My Entry/Sub/"))
	require.Equal(t, "Sub", Leaf("My Entry/Sub"))
	require.Equal(t, "Sub", Leaf("My Entry/Sub/"))
	require.Equal(t, "first_entry", Slug("First Entry"))
	require.Equal(t, "ärger_über_öl", Slug("ÄRGER Über Öl"))
	require.Empty(t, Leaf(""))
	require.Empty(t, Leaf("///"))
}

func TestNewEntryDerivesFields(t *testing.T) {
	t.Parallel()

	e, err := NewEntry(Selection{
		Section:   "body",
		Title:     "Nested/Deep Entry/",
		EntryType: "build",
		Author:    "Ada",
	}, "datetime(year: 2024, month: 03, day: 07)")
	require.NoError(t, err)
	require.Equal(t, "Deep Entry", e.Leaf)
	require.Equal(t, "nested/deep_entry", e.Slug)
	require.Equal(t, "deep_entry", e.Stem())
	require.Equal(t, "Nested/Deep Entry/", e.RawTitle)
}

func TestNewEntryRejectsEmptyTitle(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"", "/", "///"} {
		_, err := NewEntry(Selection{Section: "body", Title: title}, "")
		require.ErrorIs(t, err, apperrors.ErrEmptyTitle, title)
		require.Contains(t, err.Error(), "title must be specified!")
		require.Equal(t, apperrors.KindEmptyTitle, apperrors.KindOf(err))
	}
}

func TestNewEntryRejectsEscapingSegments(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"../outside", "a/./b", "a//b", "/rooted", ".."} {
		_, err := NewEntry(Selection{Section: "body", Title: title}, "")
		var valErr *apperrors.ValidationError
		require.ErrorAs(t, err, &valErr, title)
		require.Equal(t, "title", valErr.Field)
	}
}

func TestSelectionValidate(t *testing.T) {
	t.Parallel()

	valid := Selection{Section: "frontmatter", Title: "x", EntryType: "notes"}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Section = "chapter"
	require.Error(t, bad.Validate())

	bad = valid
	bad.EntryType = ""
	err := bad.Validate()
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

package entry

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateFailureMessage is printed when the date field cannot be understood.
const DateFailureMessage = "failed to parse date!"

// FormDateLayout is the layout of the date field's default value.
const FormDateLayout = "2006-01-02"

// Today returns now as the date field's default value.
func Today(now time.Time, loc *time.Location) string {
	return now.In(location(loc)).Format(FormDateLayout)
}

// ParseDate reads a free-form date in loc. When input cannot be parsed it
// returns now and false. The result is midnight of the calendar date in loc.
func ParseDate(input string, now time.Time, loc *time.Location) (time.Time, bool) {
	loc = location(loc)

	input = strings.TrimSpace(input)
	if input == "" {
		return midnight(now.In(loc)), false
	}
	parsed, err := dateparse.ParseIn(input, loc)
	if err != nil {
		return midnight(now.In(loc)), false
	}
	return midnight(parsed.In(loc)), true
}

// FormatDate renders t as a Typst datetime constructor.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("datetime(year: %04d, month: %02d, day: %02d)", t.Year(), int(t.Month()), t.Day())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

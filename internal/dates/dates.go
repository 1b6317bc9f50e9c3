// Package dates converts between the sortable date tokens stored on entries
// and the values shown to editors.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the layout of a date-only token, e.g. 2024-01-02
	DateLayout = "2006-01-02"
	// DateTimeLayout is the layout of a token carrying a time, e.g. 2024-01-02-1345
	DateTimeLayout = "2006-01-02-1504"
	// DisplayDateTimeLayout is the minute precision layout shown to editors
	DisplayDateTimeLayout = "2006-01-02 15:04"

	dateOnlyLength = len(DateLayout)
)

// Normalize turns a submitted date into a single sortable token. Inputs longer
// than a bare date are assumed to carry a time: colons are dropped and every
// space becomes a dash, so "2024-01-02 13:45" yields "2024-01-02-1345". Shorter inputs are returned unchanged.
func Normalize(date string) string {
	if len(date) <= dateOnlyLength {
		return date
	}
	date = strings.ReplaceAll(date, ":", "")
	return strings.ReplaceAll(date, " ", "-")
}

// HasTime reports whether a stored token carries a time component.
func HasTime(token string) bool {
	return len(token) > dateOnlyLength
}

// Parse parses a stored token in either layout.
func Parse(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	layout := DateLayout
	if HasTime(token) {
		layout = DateTimeLayout
	}
	t, err := time.Parse(layout, token)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", token, err)
	}
	return t, nil
}

// Display formats a stored token for editors: minute precision when the token
// has a time, date only otherwise. Unparseable tokens are returned as-is.
func Display(token string) string {
	t, err := Parse(token)
	if err != nil {
		return token
	}
	if HasTime(token) {
		return t.Format(DisplayDateTimeLayout)
	}
	return t.Format(DateLayout)
}

// Token formats t as a token with minute precision.
func Token(t time.Time) string {
	return t.Format(DateTimeLayout)
}

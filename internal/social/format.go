package social

import (
	"fmt"
	"strings"
	"time"
)

const (
	hoursPerDay   = 24
	daysPerWeek   = 7
	displayLayout = "Jan 2, 2006"
)

// FormatText replaces each shortened link in the tweet text with its display URL.
func FormatText(t Tweet) string {
	text := t.Text
	if t.Entities == nil {
		return text
	}
	for _, u := range t.Entities.URLs {
		text = strings.Replace(text, u.URL, u.DisplayURL, 1)
	}
	return text
}

// RelativeTime renders createdAt relative to now: "5m ago", "3h ago", "2d ago",
// or a plain date once it is a week old. Unparsable input is returned as is.
func RelativeTime(createdAt string, now time.Time) string {
	posted, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return createdAt
	}

	diff := now.Sub(posted)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	case diff < hoursPerDay*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff < daysPerWeek*hoursPerDay*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(hoursPerDay*time.Hour)))
	default:
		return posted.Format(displayLayout)
	}
}

package cache

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// bytesPerKB is used for size formatting calculations.
	bytesPerKB = 1024
)

// ErrInvalidTTL is returned by ParseTTL for zero or negative lifetimes.
var ErrInvalidTTL = errors.New("TTL must be positive")

// ParseTTL parses a TTL given either as integer seconds ("86400") or as a
// Go duration string ("24h", "90m").
func ParseTTL(s string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, s)
	}
	return d, nil
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "45s", "30m", "5h30m", "2d3h".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// FormatSize renders a byte count as B, KB or MB with two decimals above bytes.
func FormatSize(n int64) string {
	switch {
	case n < bytesPerKB:
		return fmt.Sprintf("%d B", n)
	case n < bytesPerKB*bytesPerKB:
		return fmt.Sprintf("%.2f KB", float64(n)/bytesPerKB)
	default:
		return fmt.Sprintf("%.2f MB", float64(n)/(bytesPerKB*bytesPerKB))
	}
}

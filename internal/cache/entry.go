package cache

import (
	"encoding/json"
	"time"
)

// Entry is the on-disk envelope stored for a single key.
// Timestamps are epoch milliseconds so the files stay readable by the site's
// JavaScript tooling.
type Entry struct {
	// Data is the cached value (JSON-serializable).
	Data json.RawMessage `json:"data"`

	// Timestamp is the write time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// ExpiresAt is the absolute expiry time in epoch milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// NewEntry creates an entry written at now that lives for ttl.
func NewEntry(data json.RawMessage, now time.Time, ttl time.Duration) *Entry {
	written := now.UnixMilli()
	return &Entry{
		Data:      data,
		Timestamp: written,
		ExpiresAt: written + ttl.Milliseconds(),
	}
}

// CreatedAt returns the write time.
func (e *Entry) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ExpiryTime returns the absolute expiry time.
func (e *Entry) ExpiryTime() time.Time {
	return time.UnixMilli(e.ExpiresAt)
}

// IsExpired reports whether the entry is stale at now.
// An entry is still valid at exactly its expiry instant.
func (e *Entry) IsExpired(now time.Time) bool {
	return now.UnixMilli() > e.ExpiresAt
}

// Age returns how long ago the entry was written.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt())
}

// TimeUntilExpiration returns the remaining lifetime at now, or 0 if already expired.
func (e *Entry) TimeUntilExpiration(now time.Time) time.Duration {
	remaining := e.ExpiryTime().Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

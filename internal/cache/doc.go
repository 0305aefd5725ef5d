// Package cache provides a file-based key/value cache with per-entry TTL.
//
// The cache memoizes results of slow or rate-limited external calls (the
// social feed widget is the main user) so that page renderers never hit the
// external API directly. Key features:
//   - One JSON file per key under an injected directory; the directory listing
//     is the only index, so there is no single file whose corruption loses
//     everything
//   - Keys are sanitized to [A-Za-z0-9_] which rules out path traversal
//   - Expiry is checked when an entry is read; expired entries are deleted at
//     that point and there is no background sweep
//   - Every failure (missing directory, unreadable file, malformed JSON) is a
//     cache miss for the caller and a log line for the operator
//
// Writes go through a temp file and a rename, so a reader racing a writer
// sees either the old envelope or the new one. Concurrent writers to the same
// key are last-write-wins.
package cache

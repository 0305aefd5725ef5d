package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

// Common cache errors.
var (
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrEmptyDirectory  = errors.New("cache directory cannot be empty")
)

// unsafeKeyChars matches everything that may not appear in a cache file name.
var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// Status describes the outcome of a lookup. Callers that only care about the
// value use Get; Status lets operators tell a corrupt entry from a plain miss.
type Status int

// Lookup outcomes.
const (
	StatusMiss Status = iota
	StatusHit
	StatusExpired
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusExpired:
		return "expired"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "miss"
	}
}

// Stats summarizes the cache directory.
type Stats struct {
	// Files is the number of files in the cache directory.
	Files int `json:"files"`

	// TotalSize is the combined size of those files in bytes.
	TotalSize int64 `json:"totalSize"`

	// OldestAge is the age in minutes of the entry with the smallest stored timestamp.
	OldestAge int `json:"oldestAge"`
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock replaces time.Now, which lets tests move time forward.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for hit/miss/error reporting.
func WithLogger(l zerolog.Logger) Option {
	return func(s *FileStore) {
		s.logger = l
	}
}

// FileStore is a TTL cache that keeps one JSON file per key in directory.
// It holds no in-memory state besides its configuration; every call goes to
// the filesystem.
type FileStore struct {
	directory string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewFileStore creates a store rooted at directory. The directory is created
// lazily on the first write, so a store over a missing directory is valid and
// simply empty.
func NewFileStore(directory string, opts ...Option) (*FileStore, error) {
	if directory == "" {
		return nil, ErrEmptyDirectory
	}

	s := &FileStore{
		directory: directory,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Directory returns the cache directory path.
func (s *FileStore) Directory() string {
	return s.directory
}

// Set stores data under key for ttl. It is best effort: failures are logged
// and never reported to the caller.
func (s *FileStore) Set(key string, data any, ttl time.Duration) {
	if err := s.Put(key, data, ttl); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Put is Set with the error returned instead of logged.
func (s *FileStore) Put(key string, data any, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	entry := NewEntry(payload, s.now(), ttl)
	entryData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err = os.MkdirAll(s.directory, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err = s.writeAtomic(key, entryData); err != nil {
		return err
	}

	s.logger.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Msg("cache written")
	return nil
}

// writeAtomic writes to a temporary file first, then renames it into place.
func (s *FileStore) writeAtomic(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.directory, "."+SanitizeKey(key)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err = os.Rename(tempPath, s.Path(key)); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}
	return nil
}

// Lookup reads the entry for key. It returns a non-nil entry only with
// StatusHit. Expired entries are deleted as a side effect.
func (s *FileStore) Lookup(key string) (*Entry, Status) {
	if key == "" {
		return nil, StatusMiss
	}

	filePath := s.Path(key)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("key", key).Msg("cache miss")
			return nil, StatusMiss
		}
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry unreadable, treating as miss")
		return nil, StatusCorrupt
	}

	var entry Entry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		s.logger.Warn().Err(unmarshalErr).Str("key", key).Msg("cache entry corrupt, treating as miss")
		return nil, StatusCorrupt
	}

	now := s.now()
	if entry.IsExpired(now) {
		if rmErr := os.Remove(filePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn().Err(rmErr).Str("key", key).Msg("failed to remove expired cache entry")
		}
		s.logger.Debug().Str("key", key).Msg("cache expired")
		return nil, StatusExpired
	}

	s.logger.Debug().
		Str("key", key).
		Int("age_minutes", roundMinutes(entry.Age(now))).
		Msg("cache hit")
	return &entry, StatusHit
}

// Get returns the value cached under key decoded as T. The boolean is false
// on a miss, an expired entry, or any read/decode problem.
func Get[T any](s *FileStore, key string) (T, bool) {
	var zero T

	entry, status := s.Lookup(key)
	if status != StatusHit {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache data does not match requested type, treating as miss")
		return zero, false
	}
	return v, true
}

// Delete removes the entry for key. Deleting a missing entry is not an error.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every file in the cache directory and returns how many were
// removed. A missing directory is a no-op.
func (s *FileStore) Clear() int {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error().Err(err).Str("directory", s.directory).Msg("failed to read cache directory")
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filePath := filepath.Join(s.directory, entry.Name())
		if rmErr := os.Remove(filePath); rmErr != nil {
			s.logger.Warn().Err(rmErr).Str("file", entry.Name()).Msg("failed to remove cache file")
			continue
		}
		removed++
	}

	s.logger.Info().Int("files", removed).Msg("cache cleared")
	return removed
}

// CleanupExpired removes entries that have already expired and returns how
// many were removed. Corrupt files are left for Clear.
func (s *FileStore) CleanupExpired() int {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error().Err(err).Str("directory", s.directory).Msg("failed to read cache directory")
		}
		return 0
	}

	now := s.now()
	removed := 0
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || filepath.Ext(dirEntry.Name()) != cacheFileExtension {
			continue
		}

		filePath := filepath.Join(s.directory, dirEntry.Name())
		entry, readErr := readEntry(filePath)
		if readErr != nil {
			continue // Skip files we can't read or parse
		}

		if entry.IsExpired(now) {
			if rmErr := os.Remove(filePath); rmErr == nil {
				removed++
			}
		}
	}

	s.logger.Info().Int("files", removed).Msg("expired cache entries removed")
	return removed
}

// Stats reports file count, total size and the age of the oldest entry. The
// age comes from each entry's stored timestamp, not the file modification
// time. Unreadable or corrupt files count toward Files and TotalSize when
// they can be stat'ed but never toward OldestAge.
func (s *FileStore) Stats() Stats {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error().Err(err).Str("directory", s.directory).Msg("failed to read cache directory")
		}
		return Stats{}
	}

	now := s.now()
	oldest := now.UnixMilli()
	var stats Stats

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}

		info, infoErr := dirEntry.Info()
		if infoErr != nil {
			s.logger.Warn().Err(infoErr).Str("file", dirEntry.Name()).Msg("could not access cache file")
			continue
		}
		stats.Files++
		stats.TotalSize += info.Size()

		entry, readErr := readEntry(filepath.Join(s.directory, dirEntry.Name()))
		if readErr != nil {
			continue
		}
		if entry.Timestamp < oldest {
			oldest = entry.Timestamp
		}
	}

	stats.OldestAge = roundMinutes(now.Sub(time.UnixMilli(oldest)))
	if stats.OldestAge < 0 {
		stats.OldestAge = 0
	}
	return stats
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.directory, SanitizeKey(key)+cacheFileExtension)
}

// SanitizeKey replaces every character outside [A-Za-z0-9] with '_'.
func SanitizeKey(key string) string {
	return unsafeKeyChars.ReplaceAllString(key, "_")
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

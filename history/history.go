// Package history keeps a bounded, most-recent-first list of previously
// generated articles. It is a convenience cache: persistence is best-effort
// and storage failures degrade instead of surfacing.
package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/RobSonPL/Blog-Ai/generator"
)

// MaxEntries is how many articles the cache remembers.
const MaxEntries = 3

// Entry is a snapshot of an article at the moment it was first completed or
// last re-thumbnailed.
type Entry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Backend is the single named storage slot behind the cache.
type Backend interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Store holds the in-memory list and mirrors it to the backend on every
// change. Single writer; the mutex only guards against the session's own
// concurrent image/continuation callbacks.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{backend: backend, logger: logger, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	if s.backend == nil {
		return
	}
	raw, err := s.backend.Load()
	if err != nil || len(raw) == 0 {
		return
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn("discarding unreadable history", "error", err)
		return
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	s.entries = entries
}

// RecordIfAbsent snapshots the article unless an entry with the same title
// already exists. New entries go to the front; the oldest past MaxEntries is
// dropped. A persistence failure retries once without the thumbnail, then
// gives up silently.
func (s *Store) RecordIfAbsent(article generator.Article, category, thumbnail string) {
	title := strings.TrimSpace(article.Title)
	if title == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Title == title {
			return
		}
	}

	entry := Entry{
		ID:        newEntryID(s.now()),
		Title:     title,
		Category:  category,
		Date:      s.now().Format("2 Jan 2006"),
		Thumbnail: thumbnail,
	}
	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[:MaxEntries]
	}
	s.persist(title)
}

// UpdateThumbnail replaces the stored thumbnail for the entry matching title,
// if present. Used after a cover image is (re)generated.
func (s *Store) UpdateThumbnail(title, thumbnail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].Title == title {
			s.entries[i].Thumbnail = thumbnail
			s.persist(title)
			return
		}
	}
}

// List returns stored entries other than one matching excludeTitle,
// most-recent-first.
func (s *Store) List(excludeTitle string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Title == excludeTitle {
			continue
		}
		out = append(out, e)
	}
	return out
}

// persist mirrors the list to the backend. On failure (typically a quota
// limit) it retries once with the changed entry's thumbnail nulled; other
// entries keep theirs, and the entry itself is kept either way.
func (s *Store) persist(changedTitle string) {
	if s.backend == nil {
		return
	}
	err := s.save(s.entries)
	if err == nil {
		return
	}
	for i := range s.entries {
		if s.entries[i].Title == changedTitle {
			s.entries[i].Thumbnail = ""
		}
	}
	if err2 := s.save(s.entries); err2 != nil {
		s.logger.Warn("history persistence failed", "error", err2)
		return
	}
	s.logger.Warn("history entry persisted without its thumbnail", "title", changedTitle, "error", err)
}

func (s *Store) save(entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return s.backend.Save(raw)
}

// newEntryID builds a time-ordered token that distinguishes entries recorded
// in sequence.
func newEntryID(t time.Time) string {
	return strings.ReplaceAll(t.Format("20060102T150405.000000000"), ".", "")
}

// Package jsonfile implements repository.Store as a single JSON document
// rewritten in full on every save. This is the flat-file persisted
// representation: a mapping from snippet id to record plus the settings map,
// held in memory and flushed atomically (temp file + rename) per mutation.
//
// A corrupt or unreadable data file is recovered by starting from an empty
// store; the failure is logged, never fatal. The file on disk is left
// untouched until the next successful save rewrites it.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/snipstudio/snipstudio/apperror"
	"github.com/snipstudio/snipstudio/model"
	"github.com/snipstudio/snipstudio/repository"
)

var _ repository.Store = (*Store)(nil)

// document is the on-disk shape of the whole store.
type document struct {
	Snippets map[string]*model.Snippet `json:"snippets"`
	Settings map[string]string         `json:"settings"`
}

// Store holds the full data set in memory. The mutex keeps the rewrite of
// the file from being torn by overlapping calls out of UI timers; reads
// stay independent and idempotent.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger

	snippets map[string]*model.Snippet
	settings map[string]string
}

// New loads the data file at path, creating an empty store if the file does
// not exist yet. A corrupt file is reported through the logger and replaced
// with an empty in-memory store.
func New(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		logger:   logger,
		snippets: make(map[string]*model.Snippet),
		settings: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		logger.Error("data file unreadable, starting with empty store",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return s, nil
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		logger.Error("data file corrupt, starting with empty store",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return s, nil
	}

	if doc.Snippets != nil {
		s.snippets = doc.Snippets
	}
	if doc.Settings != nil {
		s.settings = doc.Settings
	}
	// IDs live as map keys on disk; make sure the records carry them too.
	for id, snippet := range s.snippets {
		snippet.ID = id
	}

	return s, nil
}

// Close flushes the current state. Mutations already save eagerly, so this
// is a final belt-and-braces write before shutdown.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Ext implements repository.Store.
func (s *Store) Ext() string {
	return ".json"
}

// Snapshot marshals the current state to dst. Writing from memory rather
// than copying the file keeps the snapshot consistent even if the data file
// is mid-rewrite.
func (s *Store) Snapshot(_ context.Context, dst string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeDocument(dst)
}

// save rewrites the data file in full. Caller must hold the write lock.
func (s *Store) save() error {
	if err := s.writeDocument(s.path); err != nil {
		return apperror.PersistenceFailed("jsonfile: writing data file", err)
	}
	return nil
}

func (s *Store) writeDocument(path string) error {
	doc := document{Snippets: s.snippets, Settings: s.settings}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// data file behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snipstudio-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Create inserts a new snippet, assigning a fresh xid and both timestamps.
// If the file write fails the insertion is rolled back so memory and disk
// stay in agreement.
func (s *Store) Create(_ context.Context, snippet *model.Snippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.ModifiedAt = now
	if snippet.History == nil {
		snippet.History = []model.HistoryEntry{}
	}

	s.snippets[snippet.ID] = snippet.Clone()
	if err := s.save(); err != nil {
		delete(s.snippets, snippet.ID)
		return err
	}
	return nil
}

// GetByID returns a copy of the stored record so callers can never mutate
// store state through the result.
func (s *Store) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snippet, ok := s.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	return snippet.Clone(), nil
}

// List returns all records as (id, title) pairs ordered by title
// case-insensitively, ties broken by id.
func (s *Store) List(ctx context.Context) ([]model.SnippetRef, error) {
	return s.Search(ctx, "")
}

// Search filters by case-insensitive substring over title, category and
// code. An empty query matches everything.
func (s *Store) Search(_ context.Context, query string) ([]model.SnippetRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	refs := make([]model.SnippetRef, 0, len(s.snippets))
	for _, snippet := range s.snippets {
		if needle != "" && !matches(snippet, needle) {
			continue
		}
		refs = append(refs, model.SnippetRef{ID: snippet.ID, Title: snippet.Title})
	}

	sort.Slice(refs, func(i, j int) bool {
		a, b := strings.ToLower(refs[i].Title), strings.ToLower(refs[j].Title)
		if a != b {
			return a < b
		}
		return refs[i].ID < refs[j].ID
	})
	return refs, nil
}

func matches(snippet *model.Snippet, needle string) bool {
	return strings.Contains(strings.ToLower(snippet.Title), needle) ||
		strings.Contains(strings.ToLower(snippet.Category), needle) ||
		strings.Contains(strings.ToLower(snippet.Code), needle)
}

// Update overwrites an existing record, refreshing ModifiedAt. The previous
// record is restored if the file write fails.
func (s *Store) Update(_ context.Context, snippet *model.Snippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.snippets[snippet.ID]
	if !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}

	snippet.CreatedAt = prev.CreatedAt
	snippet.ModifiedAt = time.Now()
	s.snippets[snippet.ID] = snippet.Clone()
	if err := s.save(); err != nil {
		s.snippets[snippet.ID] = prev
		return err
	}
	return nil
}

// Delete removes a record by id, restoring it if the file write fails.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.snippets[id]
	if !ok {
		return apperror.NotFound("snippet", id)
	}

	delete(s.snippets, id)
	if err := s.save(); err != nil {
		s.snippets[id] = prev
		return err
	}
	return nil
}

// Categories returns the distinct non-empty categories, deduped
// case-insensitively with the earliest-created casing winning, ordered
// case-insensitively.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk snippets in id order so dedup is deterministic (xids sort by
	// creation time).
	ids := make([]string, 0, len(s.snippets))
	for id := range s.snippets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, id := range ids {
		category := s.snippets[id].Category
		if category == "" {
			continue
		}
		folded := strings.ToLower(category)
		if !seen[folded] {
			seen[folded] = true
			categories = append(categories, category)
		}
	}

	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i]) < strings.ToLower(categories[j])
	})
	return categories, nil
}

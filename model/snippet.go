// Package model defines the data structures shared by every layer of the
// engine. Plain structs with JSON tags; the flat-file store persists them
// verbatim and the SQLite store maps them onto columns.
package model

import "time"

// HistoryLimit is the maximum number of prior versions retained per snippet.
// Older entries are evicted first.
const HistoryLimit = 5

// Snippet is the primary unit of persistence: a titled fragment of code plus
// optional metadata. ID is an opaque stable key assigned by the store at
// creation and never reused. Code is raw UTF-8 text; the engine never parses
// it as a language.
type Snippet struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Code        string         `json:"code"`
	Tags        string         `json:"tags,omitempty"`
	Description string         `json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	ModifiedAt  time.Time      `json:"modifiedAt"`
	History     []HistoryEntry `json:"history,omitempty"`
}

// HistoryEntry is one prior version of a snippet, captured from the
// pre-update state before an overwrite. Entries are immutable once appended;
// newest last.
type HistoryEntry struct {
	Date        time.Time `json:"date"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
}

// Clone returns a deep copy of the snippet. Stores hand out clones so
// callers can never mutate persisted state through a shared History slice.
func (s *Snippet) Clone() *Snippet {
	c := *s
	if s.History != nil {
		c.History = make([]HistoryEntry, len(s.History))
		copy(c.History, s.History)
	}
	return &c
}

// SnippetRef is the (id, title) pair returned by list and search operations.
// The UI layer renders titles but must address records by ID only — titles
// are not unique.
type SnippetRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Package repository declares the storage interfaces the engine is built
// against. Two implementations exist: repository/sqlite (tabular store) and
// repository/jsonfile (flat-file store rewritten in full on every save).
// Services receive these interfaces, never a concrete store.
package repository

import (
	"context"
	"io"

	"github.com/snipstudio/snipstudio/model"
)

// SnippetRepository owns snippet records. Create assigns the ID and both
// timestamps; Update refreshes ModifiedAt and persists whatever History the
// caller supplies (the history ring is enforced one layer up, in the
// service).
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)

	// List returns all records as (id, title) pairs ordered by title
	// case-insensitively, ties broken by id ascending.
	List(ctx context.Context) ([]model.SnippetRef, error)

	// Search returns the records whose title, category or code contains
	// query as a case-insensitive substring, in List order. An empty query
	// is equivalent to List. Pure read; never mutates anything.
	Search(ctx context.Context, query string) ([]model.SnippetRef, error)

	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error

	// Categories returns the distinct non-empty category values, deduped
	// case-insensitively (first stored casing wins), ordered
	// case-insensitively.
	Categories(ctx context.Context) ([]string, error)
}

// SettingsRepository owns session-state key/value pairs, with a lifecycle
// independent of snippet records. SetSetting upserts. GetSetting returns
// apperror.ErrNotFound for an absent key. DeleteSetting is a no-op for an
// absent key.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Store is a complete persistence backend: both tables plus snapshot and
// shutdown support.
type Store interface {
	SnippetRepository
	SettingsRepository

	// Snapshot writes a consistent full copy of the persisted
	// representation to dst. Used by the backup manager.
	Snapshot(ctx context.Context, dst string) error

	// Ext is the filename extension snapshots of this store should carry,
	// including the dot (".db", ".json").
	Ext() string

	io.Closer
}

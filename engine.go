// Package snipstudio is the snippet persistence and retrieval engine behind
// the SnipStudio family of snippet managers: a durable record store with
// free-text search, a bounded per-record version history, session-state
// settings, and timestamped full-store backups.
//
// The engine is a linkable component with no network or CLI surface. A UI
// layer drives it through Engine's methods and owns everything
// presentational (rendering, keybindings, theme color tables); the engine
// only persists the chosen theme's name.
//
// Typical wiring:
//
//	eng, err := snipstudio.Open(snipstudio.Config{DataPath: "data/snipstudio.db"})
//	if err != nil { ... }
//	defer eng.Close()
//
//	session := eng.RestoreSession(ctx)
//	refs, err := eng.ListSnippets(ctx, "")
package snipstudio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/snipstudio/snipstudio/backup"
	"github.com/snipstudio/snipstudio/clipboard"
	"github.com/snipstudio/snipstudio/model"
	"github.com/snipstudio/snipstudio/repository"
	"github.com/snipstudio/snipstudio/repository/jsonfile"
	"github.com/snipstudio/snipstudio/repository/sqlite"
	"github.com/snipstudio/snipstudio/service"
)

// Storage drivers accepted by Config.Driver.
const (
	DriverSQLite = "sqlite" // tabular store, the default
	DriverJSON   = "json"   // flat-file store, rewritten in full per save
)

// SaveParams carries the caller-editable snippet fields for SaveSnippet.
type SaveParams = service.SaveParams

// Config configures Open. The zero value is usable: SQLite at
// data/snipstudio.db, backups under backups/, the stock theme list, and a
// text logger on stderr.
type Config struct {
	// Driver selects the persisted representation: DriverSQLite or
	// DriverJSON. Empty means DriverSQLite.
	Driver string

	// DataPath is the store's file. Empty means data/snipstudio.db or
	// data/snipstudio.json depending on Driver.
	DataPath string

	// BackupDir receives the timestamped snapshots. Empty means "backups".
	BackupDir string

	// Themes is the set of recognized theme identifiers and DefaultTheme
	// the fallback. Both default to the stock list in package model.
	Themes       []string
	DefaultTheme string

	// Clipboard overrides the OS clipboard, e.g. clipboard.Noop{} for
	// headless use. Nil means clipboard.System{}.
	Clipboard clipboard.Clipboard

	// Logger receives engine events. Nil means a text handler on stderr.
	Logger *slog.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.DataPath == "" {
		ext := ".db"
		if cfg.Driver == DriverJSON {
			ext = ".json"
		}
		cfg.DataPath = filepath.Join("data", "snipstudio"+ext)
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if len(cfg.Themes) == 0 {
		cfg.Themes = model.DefaultThemes
	}
	if cfg.DefaultTheme == "" {
		cfg.DefaultTheme = model.DefaultTheme
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.System{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
}

// Engine is the caller-facing boundary. One Engine owns one store
// connection for the process lifetime; release it with Close on shutdown.
type Engine struct {
	store    repository.Store
	snippets *service.SnippetService
	settings *service.SettingsService
	backups  *backup.Manager
	clip     clipboard.Clipboard
	logger   *slog.Logger
}

// Open is the composition root: it opens the configured store, wires the
// services and backup manager onto it, and returns the ready engine.
func Open(cfg Config) (*Engine, error) {
	cfg.applyDefaults()

	if dir := filepath.Dir(cfg.DataPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}

	var (
		store repository.Store
		err   error
	)
	switch cfg.Driver {
	case DriverSQLite:
		store, err = sqlite.New(cfg.DataPath)
	case DriverJSON:
		store, err = jsonfile.New(cfg.DataPath, cfg.Logger)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &Engine{
		store:    store,
		snippets: service.NewSnippetService(store, cfg.Logger),
		settings: service.NewSettingsService(store, store, cfg.Themes, cfg.DefaultTheme, cfg.Logger),
		backups:  backup.NewManager(store, cfg.BackupDir, cfg.Logger),
		clip:     cfg.Clipboard,
		logger:   cfg.Logger,
	}, nil
}

// Close flushes and releases the store connection.
func (e *Engine) Close() error {
	return e.store.Close()
}

// ListSnippets returns (id, title) pairs matching query, ordered by title
// case-insensitively with ties broken by id. An empty query returns every
// snippet. Safe to call per keystroke; it never mutates selection state.
func (e *Engine) ListSnippets(ctx context.Context, query string) ([]model.SnippetRef, error) {
	return e.snippets.List(ctx, query)
}

// GetSnippet returns the full record, version history included.
func (e *Engine) GetSnippet(ctx context.Context, id string) (*model.Snippet, error) {
	return e.snippets.Get(ctx, id)
}

// SaveSnippet creates (empty id) or updates (present id) a snippet and
// returns its id. On update the pre-update state is pushed onto the
// record's history ring first. A snapshot is taken after the mutation
// commits; snapshot failure never fails the save.
func (e *Engine) SaveSnippet(ctx context.Context, id string, p SaveParams) (string, error) {
	snippet, err := e.snippets.Save(ctx, id, p)
	if err != nil {
		return "", err
	}
	e.backups.AfterMutation(ctx)
	return snippet.ID, nil
}

// DeleteSnippet removes a snippet. If the last_used_snippet setting points
// at it, the setting is cleared as part of the same logical operation, so
// the reference never dangles.
func (e *Engine) DeleteSnippet(ctx context.Context, id string) error {
	if err := e.snippets.Delete(ctx, id); err != nil {
		return err
	}
	if err := e.settings.ClearLastUsedSnippet(ctx, id); err != nil {
		e.logger.Warn("could not clear last-used snippet after delete",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	e.backups.AfterMutation(ctx)
	return nil
}

// ListCategories returns the distinct non-empty categories, recomputed on
// demand, ordered case-insensitively.
func (e *Engine) ListCategories(ctx context.Context) ([]string, error) {
	return e.snippets.Categories(ctx)
}

// CopyToClipboard hands text to the clipboard collaborator.
func (e *Engine) CopyToClipboard(text string) error {
	return e.clip.WriteText(text)
}

// GetSetting reads a session-state value; ok is false when none is stored.
func (e *Engine) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	return e.settings.Get(ctx, key)
}

// SetSetting upserts a session-state value.
func (e *Engine) SetSetting(ctx context.Context, key, value string) error {
	return e.settings.Set(ctx, key, value)
}

// RestoreSession rebuilds session state at startup. It never fails: a
// stale snippet reference or unrecognized theme is logged and skipped.
func (e *Engine) RestoreSession(ctx context.Context) *model.Session {
	return e.settings.RestoreSession(ctx)
}

// SaveSession persists the current selection and theme, typically on
// selection change and at shutdown. Empty values are left untouched.
func (e *Engine) SaveSession(ctx context.Context, snippetID, theme string) error {
	if snippetID != "" {
		if err := e.settings.Set(ctx, model.SettingLastUsedSnippet, snippetID); err != nil {
			return err
		}
	}
	if theme != "" {
		if err := e.settings.Set(ctx, model.SettingLastUsedTheme, theme); err != nil {
			return err
		}
	}
	return nil
}

// BackupNow takes an explicit full-store snapshot and returns its path.
// Unlike the snapshots triggered by mutations, an explicitly requested
// backup surfaces its error so the caller can warn the user.
func (e *Engine) BackupNow(ctx context.Context) (string, error) {
	return e.backups.Snapshot(ctx)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snipstudio/snipstudio/apperror"
	"github.com/snipstudio/snipstudio/model"
	"github.com/snipstudio/snipstudio/repository"
)

// SettingsService handles session-state persistence: the last-used snippet
// and last-used theme. Restore is deliberately forgiving — a stale or
// unrecognized value is logged and skipped, never an error, since losing
// session state must not keep the application from starting.
type SettingsService struct {
	repo     repository.SettingsRepository
	snippets repository.SnippetRepository
	logger   *slog.Logger

	themes       map[string]bool
	defaultTheme string
}

// NewSettingsService wires a settings service. themes is the set of
// recognized theme identifiers (owned by the UI collaborator);
// defaultTheme is the fallback and must itself be recognized.
func NewSettingsService(
	repo repository.SettingsRepository,
	snippets repository.SnippetRepository,
	themes []string,
	defaultTheme string,
	logger *slog.Logger,
) *SettingsService {
	known := make(map[string]bool, len(themes))
	for _, t := range themes {
		known[t] = true
	}
	return &SettingsService{
		repo:         repo,
		snippets:     snippets,
		logger:       logger,
		themes:       known,
		defaultTheme: defaultTheme,
	}
}

// Get reads a setting. ok is false when the key has no stored value.
func (s *SettingsService) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	value, err = s.repo.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a setting. Idempotent; the only failure mode is the
// underlying persistence.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if err := s.repo.SetSetting(ctx, key, value); err != nil {
		s.logger.Error("failed to save setting",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("saving setting %s: %w", key, err)
	}
	return nil
}

// ClearLastUsedSnippet removes the last_used_snippet setting if it points
// at id. Called when that snippet is deleted, so the reference never
// dangles.
func (s *SettingsService) ClearLastUsedSnippet(ctx context.Context, id string) error {
	stored, err := s.repo.GetSetting(ctx, model.SettingLastUsedSnippet)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading last-used snippet: %w", err)
	}
	if stored != id {
		return nil
	}
	if err := s.repo.DeleteSetting(ctx, model.SettingLastUsedSnippet); err != nil {
		return fmt.Errorf("clearing last-used snippet: %w", err)
	}
	return nil
}

// RestoreSession rebuilds session state from the settings store. The
// returned session always carries a recognized theme; its Snippet is nil
// when none was recorded or the recorded one no longer exists (the stale
// key is cleared so the warning fires once).
func (s *SettingsService) RestoreSession(ctx context.Context) *model.Session {
	session := &model.Session{Theme: s.defaultTheme}

	if theme, ok, err := s.Get(ctx, model.SettingLastUsedTheme); err != nil {
		s.logger.Warn("could not read last-used theme", slog.String("error", err.Error()))
	} else if ok {
		if s.themes[theme] {
			session.Theme = theme
		} else {
			s.logger.Warn("last-used theme not recognized, using default",
				slog.String("theme", theme),
				slog.String("default", s.defaultTheme),
			)
		}
	}

	id, ok, err := s.Get(ctx, model.SettingLastUsedSnippet)
	if err != nil {
		s.logger.Warn("could not read last-used snippet", slog.String("error", err.Error()))
		return session
	}
	if !ok {
		return session
	}

	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("last-used snippet no longer resolves, skipping restore",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, apperror.ErrNotFound) {
			if derr := s.repo.DeleteSetting(ctx, model.SettingLastUsedSnippet); derr != nil {
				s.logger.Warn("could not clear stale last-used snippet", slog.String("error", derr.Error()))
			}
		}
		return session
	}

	session.Snippet = snippet
	return session
}

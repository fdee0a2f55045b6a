// Package service contains the engine's business rules: input validation,
// the bounded version-history ring, and session-state handling. Services
// receive repository interfaces, never a concrete store, so every backend
// gets identical behavior.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/snipstudio/snipstudio/apperror"
	"github.com/snipstudio/snipstudio/model"
	"github.com/snipstudio/snipstudio/repository"
)

// SaveParams carries the caller-editable fields of a snippet. Title,
// category, tags and description are stored trimmed; code is stored raw
// (editors hand over the buffer verbatim) but validated on its trimmed form.
type SaveParams struct {
	Title       string
	Category    string
	Code        string
	Tags        string
	Description string
}

// SnippetService handles snippet business logic. Validation happens here,
// once, so every caller gets identical rejection behavior; the store never
// sees invalid input.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

// NewSnippetService wires a snippet service onto a repository.
func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// validate applies the empty-field rule and returns the cleaned params.
func validate(p SaveParams) (SaveParams, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	p.Tags = strings.TrimSpace(p.Tags)
	p.Description = strings.TrimSpace(p.Description)

	if p.Title == "" {
		return p, apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(p.Code) == "" {
		return p, apperror.ValidationFailed("code", "code is required")
	}
	return p, nil
}

// Save is the single mutation entry point: an empty id creates a new
// snippet, a present id updates the existing one. On update the pre-update
// state is pushed onto the history ring before the overwrite; at most
// model.HistoryLimit entries are kept, oldest evicted first.
func (s *SnippetService) Save(ctx context.Context, id string, p SaveParams) (*model.Snippet, error) {
	p, err := validate(p)
	if err != nil {
		return nil, err
	}

	if id == "" {
		return s.create(ctx, p)
	}
	return s.update(ctx, id, p)
}

func (s *SnippetService) create(ctx context.Context, p SaveParams) (*model.Snippet, error) {
	snippet := &model.Snippet{
		Title:       p.Title,
		Category:    p.Category,
		Code:        p.Code,
		Tags:        p.Tags,
		Description: p.Description,
		History:     []model.HistoryEntry{},
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", p.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("title", snippet.Title),
	)
	return snippet, nil
}

func (s *SnippetService) update(ctx context.Context, id string, p SaveParams) (*model.Snippet, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Push the pre-update state onto the ring: keep the most recent
	// HistoryLimit-1 prior entries, then append, so the total never
	// exceeds HistoryLimit.
	history := existing.History
	if len(history) > model.HistoryLimit-1 {
		history = history[len(history)-(model.HistoryLimit-1):]
	}
	history = append(history, model.HistoryEntry{
		Date:        existing.ModifiedAt,
		Code:        existing.Code,
		Description: existing.Description,
	})

	existing.Title = p.Title
	existing.Category = p.Category
	existing.Code = p.Code
	existing.Tags = p.Tags
	existing.Description = p.Description
	existing.History = history

	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", existing.ID),
		slog.String("title", existing.Title),
	)
	return existing, nil
}

// Get retrieves a snippet by id, history included.
func (s *SnippetService) Get(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns (id, title) pairs matching query; an empty query returns
// everything. Pure read, safe to call per keystroke.
func (s *SnippetService) List(ctx context.Context, query string) ([]model.SnippetRef, error) {
	refs, err := s.repo.Search(ctx, query)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	return refs, nil
}

// Delete removes a snippet by id.
func (s *SnippetService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// Categories returns the distinct non-empty categories, recomputed on
// demand rather than cached.
func (s *SnippetService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

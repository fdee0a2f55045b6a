package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/snipstudio/snipstudio/apperror"
	"github.com/snipstudio/snipstudio/model"
	"github.com/snipstudio/snipstudio/repository"
)

// Compile-time check that *DB satisfies the full store interface.
var _ repository.Store = (*DB)(nil)

// refOrder is the shared ordering clause for List and Search: title
// case-insensitively, stable tie-break by id for duplicate titles.
const refOrder = `ORDER BY title COLLATE NOCASE ASC, id ASC`

// Create inserts a new snippet, assigning a fresh xid and both timestamps.
// The xid is URL-safe, globally unique, and sorts by creation time, so IDs
// double as a stable creation order without AUTOINCREMENT.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.ModifiedAt = now

	history, err := marshalHistory(snippet.History)
	if err != nil {
		return fmt.Errorf("sqlite: encoding history: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, title, category, code, tags, description, history, created_at, modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Category,
		snippet.Code,
		snippet.Tags,
		snippet.Description,
		history,
		snippet.CreatedAt,
		snippet.ModifiedAt,
	)
	if err != nil {
		return apperror.PersistenceFailed("sqlite: creating snippet", err)
	}

	return nil
}

// GetByID retrieves a single snippet, history included.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var (
		snippet model.Snippet
		history string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, category, code, tags, description, history, created_at, modified_at
		 FROM snippets
		 WHERE id = ?`,
		id,
	).Scan(
		&snippet.ID,
		&snippet.Title,
		&snippet.Category,
		&snippet.Code,
		&snippet.Tags,
		&snippet.Description,
		&history,
		&snippet.CreatedAt,
		&snippet.ModifiedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, apperror.PersistenceFailed(fmt.Sprintf("sqlite: getting snippet %s", id), err)
	}

	if snippet.History, err = unmarshalHistory(history); err != nil {
		return nil, fmt.Errorf("sqlite: decoding history for %s: %w", id, err)
	}

	return &snippet, nil
}

// List returns every snippet as an (id, title) pair in display order.
func (db *DB) List(ctx context.Context) ([]model.SnippetRef, error) {
	return db.queryRefs(ctx, `SELECT id, title FROM snippets `+refOrder)
}

// Search returns the snippets whose title, category or code contains query
// as a case-insensitive substring, in List order. LIKE metacharacters in the
// query are escaped so the match is always literal.
func (db *DB) Search(ctx context.Context, query string) ([]model.SnippetRef, error) {
	if query == "" {
		return db.List(ctx)
	}

	pattern := "%" + escapeLike(query) + "%"
	return db.queryRefs(ctx,
		`SELECT id, title FROM snippets
		 WHERE title LIKE ? ESCAPE '\'
		    OR category LIKE ? ESCAPE '\'
		    OR code LIKE ? ESCAPE '\' `+refOrder,
		pattern, pattern, pattern,
	)
}

func (db *DB) queryRefs(ctx context.Context, q string, args ...any) ([]model.SnippetRef, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, apperror.PersistenceFailed("sqlite: listing snippets", err)
	}
	defer rows.Close()

	refs := make([]model.SnippetRef, 0)
	for rows.Next() {
		var ref model.SnippetRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.PersistenceFailed("sqlite: iterating snippets", err)
	}

	return refs, nil
}

// Update overwrites title, category, code, tags, description and history,
// and refreshes modified_at. id and created_at are immutable.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.ModifiedAt = time.Now()

	history, err := marshalHistory(snippet.History)
	if err != nil {
		return fmt.Errorf("sqlite: encoding history: %w", err)
	}

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, category = ?, code = ?, tags = ?, description = ?, history = ?, modified_at = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Category,
		snippet.Code,
		snippet.Tags,
		snippet.Description,
		history,
		snippet.ModifiedAt,
		snippet.ID,
	)
	if err != nil {
		return apperror.PersistenceFailed(fmt.Sprintf("sqlite: updating snippet %s", snippet.ID), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	return nil
}

// Delete removes a snippet by id. Same pattern as Update: zero rows
// affected means the id was unknown.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return apperror.PersistenceFailed(fmt.Sprintf("sqlite: deleting snippet %s", id), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// Categories returns the distinct non-empty categories. Values are deduped
// case-insensitively in Go rather than with GROUP BY so that the earliest
// stored casing deterministically wins.
func (db *DB) Categories(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT category FROM snippets WHERE category <> '' ORDER BY id ASC`)
	if err != nil {
		return nil, apperror.PersistenceFailed("sqlite: listing categories", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		folded := strings.ToLower(category)
		if !seen[folded] {
			seen[folded] = true
			categories = append(categories, category)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.PersistenceFailed("sqlite: iterating categories", err)
	}

	sort.Slice(categories, func(i, j int) bool {
		return strings.ToLower(categories[i]) < strings.ToLower(categories[j])
	})
	return categories, nil
}

func marshalHistory(history []model.HistoryEntry) (string, error) {
	if history == nil {
		history = []model.HistoryEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalHistory(raw string) ([]model.HistoryEntry, error) {
	history := make([]model.HistoryEntry, 0)
	if raw == "" {
		return history, nil
	}
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// escapeLike escapes %, _ and the escape character itself so user input
// never acts as a wildcard.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

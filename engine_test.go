package snipstudio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snipstudio/snipstudio/apperror"
	"github.com/snipstudio/snipstudio/clipboard"
	"github.com/snipstudio/snipstudio/model"
)

var drivers = []string{DriverSQLite, DriverJSON}

func testConfig(t *testing.T, driver string) Config {
	t.Helper()
	dir := t.TempDir()
	ext := ".db"
	if driver == DriverJSON {
		ext = ".json"
	}
	return Config{
		Driver:    driver,
		DataPath:  filepath.Join(dir, "snipstudio"+ext),
		BackupDir: filepath.Join(dir, "backups"),
		Clipboard: clipboard.Noop{},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func openTestEngine(t *testing.T, driver string) *Engine {
	t.Helper()
	eng, err := Open(testConfig(t, driver))
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testConfig(t, DriverSQLite)
	cfg.Driver = "postgres"
	_, err := Open(cfg)
	require.Error(t, err)
}

func TestEngine_SaveListSearch(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			eng := openTestEngine(t, driver)
			ctx := context.Background()

			for _, title := range []string{"Gamma", "Alpha", "beta"} {
				_, err := eng.SaveSnippet(ctx, "", SaveParams{Title: title, Code: "x = 1"})
				require.NoError(t, err)
			}

			refs, err := eng.ListSnippets(ctx, "")
			require.NoError(t, err)
			require.Len(t, refs, 3)
			assert.Equal(t, "Alpha", refs[0].Title)
			assert.Equal(t, "beta", refs[1].Title)
			assert.Equal(t, "Gamma", refs[2].Title)

			matches, err := eng.ListSnippets(ctx, "ETA")
			require.NoError(t, err)
			require.Len(t, matches, 1)
			assert.Equal(t, "beta", matches[0].Title)
		})
	}
}

func TestEngine_SaveUpdateGet(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			eng := openTestEngine(t, driver)
			ctx := context.Background()

			id, err := eng.SaveSnippet(ctx, "", SaveParams{
				Title:       "demo",
				Category:    "Go",
				Code:        "v1",
				Description: "first",
			})
			require.NoError(t, err)

			returned, err := eng.SaveSnippet(ctx, id, SaveParams{
				Title:    "demo",
				Category: "Go",
				Code:     "v2",
			})
			require.NoError(t, err)
			assert.Equal(t, id, returned, "update keeps the id stable")

			snippet, err := eng.GetSnippet(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "v2", snippet.Code)
			require.Len(t, snippet.History, 1)
			assert.Equal(t, "v1", snippet.History[0].Code)
			assert.Equal(t, "first", snippet.History[0].Description)
		})
	}
}

func TestEngine_ValidationSurfaces(t *testing.T) {
	eng := openTestEngine(t, DriverSQLite)
	ctx := context.Background()

	_, err := eng.SaveSnippet(ctx, "", SaveParams{Title: "", Code: "x"})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = eng.SaveSnippet(ctx, "", SaveParams{Title: "x", Code: "   "})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	refs, err := eng.ListSnippets(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, refs, "rejected saves must not persist anything")
}

func TestEngine_DeleteClearsLastUsedSnippet(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			eng := openTestEngine(t, driver)
			ctx := context.Background()

			id, err := eng.SaveSnippet(ctx, "", SaveParams{Title: "temp", Code: "x"})
			require.NoError(t, err)
			require.NoError(t, eng.SaveSession(ctx, id, "dracula"))

			require.NoError(t, eng.DeleteSnippet(ctx, id))

			_, ok, err := eng.GetSetting(ctx, model.SettingLastUsedSnippet)
			require.NoError(t, err)
			assert.False(t, ok, "last_used_snippet must be cleared with the delete")

			// The theme is untouched.
			theme, ok, err := eng.GetSetting(ctx, model.SettingLastUsedTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dracula", theme)

			_, err = eng.GetSnippet(ctx, id)
			assert.True(t, errors.Is(err, apperror.ErrNotFound))
		})
	}
}

func TestEngine_RestoreSession(t *testing.T) {
	eng := openTestEngine(t, DriverSQLite)
	ctx := context.Background()

	id, err := eng.SaveSnippet(ctx, "", SaveParams{Title: "session", Code: "x"})
	require.NoError(t, err)
	require.NoError(t, eng.SaveSession(ctx, id, "night_owl"))

	session := eng.RestoreSession(ctx)
	require.NotNil(t, session.Snippet)
	assert.Equal(t, id, session.Snippet.ID)
	assert.Equal(t, "night_owl", session.Theme)
}

func TestEngine_RestoreSession_Defaults(t *testing.T) {
	eng := openTestEngine(t, DriverSQLite)

	session := eng.RestoreSession(context.Background())
	assert.Nil(t, session.Snippet)
	assert.Equal(t, model.DefaultTheme, session.Theme)
}

func TestEngine_BackupPerMutation(t *testing.T) {
	cfg := testConfig(t, DriverJSON)
	eng, err := Open(cfg)
	require.NoError(t, err)
	defer eng.Close()
	ctx := context.Background()

	_, err = eng.SaveSnippet(ctx, "", SaveParams{Title: "backed up", Code: "x"})
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.BackupDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries, "a successful save must leave a snapshot behind")
	assert.Regexp(t, `^backup_\d{8}_\d{6}\.json$`, entries[0].Name())
}

func TestEngine_BackupNow(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			eng := openTestEngine(t, driver)
			ctx := context.Background()

			_, err := eng.SaveSnippet(ctx, "", SaveParams{Title: "keep", Code: "x"})
			require.NoError(t, err)

			path, err := eng.BackupNow(ctx)
			require.NoError(t, err)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestEngine_CopyToClipboard(t *testing.T) {
	eng := openTestEngine(t, DriverJSON)
	assert.NoError(t, eng.CopyToClipboard("print('hi')"))
}

// TestEngine_Reopen covers the round-trip property: a fresh engine on the
// same data file reproduces the identical records.
func TestEngine_Reopen(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			ctx := context.Background()

			eng, err := Open(cfg)
			require.NoError(t, err)

			id, err := eng.SaveSnippet(ctx, "", SaveParams{Title: "persisted", Category: "Go", Code: "v1"})
			require.NoError(t, err)
			_, err = eng.SaveSnippet(ctx, id, SaveParams{Title: "persisted", Category: "Go", Code: "v2"})
			require.NoError(t, err)
			require.NoError(t, eng.Close())

			reopened, err := Open(cfg)
			require.NoError(t, err)
			defer reopened.Close()

			snippet, err := reopened.GetSnippet(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "persisted", snippet.Title)
			assert.Equal(t, "Go", snippet.Category)
			assert.Equal(t, "v2", snippet.Code)
			require.Len(t, snippet.History, 1)
			assert.Equal(t, "v1", snippet.History[0].Code)

			categories, err := reopened.ListCategories(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Go"}, categories)
		})
	}
}

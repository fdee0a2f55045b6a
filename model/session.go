package model

// Setting keys understood by the engine. The settings table is generic
// key/value storage, but callers only ever read and write these two.
const (
	SettingLastUsedSnippet = "last_used_snippet"
	SettingLastUsedTheme   = "last_used_theme"
)

// DefaultTheme is the fallback when the persisted theme name is absent or no
// longer recognized.
const DefaultTheme = "catppuccin"

// DefaultThemes lists the theme identifiers shipped with the reference UI.
// The engine only validates names against this set (or a caller-supplied
// replacement); the color tables themselves belong to the UI collaborator.
var DefaultThemes = []string{
	"catppuccin",
	"dracula",
	"one_dark",
	"tokyo_night",
	"night_owl",
}

// Session is the restored session state handed to the UI at startup.
// Snippet is nil when no last-used snippet was recorded or it no longer
// resolves. Theme is always a recognized identifier.
type Session struct {
	Snippet *Snippet
	Theme   string
}

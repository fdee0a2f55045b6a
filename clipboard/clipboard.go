// Package clipboard is the OS clipboard collaborator. The engine only
// supplies text; everything platform-specific is behind the Clipboard
// interface, with github.com/atotto/clipboard doing the real work.
package clipboard

import (
	atotto "github.com/atotto/clipboard"
)

// Clipboard copies text for the user.
type Clipboard interface {
	WriteText(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) WriteText(text string) error {
	return atotto.WriteAll(text)
}

// Noop discards writes. Useful in tests and headless environments where no
// clipboard exists.
type Noop struct{}

func (Noop) WriteText(string) error {
	return nil
}

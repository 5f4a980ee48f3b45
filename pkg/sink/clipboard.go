package sink

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard delivers text by copying it to the OS clipboard, where a
// clipboard-reading screen reader or translation tool picks it up.
type Clipboard struct{}

// NewClipboard creates a clipboard sink.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Deliver(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	return nil
}

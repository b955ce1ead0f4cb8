package platform

import (
	"errors"

	"github.com/atotto/clipboard"
)

// SystemClipboard is the desktop clipboard reached through xclip, xsel,
// wl-clipboard or the platform API.
type SystemClipboard struct{}

var _ Clipboard = SystemClipboard{}

var errNoClipboardTool = errors.New("no clipboard utility available")

func (SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", errNoClipboardTool
	}
	return clipboard.ReadAll()
}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return errNoClipboardTool
	}
	return clipboard.WriteAll(text)
}

package tui

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard utility found (install wl-clipboard, xclip or xsel)")

// writeClipboard is swapped out in tests.
var writeClipboard = func(s string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(s)
}

func copyToClipboard(s string) error {
	return writeClipboard(strings.ReplaceAll(s, "\r\n", "\n"))
}

package ui

import (
	"github.com/atotto/clipboard"
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// CopyToClipboard copies text and reports whether it worked. Failures are
// expected on headless machines and are never fatal.
func CopyToClipboard(text string) bool {
	if text == "" || clipboard.Unsupported {
		return false
	}
	return clipboardWrite(text) == nil
}

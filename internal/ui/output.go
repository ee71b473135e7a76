package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
)

// SetOutput redirects everything printed by this package and returns a
// function restoring the previous writer.
func SetOutput(w io.Writer) (restore func()) {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return func() {
		outMu.Lock()
		out = prev
		outMu.Unlock()
	}
}

func emit(s string) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintln(out, s)
}

func Title(text string) { emit(TitleStyle.Render(text)) }

func Success(text string) { emit(SuccessStyle.Render("✓ " + text)) }

func Error(text string) { emit(ErrorStyle.Render("✗ " + text)) }

func Warning(text string) { emit(WarningStyle.Render("! " + text)) }

// Dim prints secondary text, indented under the line above it.
func Dim(text string) { emit(DimStyle.Render("  " + text)) }

func Command(text string) { emit(CommandStyle.Render(text)) }

func Box(text string) { emit(BoxStyle.Render(text)) }

func URL(text string) { emit(URLStyle.Render(text)) }

func Print(text string) { emit(text) }

func Line() { emit("") }

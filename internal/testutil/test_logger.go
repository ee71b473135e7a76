package testutil

import (
	"bytes"
	"io"
	"os"

	"github.com/rs/zerolog"
)

func NewTestLogger() *zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	return &logger
}

// NewBufferedLogger writes JSON lines into the returned buffer so tests can
// assert on fields, while still echoing to stdout for go test -v.
func NewBufferedLogger() (*zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	consoleWriter := zerolog.ConsoleWriter{
		Out: os.Stdout,
	}
	logger := zerolog.New(io.MultiWriter(consoleWriter, &buf)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
	return &logger, &buf
}

func NewDiscardLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

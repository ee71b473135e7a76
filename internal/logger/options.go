package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

type config struct {
	output    io.Writer
	level     zerolog.Level
	console   bool
	timestamp bool
}

type Option func(*config)

// WithLevel accepts zerolog level names; anything unknown means info.
func WithLevel(level string) Option {
	return func(c *config) {
		c.level = parseLevel(level)
	}
}

// WithConsoleWriter switches between pretty console output and JSON lines.
func WithConsoleWriter(enabled bool) Option {
	return func(c *config) {
		c.console = enabled
	}
}

func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

func WithTimestamp(enabled bool) Option {
	return func(c *config) {
		c.timestamp = enabled
	}
}

func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Package logger builds the zerolog loggers used across the CLI.
package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	DefaultLogLevel = "info"

	// LevelEnvVar and FormatEnvVar override the console defaults, e.g. for CI runs.
	LevelEnvVar  = "BOTDASH_LOG_LEVEL"
	FormatEnvVar = "BOTDASH_LOG_FORMAT"
)

// New returns a logger writing to stdout at info level with the human
// readable console format unless options say otherwise.
func New(opts ...Option) *zerolog.Logger {
	cfg := config{
		output:  os.Stdout,
		level:   zerolog.InfoLevel,
		console: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := cfg.output
	if cfg.console {
		out = zerolog.ConsoleWriter{
			Out:          cfg.output,
			PartsExclude: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
		}
	}

	ctx := zerolog.New(out).Level(cfg.level).With()
	if cfg.timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	return &logger
}

// NewConsoleLogger is the logger commands start with: stderr, so it never
// mixes with command output, and JSON lines when BOTDASH_LOG_FORMAT=json.
func NewConsoleLogger() *zerolog.Logger {
	level := DefaultLogLevel
	if v := os.Getenv(LevelEnvVar); v != "" {
		level = v
	}
	jsonFormat := strings.EqualFold(os.Getenv(FormatEnvVar), "json")

	return New(
		WithLevel(level),
		WithOutput(os.Stderr),
		WithConsoleWriter(!jsonFormat),
		WithTimestamp(jsonFormat),
	)
}

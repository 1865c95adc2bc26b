// Package logging provides the shared zerolog bootstrap used by
// cmd/selfos-engine and its components, following the teacher's
// log.With().Str("component", "...").Logger() child-logger convention
// (pkg/connector/provider_openai.go, provider_anthropic.go).
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the root logger for the process. level is parsed with
// zerolog.ParseLevel, falling back to info on an empty or invalid value.
// pretty selects a human-readable console writer (local development) over
// structured JSON (production).
func New(level string, pretty bool) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}

	var writer zerolog.ConsoleWriter
	if pretty {
		writer = zerolog.NewConsoleWriter()
		writer.Out = os.Stderr
		return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}

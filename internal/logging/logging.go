package logging

import (
	"io"
	"os"

	"cursed-focus/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var activeWriter io.Writer = os.Stdout

// Init configures the global zerolog logger. When cfg.File is set, output
// goes to a size-limited file instead of stdout.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	if cfg.File != "" {
		if w, werr := newSizeLimitedWriter(cfg.File, cfg.MaxMB); werr == nil {
			output = w
		}
	}
	activeWriter = output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer exposes the active output for the request-log slog bridge.
func Writer() io.Writer {
	return activeWriter
}

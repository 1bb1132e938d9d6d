package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// MaxSizeMB is the size in megabytes at which the log file is rotated.
	MaxSizeMB = 5
	// MaxBackups is the number of rotated files kept next to the log.
	MaxBackups = 3
)

// New returns a new logger that writes JSON to the specified file.
// If file is empty, logs are written to stdout. Each run appends to the
// file so short-lived commands keep a history; the file rotates once it
// grows past MaxSizeMB.
//
// The level parameter can be one of: debug, info, warn, error, fatal.
func New(level string, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stdout
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		rolling := newRollingFile(file, MaxSizeMB)
		closer = func() { _ = rolling.Close() }
		writer = rolling
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger().
		Level(lvl)

	return l, closer, nil
}

func newRollingFile(file string, maxSizeMB int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxBackups: MaxBackups,
		LocalTime:  true,
	}
}

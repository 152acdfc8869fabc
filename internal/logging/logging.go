// Package logging routes the standard logger to stderr and, when configured,
// to a size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/unklstewy/b200-landing/pkg/config"
)

// Setup points the standard logger at the configured outputs and returns a
// closer for the log file. Full-screen programs pass console=false so log
// output does not draw over the terminal UI.
func Setup(cfg config.LoggingConfig, console bool) (io.Closer, error) {
	var writers []io.Writer
	if console {
		writers = append(writers, os.Stderr)
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, err
		}
		w := NewFileWriter(cfg)
		writers = append(writers, w)
		closer = w
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return closer, nil
}

// NewFileWriter returns a rotating writer for cfg.File.
func NewFileWriter(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB, // MB
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

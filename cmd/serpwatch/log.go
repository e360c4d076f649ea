package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/serpwatch"
)

// NewLogger returns a text logger writing to w and, when cfg.Path is set,
// appending to that file as well. The returned close function releases
// the file.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, serpwatch.Errorf(serpwatch.EINVALID, "invalid log level %q", cfg.Level)
	}

	closeFn := func() error { return nil }
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(w, f)
		closeFn = f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

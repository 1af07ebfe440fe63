// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"taskmaster/app/config"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured from c and a cleanup func closing any
// file it opened.
func New(c config.Log) (*logrus.Logger, func(), error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch c.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	cleanup := func() {}
	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		f, err := openFile(c.File)
		if err != nil {
			return nil, nil, err
		}
		l.SetOutput(f)
		cleanup = func() { _ = f.Close() }
	case "discard":
		l.SetOutput(io.Discard)
	default:
		l.SetOutput(os.Stderr)
	}

	return l, cleanup, nil
}

func openFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log output is file but no log file is set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
}

// Discard returns a logger that writes nothing, for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Package logging builds the zerolog loggers used across minderal.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects logger options. Start with New and finish with Make.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
	pretty bool
}

func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.WarnLevel}
}

// ToWriter sends log lines to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// ToFile appends log lines to the file at path.
func (b *Build) ToFile(path string) *Build {
	b.path = path
	return b
}

// Level parses a level name such as "debug" or "warn". Unknown names keep
// the current level.
func (b *Build) Level(name string) *Build {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name))); err == nil && name != "" {
		b.level = lvl
	}
	return b
}

// Pretty switches to the human readable console format.
func (b *Build) Pretty(pretty bool) *Build {
	b.pretty = pretty
	return b
}

// Make returns the logger and a close func for any file it opened.
func (b *Build) Make() (zerolog.Logger, func() error, error) {
	w := b.writer
	closer := func() error { return nil }
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("logging: open %s: %w", b.path, err)
		}
		w = zerolog.SyncWriter(f)
		closer = f.Close
	}
	if b.pretty {
		w = zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}
	}
	return zerolog.New(w).Level(b.level).With().Timestamp().Logger(), closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

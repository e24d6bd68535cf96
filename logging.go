package sheetdb

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NewLogger returns a slog.Logger writing colorized output to f when it
// is a terminal, plain text otherwise.
func NewLogger(f *os.File, level slog.Leveler) *slog.Logger {
	return slog.New(tint.NewHandler(colorable.NewColorable(f), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(f.Fd()),
	}))
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/internal/logging"
)

// NewLogger configures the application logger.
// Debug forces debug level; otherwise level comes from configuration.
func NewLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

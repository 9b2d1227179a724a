package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the intake banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _       _        _        ", "#22d3ee"},
		{"(_)_ __ | |_ __ _| | _____ ", "#38bdf8"},
		{"| | '_ \\| __/ _` | |/ / _ \\", "#60a5fa"},
		{"| | | | | || (_| |   <  __/", "#818cf8"},
		{"|_|_| |_|\\__\\__,_|_|\\_\\___|", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __ ___   __ _ ___       | | __ _| |__ ", "#818cf8"},
		{" | '_ ` _ \\ / _` / __|_____ | |/ _` | '_ \\", "#a78bfa"},
		{" | | | | | | (_| \\__ \\_____|| | (_| | |_) |", "#c084fc"},
		{" |_| |_| |_|\\__,_|___/      |_|\\__,_|_.__/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintf(w, "  %s\n\n", termenv.String("v"+version).Faint())
}

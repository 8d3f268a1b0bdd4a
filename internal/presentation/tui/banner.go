package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"                 _                             _", "#34d399"},
	{" _ __   ___   __| | ___  __ _ _ __ __ _ _ __ | |__", "#2dd4bf"},
	{"| '_ \\ / _ \\ / _` |/ _ \\/ _` | '__/ _` | '_ \\| '_ \\", "#22d3ee"},
	{"| | | | (_) | (_| |  __/ (_| | | | (_| | |_) | | | |", "#38bdf8"},
	{"|_| |_|\\___/ \\__,_|\\___|\\__, |_|  \\__,_| .__/|_| |_|", "#60a5fa"},
	{"                        |___/          |_|", "#818cf8"},
}

// PrintBanner writes the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

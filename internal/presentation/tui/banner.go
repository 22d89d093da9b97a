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
	{" _              _     _              _ ", "#34d399"},
	{"| |_ ___   ___ | |___| |__   ___  __| |", "#2dd4bf"},
	{"| __/ _ \\ / _ \\| / __| '_ \\ / _ \\/ _` |", "#22d3ee"},
	{"| || (_) | (_) | \\__ \\ | | |  __/ (_| |", "#38bdf8"},
	{" \\__\\___/ \\___/|_|___/_| |_|\\___|\\__,_|", "#60a5fa"},
}

// PrintBanner writes the toolshed banner and version to w.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  "+version).Faint())
	fmt.Fprintln(w)
}

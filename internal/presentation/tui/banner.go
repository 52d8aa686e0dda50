package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tablebot banner to w using the terminal's color
// profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` _        _     _      _           _   `, "#f59e0b"},
		{`| |_ __ _| |__ | | ___| |__   ___ | |_ `, "#f97316"},
		{`| __/ _' | '_ \| |/ _ \ '_ \ / _ \| __|`, "#ef4444"},
		{`| || (_| | |_) | |  __/ |_) | (_) | |_ `, "#ec4899"},
		{` \__\__,_|_.__/|_|\___|_.__/ \___/ \__|`, "#d946ef"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

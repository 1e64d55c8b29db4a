package display

import (
	"fmt"
	"io"

	"github.com/backmassage/synothumb/internal/term"
)

// PrintBanner prints the ASCII art banner to w; uses Magenta if colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` ____                    _____ _                     _
/ ___| _   _ _ __   ___ |_   _| |__  _   _ _ __ ___ | |__
\___ \| | | | '_ \ / _ \  | | | '_ \| | | | '_ `+"`"+` _ \| '_ \
 ___) | |_| | | | | (_) | | | | | | | |_| | | | | | | |_) |
|____/ \__, |_| |_|\___/  |_| |_| |_|\__,_|_| |_| |_|_.__/
       |___/
`)
	fmt.Fprintln(w, term.NC)
}

package display

import (
	"fmt"
	"io"

	"github.com/backmassage/thumbvtt/internal/term"
)

const banner = ` _   _                     _         _   _
| |_| |__  _   _ _ __ ___ | |____   _| |_| |_
| __| '_ \| | | | '_ ` + "`" + ` _ \| '_ \ \ / / __| __|
| |_| | | | |_| | | | | | | |_) \ V /| |_| |_
 \__|_| |_|\__,_|_| |_| |_|_.__/ \_/  \__|\__|`

// PrintBanner prints the ASCII art banner, in magenta when colors are on.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Paint(term.Magenta, banner))
	fmt.Fprintln(w)
}

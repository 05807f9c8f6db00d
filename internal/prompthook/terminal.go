package prompthook

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// TitlePrefix marks a title set while the request is being processed
const TitlePrefix = "♻️ "

// SetTitle writes title using the OSC 0 (icon and window), OSC 2 (window)
// and OSC 30 (Konsole tab) sequences so most terminals pick one up. Write
// errors are ignored: a missing title is cosmetic.
func SetTitle(w io.Writer, title string) {
	title = sanitizeTitle(title)

	out := termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	_, _ = fmt.Fprintf(w, "%s0;%s%c", termenv.OSC, title, termenv.BEL)
	out.SetWindowTitle(title)
	_, _ = fmt.Fprintf(w, "%s30;%s%c", termenv.OSC, title, termenv.BEL)
}

// sanitizeTitle removes control characters that would end the escape
// sequence early.
func sanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, title)
}

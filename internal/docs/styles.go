package docs

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// console writes the updater's progress lines
type console struct {
	w io.Writer
}

func (c console) line(style lipgloss.Style, format string, args ...any) {
	if c.w == nil {
		return
	}
	_, _ = fmt.Fprintln(c.w, style.Render(fmt.Sprintf(format, args...)))
}

func (c console) ok(format string, args ...any)   { c.line(okStyle, "✅ "+format, args...) }
func (c console) warn(format string, args ...any) { c.line(warnStyle, "⚠️  "+format, args...) }
func (c console) info(format string, args ...any) { c.line(infoStyle, format, args...) }
func (c console) head(format string, args ...any) { c.line(headStyle, format, args...) }

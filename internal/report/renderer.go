package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rivo/uniseg"

	"github.com/sflynlang/sflync/internal/position"
)

// stylesheet is the set of ANSI escapes used to colorize a rendering. The
// teacher's renderer writes these by hand rather than reaching for a color
// library, so this does too.
type stylesheet struct {
	reset, bold, dim          string
	errorColor, errorBold     string
	noteColor                string
}

var colorStyle = stylesheet{
	reset:      "\033[0m",
	bold:       "\033[1m",
	dim:        "\033[2m",
	errorColor: "\033[0;31m",
	errorBold:  "\033[1;31m",
	noteColor:  "\033[0;36m",
}

var plainStyle = stylesheet{}

// Renderer writes Diagnostics to a sink, underlining the offending source
// range with an excerpt of the line it occurs on.
type Renderer struct {
	Writer io.Writer
	Buffer *position.Buffer

	// Color forces color on/off. If nil, color is auto-detected from
	// whether Writer is a terminal (via go-isatty), matching spec.md
	// §4.A's "using color when the sink supports it".
	Color *bool
}

func (r *Renderer) useColor() bool {
	if r.Color != nil {
		return *r.Color
	}
	if f, ok := r.Writer.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func (r *Renderer) style() stylesheet {
	if r.useColor() {
		return colorStyle
	}
	return plainStyle
}

// Render writes one Diagnostic as a titled, underlined source excerpt.
// Rendering never mutates the Positions it reads.
func (r *Renderer) Render(d *Diagnostic) {
	c := r.style()

	fmt.Fprintf(r.Writer, "%s%serror[%s]%s: %s\n", c.errorBold, "", d.Kind.Title(), c.reset, d.Message)

	for i, a := range d.Annotations {
		r.renderAnnotation(a, i == 0)
	}
	fmt.Fprintln(r.Writer)
}

func (r *Renderer) renderAnnotation(a Annotation, primary bool) {
	c := r.style()
	pos := a.Position
	line := r.Buffer.Line(pos.Line)

	gutter := fmt.Sprintf(" %d | ", pos.Line)
	fmt.Fprintf(r.Writer, "%s%s\n", c.dim, strings.Repeat(" ", len(gutter)-1)+"|")
	fmt.Fprintf(r.Writer, "%s%s%s%s\n", c.reset, gutter, c.reset, line)

	col := columnWidth(line, pos.Column-1)
	width := pos.Len()
	if width < 1 {
		width = 1
	}
	underlineWidth := columnWidth(line[min(pos.Column-1, len(line)):], width)
	if underlineWidth < 1 {
		underlineWidth = 1
	}

	marker := "^"
	if !primary {
		marker = "-"
	}
	markerColor := c.errorColor
	if !primary {
		markerColor = c.noteColor
	}

	fmt.Fprintf(r.Writer, "%s%s%s%s", c.dim, strings.Repeat(" ", len(gutter)-1)+"|", c.reset, strings.Repeat(" ", col))
	fmt.Fprintf(r.Writer, "%s%s%s", markerColor, strings.Repeat(marker, underlineWidth), c.reset)
	if a.Message != "" {
		fmt.Fprintf(r.Writer, " %s", a.Message)
	}
	fmt.Fprintln(r.Writer)
}

// columnWidth measures the rendered width, in terminal cells, of the first n
// bytes of s, accounting for multi-byte runes and tab stops the way the
// teacher's renderer does.
func columnWidth(s string, n int) int {
	if n > len(s) {
		n = len(s)
	}
	if n < 0 {
		n = 0
	}
	prefix := s[:n]
	width := 0
	for prefix != "" {
		if prefix[0] == '\t' {
			width += 4 - (width % 4)
			prefix = prefix[1:]
			continue
		}
		cluster, rest, w, _ := uniseg.FirstGraphemeClusterInString(prefix, -1)
		if cluster == "" {
			break
		}
		width += w
		prefix = rest
	}
	return width
}

// RenderAll writes every Diagnostic in order.
func (r *Renderer) RenderAll(diags []*Diagnostic) {
	for _, d := range diags {
		r.Render(d)
	}
}

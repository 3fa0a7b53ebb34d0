package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/verte-zerg/legipwd/internal/alphabet"
)

const columnGap = "   "

func classStyles(r *lipgloss.Renderer) map[alphabet.Class]lipgloss.Style {
	return map[alphabet.Class]lipgloss.Style{
		alphabet.Lower:   r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		alphabet.Upper:   r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
		alphabet.Digit:   r.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		alphabet.Special: r.NewStyle().Foreground(lipgloss.Color("#4DB6FF")),
	}
}

// Printer writes a password batch between START and END markers.
type Printer struct {
	w         io.Writer
	alpha     *alphabet.Alphabet
	chunkSize int
	color     bool
	width     int
	frame     bool
	styles    map[alphabet.Class]lipgloss.Style
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithColor styles every character by its class. Escape codes are written
// even when w is not a terminal.
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) { p.color = enabled }
}

// WithWidth lays passwords out in as many columns as fit into width cells.
// Zero prints one password per line.
func WithWidth(width int) PrinterOption {
	return func(p *Printer) { p.width = width }
}

// WithFrame toggles the START/END markers.
func WithFrame(enabled bool) PrinterOption {
	return func(p *Printer) { p.frame = enabled }
}

// NewPrinter returns a plain, framed, one-per-line printer.
func NewPrinter(w io.Writer, alpha *alphabet.Alphabet, opts ...PrinterOption) *Printer {
	p := &Printer{
		w:         w,
		alpha:     alpha,
		chunkSize: ChunkSize,
		frame:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.color {
		out := p.w
		if out == nil {
			out = io.Discard
		}
		r := lipgloss.NewRenderer(out)
		r.SetColorProfile(termenv.ANSI256)
		p.styles = classStyles(r)
	}
	return p
}

// Print writes all passwords.
func (p *Printer) Print(passwords []string) error {
	if p.frame {
		if err := p.writeLines("START", " "); err != nil {
			return err
		}
	}
	if err := p.writeLines(p.Lines(passwords)...); err != nil {
		return err
	}
	if p.frame {
		if err := p.writeLines(" ", "END"); err != nil {
			return err
		}
	}
	return nil
}

// Lines renders passwords into output lines without the frame.
func (p *Printer) Lines(passwords []string) []string {
	cells := make([]string, len(passwords))
	cellWidth := 0
	for i, pw := range passwords {
		cells[i] = Chunk(pw, p.chunkSize)
		if w := runewidth.StringWidth(cells[i]); w > cellWidth {
			cellWidth = w
		}
	}
	cols := ColumnsFor(p.width, cellWidth)

	lines := make([]string, 0, (len(cells)+cols-1)/cols)
	for start := 0; start < len(cells); start += cols {
		end := start + cols
		if end > len(cells) {
			end = len(cells)
		}
		var b strings.Builder
		for i := start; i < end; i++ {
			cell := cells[i]
			rendered := p.style(cell)
			if i > start {
				b.WriteString(columnGap)
			}
			b.WriteString(rendered)
			if i < end-1 {
				b.WriteString(strings.Repeat(" ", cellWidth-runewidth.StringWidth(cell)))
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// ColumnsFor returns how many cells of cellWidth fit into width.
func ColumnsFor(width, cellWidth int) int {
	if width <= 0 || cellWidth <= 0 {
		return 1
	}
	gap := runewidth.StringWidth(columnGap)
	cols := (width + gap) / (cellWidth + gap)
	if cols < 1 {
		return 1
	}
	return cols
}

func (p *Printer) style(cell string) string {
	if p.styles == nil || p.alpha == nil {
		return cell
	}
	var b strings.Builder
	for _, r := range cell {
		class, err := p.alpha.ClassOf(r)
		if err != nil {
			b.WriteRune(r)
			continue
		}
		b.WriteString(p.styles[class].Render(string(r)))
	}
	return b.String()
}

func (p *Printer) writeLines(lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

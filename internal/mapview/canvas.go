package mapview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Cell is a single canvas cell with character and colors
type Cell struct {
	Char rune
	FG   colorful.Color
	BG   colorful.Color
	Bold bool
}

// Canvas is a grid of cells rendered as styled terminal text
type Canvas struct {
	width  int
	height int
	cells  [][]Cell
}

// NewCanvas creates a blank canvas
func NewCanvas(width, height int) *Canvas {
	width = max(width, 0)
	height = max(height, 0)
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = Cell{Char: ' '}
		}
	}
	return &Canvas{width: width, height: height, cells: cells}
}

// Width returns the canvas width in cells
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in cells
func (c *Canvas) Height() int { return c.height }

// In reports whether (x, y) is on the canvas
func (c *Canvas) In(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// At returns the cell at (x, y)
func (c *Canvas) At(x, y int) Cell {
	if !c.In(x, y) {
		return Cell{}
	}
	return c.cells[y][x]
}

// Set replaces the cell at (x, y)
func (c *Canvas) Set(x, y int, cell Cell) {
	if c.In(x, y) {
		c.cells[y][x] = cell
	}
}

// SetGlyph draws ch in fg keeping the cell background
func (c *Canvas) SetGlyph(x, y int, ch rune, fg colorful.Color) {
	if c.In(x, y) {
		c.cells[y][x].Char = ch
		c.cells[y][x].FG = fg
	}
}

// Text writes s starting at (x, y) and returns the number of cells used
func (c *Canvas) Text(x, y int, s string, fg, bg colorful.Color, bold bool) int {
	n := 0
	for _, ch := range s {
		c.Set(x+n, y, Cell{Char: ch, FG: fg, BG: bg, Bold: bold})
		n++
	}
	return n
}

// Box draws a bordered rectangle filled with bg
func (c *Canvas) Box(x, y, w, h int, border, bg colorful.Color) {
	if w < 2 || h < 2 {
		return
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			ch := ' '
			switch {
			case yy == y && xx == x:
				ch = '╭'
			case yy == y && xx == x+w-1:
				ch = '╮'
			case yy == y+h-1 && xx == x:
				ch = '╰'
			case yy == y+h-1 && xx == x+w-1:
				ch = '╯'
			case yy == y || yy == y+h-1:
				ch = '─'
			case xx == x || xx == x+w-1:
				ch = '│'
			}
			c.Set(xx, yy, Cell{Char: ch, FG: border, BG: bg})
		}
	}
}

// Plain returns the canvas characters without styling
func (c *Canvas) Plain() string {
	var sb strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			sb.WriteRune(cell.Char)
		}
	}
	return sb.String()
}

// Render renders the canvas to a string, one styled run per color change
func (c *Canvas) Render() string {
	var sb strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && sameStyle(row[x], row[start]) {
				continue
			}
			var run strings.Builder
			for _, cell := range row[start:x] {
				run.WriteRune(cell.Char)
			}
			st := lipgloss.NewStyle().
				Foreground(lipgloss.Color(row[start].FG.Hex())).
				Background(lipgloss.Color(row[start].BG.Hex())).
				Bold(row[start].Bold)
			sb.WriteString(st.Render(run.String()))
			start = x
		}
	}
	return sb.String()
}

func sameStyle(a, b Cell) bool {
	return a.FG == b.FG && a.BG == b.BG && a.Bold == b.Bold
}

package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// ink is the summed color of every dot plotted into a cell.
type ink struct {
	r, g, b float64
	n       int
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	ink           [][]ink
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		ink:    make([][]ink, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]ink, w)
	}
	c.Clear()
	return c
}

// Size is the canvas extent in sub-pixels.
func (c *Canvas) Size() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col = x / 2
	row = y / 4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

// Set lights the sub-pixel (x, y) without adding color.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Plot lights (x, y) and adds col to its cell. Colors in a cell add up, so
// dense regions glow.
func (c *Canvas) Plot(x, y int, col colorful.Color) {
	row, cl, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][cl] |= rune(pixelMap[y%4][x%2])
	k := &c.ink[row][cl]
	k.r += col.R
	k.g += col.G
	k.b += col.B
	k.n++
}

// Disc plots a filled square of radius r around (x, y).
func (c *Canvas) Disc(x, y, r int, col colorful.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c.Plot(x+dx, y+dy, col)
		}
	}
}

func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < brailleBase {
		c.Grid[row][col] = brailleBase
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
			c.ink[i][j] = ink{}
		}
	}
}

// CellColor is the displayed color of a cell: the mean of its dots,
// brightened by how many landed there. Cells lit by Set alone are white.
func (c *Canvas) CellColor(row, col int) (colorful.Color, bool) {
	k := c.ink[row][col]
	if k.n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}, c.Grid[row][col] != brailleBase
	}
	n := float64(k.n)
	mean := colorful.Color{R: k.r / n, G: k.g / n, B: k.b / n}
	gain := 1 + 0.08*float64(k.n-1)
	if gain > 1.8 {
		gain = 1.8
	}
	return colorful.Color{R: mean.R * gain, G: mean.G * gain, B: mean.B * gain}.Clamped(), true
}

// Dot reports whether sub-pixel (x, y) is lit and its cell's color.
func (c *Canvas) Dot(x, y int) (colorful.Color, bool) {
	row, col, ok := c.cell(x, y)
	if !ok || c.Grid[row][col]&rune(pixelMap[y%4][x%2]) == 0 {
		return colorful.Color{}, false
	}
	return c.CellColor(row, col)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the canvas without color.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the canvas with a foreground color per cell. Runs of cells
// sharing a color are styled together.
func (c *Canvas) Render(bg colorful.Color) string {
	var b strings.Builder
	base := lipgloss.NewStyle().Background(lipgloss.Color(bg.Hex()))
	for row := range c.Grid {
		var run strings.Builder
		runHex := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := base
			if runHex != "" {
				st = st.Foreground(lipgloss.Color(runHex))
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for col, r := range c.Grid[row] {
			hex := ""
			if clr, ok := c.CellColor(row, col); ok {
				hex = clr.Hex()
			}
			if hex != runHex {
				flush()
				runHex = hex
			}
			run.WriteRune(r)
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
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

const brailleBlank = 0x2800

// Canvas is a grid of braille cells, each holding 2x4 sub-pixels. Sub-pixel
// (0, 0) is the top-left corner.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	// ink holds pen+1 of the last pen that lit each cell, 0 for none.
	ink [][]int
	pen int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid to w x h cells and clears it.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.ink = make([][]int, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.ink[i] = make([]int, w)
	}
	c.Clear()
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// SetPen selects the palette index used by following draws. A negative
// pen draws uncoloured.
func (c *Canvas) SetPen(i int) { c.pen = i }

// Set lights the sub-pixel at (x, y). Out-of-range points are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
		c.ink[row][col] = c.pen + 1
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] = (c.Grid[row][col] &^ bit) | brailleBlank
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.ink[i][j] = 0
		}
	}
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

// DrawCircle draws the outline of a circle with the midpoint algorithm.
// r < 1 lights the centre only.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r < 1 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		c.Set(cx+x, cy+y)
		c.Set(cx-x, cy+y)
		c.Set(cx+x, cy-y)
		c.Set(cx-x, cy-y)
		c.Set(cx+y, cy+x)
		c.Set(cx-y, cy+x)
		c.Set(cx+y, cy-x)
		c.Set(cx-y, cy-x)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// FillCircle lights every sub-pixel within r of the centre.
func (c *Canvas) FillCircle(cx, cy, r int) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

// DrawRect outlines the sub-pixel rectangle with corners (x0, y0), (x1, y1).
func (c *Canvas) DrawRect(x0, y0, x1, y1 int) {
	c.DrawLine(x0, y0, x1, y0)
	c.DrawLine(x1, y0, x1, y1)
	c.DrawLine(x1, y1, x0, y1)
	c.DrawLine(x0, y1, x0, y0)
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is String with every cell coloured by the palette entry of the pen
// that last lit it.
func (c *Canvas) Render(palette []lipgloss.Color) string {
	if len(palette) == 0 {
		return c.String()
	}
	styles := make([]lipgloss.Style, len(palette))
	for i, col := range palette {
		styles[i] = lipgloss.NewStyle().Foreground(col)
	}

	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.ink[i][j] == c.ink[i][start] {
				continue
			}
			run := string(row[start:j])
			if pen := c.ink[i][start] - 1; pen >= 0 {
				run = styles[pen%len(styles)].Render(run)
			}
			b.WriteString(run)
			start = j
		}
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

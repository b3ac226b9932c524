package viz

import (
	"math"
	"strings"
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

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
	return c
}

// Set turns on the sub-pixel (x, y). The canvas is Width*2 by Height*4
// sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
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

// DrawEllipse traces an axis-aligned ellipse with radii rx, ry sub-pixels.
func (c *Canvas) DrawEllipse(cx, cy int, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		c.Set(cx, cy)
		return
	}
	n := int(4 * math.Ceil(math.Max(rx, ry)*math.Pi))
	if n < 8 {
		n = 8
	}
	px, py := cx+int(math.Round(rx)), cy
	for i := 1; i <= n; i++ {
		phi := 2 * math.Pi * float64(i) / float64(n)
		x := cx + int(math.Round(rx*math.Cos(phi)))
		y := cy + int(math.Round(ry*math.Sin(phi)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Rings draws one circle per containment radius (deg) on a w x h character
// canvas spanning extent deg from the center along the shorter side.
func Rings(radii []float64, extent float64, w, h int) *Canvas {
	c := NewCanvas(w, h)
	if !(extent > 0) {
		return c
	}
	cx, cy := w, 2*h
	scale := math.Min(float64(w), float64(2*h)) / extent
	c.DrawLine(cx-2, cy, cx+2, cy)
	c.DrawLine(cx, cy-2, cx, cy+2)
	for _, r := range radii {
		if math.IsNaN(r) || math.IsInf(r, 0) || r > extent {
			continue
		}
		c.DrawEllipse(cx, cy, r*scale, r*scale)
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

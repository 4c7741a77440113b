package viz

import (
	"strings"

	"github.com/san-kum/ergobox/internal/dynamo"
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
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y); the canvas is Width*2 by Height*4
// sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawFrame outlines the sub-pixel border.
func (c *Canvas) DrawFrame() {
	w, h := c.Width*2-1, c.Height*4-1
	for x := 0; x <= w; x++ {
		c.Set(x, 0)
		c.Set(x, h)
	}
	for y := 0; y <= h; y++ {
		c.Set(0, y)
		c.Set(w, y)
	}
}

// Plot lights the sub-pixel of p projected onto the canvas. The second
// projected axis grows upward.
func (c *Canvas) Plot(box dynamo.Box, proj Projection, p dynamo.Vec3) {
	x, y := c.toPixel(box, proj, p)
	c.Set(x, y)
}

func (c *Canvas) toPixel(box dynamo.Box, proj Projection, p dynamo.Vec3) (int, int) {
	a, b := proj.Axes()
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)
	x := int(p.Component(a)/box.L*w + 0.5)
	y := int((1-p.Component(b)/box.L)*h + 0.5)
	return x, y
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Projection selects the two axes drawn on the canvas.
type Projection int

const (
	ProjectXY Projection = iota
	ProjectXZ
	ProjectYZ
)

func (p Projection) Axes() (dynamo.Axis, dynamo.Axis) {
	switch p {
	case ProjectXZ:
		return dynamo.AxisX, dynamo.AxisZ
	case ProjectYZ:
		return dynamo.AxisY, dynamo.AxisZ
	default:
		return dynamo.AxisX, dynamo.AxisY
	}
}

func (p Projection) String() string {
	a, b := p.Axes()
	return a.String() + b.String()
}

// Next cycles xy -> xz -> yz -> xy.
func (p Projection) Next() Projection { return (p + 1) % 3 }

func ParseProjection(s string) (Projection, bool) {
	for p := ProjectXY; p <= ProjectYZ; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return ProjectXY, false
}

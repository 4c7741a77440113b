package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/viz"
)

// Braille dot bits by sub-pixel row and column.
var dotBits = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

// CanvasToSVG draws every lit Braille sub-pixel of canvas as a circle,
// scale units apart.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString("<g fill=\"#00ff00\">\n")

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 {
				continue
			}
			pattern := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws the path of one particle from recorded rows of
// x0,y0,z0,x1,... projected onto proj, inside the outline of the box.
// Box coordinates map onto a size x size square with the second axis
// growing upward.
func TrajectoryToSVG(box dynamo.Box, positions [][]float64, particle int, proj viz.Projection, size int, strokeColor string) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("svg size must be positive, got %d", size)
	}
	if particle < 0 {
		return "", fmt.Errorf("particle %d not recorded", particle)
	}
	a, b := proj.Axes()
	ia, ib := 3*particle+int(a), 3*particle+int(b)
	for i, row := range positions {
		if ib >= len(row) || ia >= len(row) {
			return "", fmt.Errorf("particle %d not recorded in row %d", particle, i)
		}
	}

	s := float64(size)
	toSVG := func(u, v float64) (float64, float64) {
		return u / box.L * s, (1 - v/box.L) * s
	}

	var sb strings.Builder
	header(&sb, s, s)
	fmt.Fprintf(&sb, "<rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"#444444\" stroke-width=\"2\"/>\n", size, size)

	if len(positions) >= 2 {
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", strokeColor)
		for i, row := range positions {
			x, y := toSVG(row[ia], row[ib])
			if i == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ergobox/internal/dynamo"
)

// PlotSeries draws data as an ASCII line graph.
func PlotSeries(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// PlotProfile draws a marginal occupancy profile against the uniform
// level 1/len(profile).
func PlotProfile(profile []float64, caption string) string {
	if len(profile) == 0 {
		return ""
	}
	uniform := make([]float64, len(profile))
	for i := range uniform {
		uniform[i] = 1 / float64(len(profile))
	}
	return asciigraph.PlotMany([][]float64{profile, uniform},
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.LowerBound(0),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Gray),
		asciigraph.Caption(caption),
	)
}

// RenderProjection draws every recorded position of a trajectory table
// (rows of flattened x,y,z triples) as a density of dots.
func RenderProjection(box dynamo.Box, positions [][]float64, proj Projection, w, h int) string {
	c := NewCanvas(w, h)
	c.DrawFrame()
	for _, row := range positions {
		for i := 0; i+2 < len(row); i += 3 {
			c.Plot(box, proj, dynamo.Vec3{X: row[i], Y: row[i+1], Z: row[i+2]})
		}
	}
	a, b := proj.Axes()
	return fmt.Sprintf("%s%s right, %s up\n", c.String(), a, b)
}

// Column extracts column idx from each row; short rows yield 0.
func Column(rows [][]float64, idx int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// Heading is a bold title with an underline of matching width.
func Heading(s string) string {
	return titleStyle.Render(s) + "\n" + strings.Repeat("─", len(s))
}

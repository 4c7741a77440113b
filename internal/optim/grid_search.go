package optim

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ergobox/internal/experiment"
	"github.com/san-kum/ergobox/internal/sim"
)

// BuildFunc prepares a set-up experiment and its run configuration for
// one point of the grid.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, sim.Config, error)

// Point is one evaluated combination of parameter values.
type Point struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// ParseParam reads "name=v1,v2,..." into a parameter name and its values.
func ParseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid sweep parameter %q, want name=v1,v2", s)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("sweep parameter %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Search runs every combination of the grid and returns them in grid
// order together with the one minimizing metricName. The first failing
// build or run stops the search.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) ([]Point, Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, Point{}, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []Point
	best := Point{Value: math.Inf(1)}

	visit := func(params map[string]float64) error {
		exp, cfg, err := build(params)
		if err != nil {
			return err
		}
		result, err := exp.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("run %v: %w", params, err)
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("metric %q not recorded", metricName)
		}
		p := Point{Params: params, Value: val}
		points = append(points, p)
		if val < best.Value {
			best = p
		}
		return nil
	}

	if err := g.searchRecursive(ctx, 0, map[string]float64{}, visit); err != nil {
		return points, best, err
	}
	return points, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

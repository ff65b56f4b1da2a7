package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/balls/internal/config"
	"github.com/san-kum/balls/internal/experiment"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Params names the config fields a search can vary.
var Params = []string{"dt", "gravity", "count", "max_speed", "min_size", "max_size"}

// Apply sets the named field of c to v.
func Apply(c *config.Config, name string, v float64) error {
	switch name {
	case "dt":
		c.Dt = v
	case "gravity":
		c.Gravity = v
	case "count":
		c.Spawn.Count = int(math.Round(v))
	case "max_speed":
		c.Spawn.MaxSpeed = v
	case "min_size":
		c.Spawn.MinSize = v
	case "max_size":
		c.Spawn.MaxSize = v
	default:
		return fmt.Errorf("%w: %q (known: %v)", ErrUnknownParam, name, Params)
	}
	return nil
}

// Trial is one evaluated grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
}

// GridSearch runs every combination of the parameter ranges on a copy of a
// base config and keeps the one minimising a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d params but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if err := Apply(config.DefaultConfig(), p, 0); err != nil {
			return nil, err
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Search returns the best parameters, their metric value and every trial in
// grid order. A grid point whose config is invalid is an error.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	if _, err := registry.GetMetric(metricName, base.Gravity); err != nil {
		return nil, 0, nil, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	trials := make([]Trial, 0)

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		c := base.Clone()
		for name, v := range params {
			if err := Apply(c, name, v); err != nil {
				return err
			}
		}

		m, err := registry.GetMetric(metricName, c.Gravity)
		if err != nil {
			return err
		}
		exp := experiment.New(c)
		if err := exp.Setup(nil, nil); err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}
		exp.Simulator().AddMetric(m)

		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		val := result.Metrics[metricName]
		trials = append(trials, Trial{Params: params, Value: val})
		if val < best {
			best = val
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return nil, 0, trials, err
	}

	return bestParams, best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval func(map[string]float64) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return eval(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval); err != nil {
			return err
		}
	}
	return nil
}

package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/balls/internal/sim"
)

type SweepPoint struct {
	Param float64
	Value float64
}

// Sweep builds and runs one simulator per parameter value between lo and hi
// inclusive and records measure of each result.
func Sweep(
	ctx context.Context,
	lo, hi float64,
	steps int,
	build func(param float64) (*sim.Simulator, error),
	cfg sim.Config,
	measure func(*sim.Result) float64,
) ([]SweepPoint, error) {
	if steps < 2 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	out := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		param := lo + float64(i)*step
		s, err := build(param)
		if err != nil {
			return nil, fmt.Errorf("sweep at %v: %w", param, err)
		}
		res, err := s.Run(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("sweep at %v: %w", param, err)
		}
		out = append(out, SweepPoint{Param: param, Value: measure(res)})
	}
	return out, nil
}

func SweepToASCII(points []SweepPoint, width, height int) string {
	pts := make([]Point, len(points))
	for i, p := range points {
		pts[i] = Point{X: p.Param, Y: p.Value}
	}
	return plotPoints(pts, width, height)
}

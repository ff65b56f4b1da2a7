package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds an independent simulator for one ensemble member.
type Factory func(seed int64) (*Simulator, error)

type Ensemble struct {
	build     Factory
	numRuns   int
	seedStart int64
	limit     int
}

func NewEnsemble(build Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart, limit: runtime.NumCPU()}
}

// SetLimit caps concurrent runs. n <= 0 means no cap.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run executes every member and returns results in seed order. The first
// failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i := 0; i < e.numRuns; i++ {
		i := i
		g.Go(func() error {
			s, err := e.build(e.seedStart + int64(i))
			if err != nil {
				return err
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Package forest implements a random forest classifier over dense float features.
package forest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmpty is returned when training data has no rows.
	ErrEmpty = errors.New("no training samples")

	// ErrDimension is returned when a row's width does not match the forest.
	ErrDimension = errors.New("feature dimension mismatch")

	// ErrInvalid is returned by Validate for a forest that cannot be evaluated safely.
	ErrInvalid = errors.New("invalid forest")
)

// Config controls forest training.
type Config struct {
	Trees           int   // number of trees
	MaxDepth        int   // 0 grows until leaves are pure
	MinSamplesSplit int   // smallest node that may be split
	MaxFeatures     int   // features tried per split, 0 means sqrt(n)
	Seed            int64 // tree i uses Seed+i
	Workers         int   // concurrent trees, 0 means GOMAXPROCS
}

// DefaultConfig returns the settings the train command uses.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

func (c Config) withDefaults(features int) Config {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	if c.MinSamplesSplit < 2 {
		c.MinSamplesSplit = 2
	}
	if c.MaxFeatures <= 0 || c.MaxFeatures > features {
		c.MaxFeatures = max(1, int(math.Sqrt(float64(features))))
		c.MaxFeatures = min(c.MaxFeatures, features)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Forest is a trained ensemble. It is safe for concurrent use once trained.
type Forest struct {
	Classes  int    `json:"classes"`
	Features int    `json:"features"`
	Trees    []Tree `json:"trees"`
}

// Train fits a forest on rows X with class indices y.
func Train(ctx context.Context, X [][]float64, y []int, cfg Config) (*Forest, error) {
	if len(X) == 0 {
		return nil, ErrEmpty
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%d rows but %d labels", len(X), len(y))
	}

	width := len(X[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrDimension)
	}
	classes := 0
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimension, i, len(row), width)
		}
		if y[i] < 0 {
			return nil, fmt.Errorf("row %d has negative label %d", i, y[i])
		}
		classes = max(classes, y[i]+1)
	}

	cfg = cfg.withDefaults(width)
	f := &Forest{
		Classes:  classes,
		Features: width,
		Trees:    make([]Tree, cfg.Trees),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range f.Trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			gr := &grower{
				X:           X,
				y:           y,
				classes:     classes,
				maxDepth:    cfg.MaxDepth,
				minSplit:    cfg.MinSamplesSplit,
				maxFeatures: cfg.MaxFeatures,
				rng:         rng,
			}
			f.Trees[i] = gr.build(bootstrap(rng, len(X)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.Intn(n)
	}
	return idx
}

// Predict returns the majority-vote class for each row. Ties go to the lowest class index.
func (f *Forest) Predict(rows [][]float64) ([]int, error) {
	if len(f.Trees) == 0 {
		return nil, errors.New("forest has no trees")
	}

	out := make([]int, len(rows))
	votes := make([]int, f.Classes)
	for i, row := range rows {
		if len(row) != f.Features {
			return nil, fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(row), f.Features)
		}

		clear(votes)
		for t := range f.Trees {
			c := f.Trees[t].predict(row)
			if c >= 0 && c < len(votes) {
				votes[c]++
			}
		}
		out[i] = argmax(votes)
	}
	return out, nil
}

// Validate checks that a decoded forest expects dim features and that every
// node references a feature, child and class inside its bounds.
func (f *Forest) Validate(dim int) error {
	if f.Features != dim {
		return fmt.Errorf("%w: forest expects %d features, want %d", ErrDimension, f.Features, dim)
	}
	if f.Classes <= 0 {
		return fmt.Errorf("%w: %d classes", ErrInvalid, f.Classes)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("%w: no trees", ErrInvalid)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.Features, f.Classes); err != nil {
			return fmt.Errorf("%w: tree %d: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// MaxDepth returns the depth of the deepest tree.
func (f *Forest) MaxDepth() int {
	depth := 0
	for i := range f.Trees {
		depth = max(depth, f.Trees[i].Depth())
	}
	return depth
}

// argmax returns the first index holding the largest count.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

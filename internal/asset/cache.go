// Package asset builds droplet outline templates in the background.
//
// The cache is a side channel: gameplay only asks whether it is Ready and,
// once it is, takes droplets carrying a cached outline. Until then the pool
// constructs plain droplets directly.
package asset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tomz197/orbfall/internal/object"
)

// Outline vertex counts and radial jitter.
const (
	minVertices = 7
	maxVertices = 11
	jitter      = 0.25
)

// Cache holds precomputed irregular outlines for droplets.
type Cache struct {
	variants int
	seed     int64

	outlines [][]float64 // Written once by Preload before ready is set
	ready    atomic.Bool
	next     atomic.Uint64
}

// NewCache creates a cache that will build the given number of outline variants.
func NewCache(variants int, seed int64) *Cache {
	return &Cache{variants: max(variants, 1), seed: seed}
}

// Preload builds every outline concurrently and marks the cache ready.
// It returns ctx's error if cancelled first; the cache then stays not ready.
func (c *Cache) Preload(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}

	outlines := make([][]float64, c.variants)
	g, ctx := errgroup.WithContext(ctx)
	for i := range outlines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shape, err := buildOutline(rand.New(rand.NewSource(c.seed + int64(i))))
			if err != nil {
				return fmt.Errorf("outline %d: %w", i, err)
			}
			outlines[i] = shape
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("preload droplet outlines: %w", err)
	}

	c.outlines = outlines
	c.ready.Store(true)
	return nil
}

// buildOutline returns radial multipliers around 1.0 for an irregular blob.
func buildOutline(rng *rand.Rand) ([]float64, error) {
	n := minVertices + rng.Intn(maxVertices-minVertices+1)
	shape := make([]float64, n)
	for i := range shape {
		shape[i] = 1 + (rng.Float64()*2-1)*jitter
	}
	// Smooth neighbouring vertices so the outline reads as a droplet, not a star
	smoothed := make([]float64, n)
	for i := range shape {
		smoothed[i] = (shape[(i+n-1)%n] + 2*shape[i] + shape[(i+1)%n]) / 4
	}
	for _, v := range smoothed {
		if math.IsNaN(v) || v <= 0 {
			return nil, fmt.Errorf("degenerate vertex %v", v)
		}
	}
	return smoothed, nil
}

// Ready implements object.Templates.
func (c *Cache) Ready() bool {
	return c.ready.Load()
}

// NewDroplet implements object.Templates. Outlines are handed out round robin.
// Returns nil before the cache is ready.
func (c *Cache) NewDroplet() *object.Droplet {
	if !c.ready.Load() {
		return nil
	}
	i := c.next.Add(1) - 1
	d := object.NewDroplet()
	d.Shape = c.outlines[i%uint64(len(c.outlines))]
	return d
}

// Variants returns the number of outlines the cache builds.
func (c *Cache) Variants() int {
	return c.variants
}

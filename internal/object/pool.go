package object

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/tomz197/orbfall/internal/config"
)

// Pool is a fixed-capacity allocator for droplets.
//
// Every droplet the pool creates is in exactly one of two sets: available
// (idle, ready for reuse) or active (in flight, oldest first). The pool is
// driven from the tick loop only and does no locking.
type Pool struct {
	available []*Droplet
	active    []*Droplet
	strays    []*Droplet // One-off fallbacks handed out before any droplet existed

	created int
	initial int
	max     int
	tuning  config.DropletTuning

	templates Templates
	logger    *log.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithTemplates makes the pool build droplets from an asset cache once it is ready.
func WithTemplates(t Templates) PoolOption {
	return func(p *Pool) {
		p.templates = t
	}
}

// WithPoolLogger sets the logger used for pool diagnostics.
func WithPoolLogger(l *log.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool creates an empty pool. Call WarmUp or WarmStep to pre-create droplets.
func NewPool(pt config.PoolTuning, dt config.DropletTuning, opts ...PoolOption) *Pool {
	maxCap := pt.MaxCapacity
	if maxCap < 1 {
		maxCap = 1
	}
	initial := pt.InitialCount
	if initial > maxCap {
		initial = maxCap
	}
	if initial < 0 {
		initial = 0
	}

	p := &Pool{
		available: make([]*Droplet, 0, maxCap),
		active:    make([]*Droplet, 0, maxCap),
		initial:   initial,
		max:       maxCap,
		tuning:    dt,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WarmUp synchronously pre-creates idle droplets until n exist (capped at capacity).
func (p *Pool) WarmUp(n int) {
	if n > p.max {
		n = p.max
	}
	for p.created < n {
		p.available = append(p.available, p.create())
	}
	p.logger.Debug("pool warmed up", "created", p.created)
}

// WarmStep creates at most one idle droplet toward the initial count, so warm-up
// can be spread over ticks. Returns true once the pool is ready.
func (p *Pool) WarmStep() (ready bool) {
	if p.created < p.initial {
		p.available = append(p.available, p.create())
		if p.created == p.initial {
			p.logger.Debug("pool ready", "created", p.created)
		}
	}
	return p.Ready()
}

// Ready reports whether warm-up has produced the initial count.
func (p *Pool) Ready() bool {
	return p.created >= p.initial
}

// create builds a pool-owned droplet, preferring the asset cache when it is ready.
func (p *Pool) create() *Droplet {
	var d *Droplet
	if p.templates != nil && p.templates.Ready() {
		d = p.templates.NewDroplet()
	}
	if d == nil {
		d = &Droplet{}
	}
	d.applyTuning(p.tuning)
	d.Reset()
	d.owner = p
	p.created++
	return d
}

// Acquire returns an activated droplet. It reuses an idle droplet, grows the
// pool while under capacity, and otherwise recycles the oldest droplet in flight.
// Before any droplet exists it hands out a one-off that is never pooled.
func (p *Pool) Acquire() *Droplet {
	p.compactActive()

	if n := len(p.available); n > 0 {
		d := p.available[n-1]
		p.available[n-1] = nil
		p.available = p.available[:n-1]
		return p.activate(d)
	}

	if p.created == 0 && !p.Ready() {
		d := &Droplet{}
		d.applyTuning(p.tuning)
		d.Activate()
		p.strays = append(p.strays, d)
		p.logger.Debug("pool not warmed, using one-off droplet")
		return d
	}

	if p.created < p.max || len(p.active) == 0 {
		p.logger.Debug("pool growing", "created", p.created+1, "max", p.max)
		return p.activate(p.create())
	}

	// At capacity: the oldest droplet vanishes as if it expired
	oldest := p.active[0]
	p.active = append(p.active[:0], p.active[1:]...)
	oldest.Reset()
	p.logger.Debug("pool at capacity, recycling oldest droplet", "max", p.max)
	return p.activate(oldest)
}

func (p *Pool) activate(d *Droplet) *Droplet {
	d.Activate()
	p.active = append(p.active, d)
	return d
}

// Release resets a droplet and returns it to the idle set.
// Releasing an idle droplet is a no-op. One-off fallbacks are dropped.
func (p *Pool) Release(d *Droplet) {
	if d == nil {
		p.logger.Warn("release of nil droplet ignored")
		return
	}

	if d.owner == nil {
		if p.removeStray(d) {
			d.Reset()
		}
		return
	}

	if d.owner != p {
		p.logger.Warn("release of droplet owned by another pool ignored")
		return
	}

	if !d.active {
		return
	}

	for i, a := range p.active {
		if a == d {
			p.active = append(p.active[:i], p.active[i+1:]...)
			break
		}
	}
	d.Reset()
	p.available = append(p.available, d)
}

func (p *Pool) removeStray(d *Droplet) bool {
	for i, s := range p.strays {
		if s == d {
			last := len(p.strays) - 1
			p.strays[i] = p.strays[last]
			p.strays[last] = nil
			p.strays = p.strays[:last]
			return true
		}
	}
	return false
}

// ClearActive force-releases every droplet in flight, one-offs included.
func (p *Pool) ClearActive() {
	for _, d := range p.active {
		if d == nil {
			continue
		}
		d.Reset()
		p.available = append(p.available, d)
	}
	clear(p.active)
	p.active = p.active[:0]

	for _, d := range p.strays {
		d.Reset()
	}
	clear(p.strays)
	p.strays = p.strays[:0]
}

// compactActive drops entries that are no longer valid in-flight droplets.
// Nil references are discarded; droplets reset behind the pool's back go idle.
func (p *Pool) compactActive() {
	kept := p.active[:0]
	for _, d := range p.active {
		switch {
		case d == nil:
			p.logger.Warn("discarding nil droplet reference from active set")
		case !d.active:
			p.logger.Warn("droplet in active set was no longer in flight, returning it to idle")
			p.available = append(p.available, d)
		default:
			kept = append(kept, d)
		}
	}
	clear(p.active[len(kept):])
	p.active = kept
}

// InFlight returns every droplet currently in flight, oldest first, followed by
// any one-off fallbacks. The slice is a copy; releasing while iterating is safe.
func (p *Pool) InFlight() []*Droplet {
	p.compactActive()
	out := make([]*Droplet, 0, len(p.active)+len(p.strays))
	out = append(out, p.active...)
	return append(out, p.strays...)
}

// ActiveCount returns the number of pooled droplets in flight.
func (p *Pool) ActiveCount() int {
	return len(p.active)
}

// AvailableCount returns the number of idle droplets.
func (p *Pool) AvailableCount() int {
	return len(p.available)
}

// Created returns the number of droplets the pool has ever created.
func (p *Pool) Created() int {
	return p.created
}

// Capacity returns the hard ceiling on droplets in flight.
func (p *Pool) Capacity() int {
	return p.max
}

// Verify checks that idle and in-flight droplets are disjoint, that together
// they account for every droplet the pool created, and that no more than
// Capacity are in flight.
func (p *Pool) Verify() error {
	seen := make(map[*Droplet]string, p.created)
	for _, d := range p.available {
		switch {
		case d == nil:
			return fmt.Errorf("nil droplet in idle set")
		case d.active:
			return fmt.Errorf("idle droplet %p is marked active", d)
		case seen[d] != "":
			return fmt.Errorf("droplet %p listed twice in idle set", d)
		}
		seen[d] = "available"
	}
	for _, d := range p.active {
		switch {
		case d == nil:
			return fmt.Errorf("nil droplet in active set")
		case !d.active:
			return fmt.Errorf("in-flight droplet %p is not marked active", d)
		case seen[d] != "":
			return fmt.Errorf("droplet %p listed as active and %s", d, seen[d])
		}
		seen[d] = "active"
	}
	if len(seen) != p.created {
		return fmt.Errorf("pool tracks %d droplets, created %d", len(seen), p.created)
	}
	if len(p.active) > p.max {
		return fmt.Errorf("%d droplets in flight, capacity %d", len(p.active), p.max)
	}
	return nil
}

package game

import (
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/object"
	"github.com/tomz197/orbfall/internal/physics"
)

// Session owns one instance of every gameplay component for a single player
// and runs them in a fixed order each tick:
//
//  1. pool warm-up step
//  2. state timers
//  3. snapshot (read by everything below)
//  4. player movement
//  5. deferred work (barrage shots)
//  6. spawner
//  7. droplets: expiry, then collision with the player
//
// A Session is driven from one goroutine and does no locking.
type Session struct {
	tuning  config.Tuning
	state   *State
	pool    *object.Pool
	sched   *Scheduler
	spawner *Spawner
	orb     *object.Orb
	logger  *log.Logger

	snap Snapshot
}

type sessionOptions struct {
	logger    *log.Logger
	rng       *rand.Rand
	templates object.Templates
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

// WithLogger sets the logger shared by all session components.
func WithLogger(l *log.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithSeed makes spawning deterministic.
func WithSeed(seed int64) SessionOption {
	return func(o *sessionOptions) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithDropletTemplates lets the pool build droplets from an asset cache.
func WithDropletTemplates(t object.Templates) SessionOption {
	return func(o *sessionOptions) {
		o.templates = t
	}
}

// NewSession wires a state machine, pool, scheduler, spawner and player.
// The pool starts empty and warms up one droplet per tick.
func NewSession(t config.Tuning, opts ...SessionOption) *Session {
	o := sessionOptions{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	poolOpts := []object.PoolOption{object.WithPoolLogger(o.logger.WithPrefix("pool"))}
	if o.templates != nil {
		poolOpts = append(poolOpts, object.WithTemplates(o.templates))
	}
	pool := object.NewPool(t.Pool, t.Droplet, poolOpts...)
	orb := object.NewOrb(t.Player, t.Arena)
	sched := NewScheduler()
	state := NewState(t.PowerUp, WithClearer(pool), WithStateLogger(o.logger))
	spawner := NewSpawner(t, pool, sched,
		WithRand(o.rng),
		WithPlayer(orb),
		WithSpawnerLogger(o.logger.WithPrefix("spawner")),
	)
	state.Register(spawner)

	s := &Session{
		tuning:  t,
		state:   state,
		pool:    pool,
		sched:   sched,
		spawner: spawner,
		orb:     orb,
		logger:  o.logger,
	}
	s.snap = state.Snapshot()
	return s
}

// Register adds an observer for gameplay events.
func (s *Session) Register(h Handler) {
	s.state.Register(h)
}

// WarmUp fills the pool to its initial count at once instead of over ticks.
func (s *Session) WarmUp() {
	s.pool.WarmUp(s.tuning.Pool.InitialCount)
}

// Start begins a new run.
func (s *Session) Start() {
	s.state.StartGame()
	s.sched.Reset()
	s.orb.Reset()
	s.snap = s.state.Snapshot()
}

// Pause freezes or resumes the run.
func (s *Session) Pause(paused bool) {
	s.state.SetPaused(paused)
	s.snap = s.state.Snapshot()
}

// Tick advances the session by dt seconds with the given player input.
func (s *Session) Tick(dt float64, in object.Controls) {
	if !s.pool.Ready() {
		s.pool.WarmStep()
	}

	s.state.Update(dt)
	snap := s.state.Snapshot()
	s.snap = snap
	if !snap.Active || snap.Paused {
		return
	}

	s.orb.Update(dt, in)
	s.sched.Poll(snap.Elapsed)
	s.spawner.Update(dt, snap)
	s.updateDroplets(dt, snap)

	s.snap = s.state.Snapshot()
}

// referee routes droplet collision outcomes to the state, remembering where
// the hit happened.
type referee struct {
	state *State
	at    physics.Vec3
}

func (r referee) AddScore(n int)   { r.state.AddScore(n) }
func (r referee) ActivatePowerUp() { r.state.ActivatePowerUp() }
func (r referee) GameOver()        { r.state.gameOverAt(r.at) }

func (s *Session) updateDroplets(dt float64, snap Snapshot) {
	shielded := snap.Shielded()
	player := s.orb.Position

	for _, d := range s.pool.InFlight() {
		if !s.state.Active() {
			// Game over cleared the pool mid-loop
			return
		}
		if !d.Active() {
			continue
		}
		if d.Update(dt) {
			s.pool.Release(d)
			continue
		}
		if !physics.SpheresOverlap(d.Position, d.Radius(), player, s.orb.Radius) {
			continue
		}

		kind, pos := d.Kind, d.Position
		consumed := d.HitPlayer(referee{state: s.state, at: pos}, shielded)
		switch {
		case consumed:
			s.pool.Release(d)
			s.state.Emit(Event{Type: EventPickup, Kind: kind, Position: pos, Score: s.state.Score()})
		case kind == object.KindHazard && shielded && d.MarkPassed():
			s.state.Emit(Event{Type: EventHazardIgnored, Kind: kind, Position: pos, Score: s.state.Score()})
		}
	}
}

// Snapshot returns the state as of the end of the last tick.
func (s *Session) Snapshot() Snapshot {
	return s.snap
}

// Droplets returns the droplets in flight. The slice is a copy.
func (s *Session) Droplets() []*object.Droplet {
	return s.pool.InFlight()
}

// Orb returns the player.
func (s *Session) Orb() *object.Orb {
	return s.orb
}

// Pool returns the droplet pool.
func (s *Session) Pool() *object.Pool {
	return s.pool
}

// Spawner returns the difficulty spawner.
func (s *Session) Spawner() *Spawner {
	return s.spawner
}

// State returns the authoritative state machine.
func (s *Session) State() *State {
	return s.state
}

// Tuning returns the gameplay tuning the session was built with.
func (s *Session) Tuning() config.Tuning {
	return s.tuning
}

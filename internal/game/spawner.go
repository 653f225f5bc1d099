package game

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/object"
	"github.com/tomz197/orbfall/internal/physics"
)

// Acquirer hands out activated droplets.
type Acquirer interface {
	Acquire() *object.Droplet
}

// Spawner decides when droplets appear, what they are, and where they fly.
//
// Regular spawns fire at irregular intervals sampled from
// [IntervalMin, IntervalMax]. Each score increase also schedules a staggered
// barrage of large hazards aimed at the player; pending barrage shots are
// cancelled when the run starts or ends.
type Spawner struct {
	spawn   config.SpawnerTuning
	barrage config.BarrageTuning
	droplet config.DropletTuning
	arena   config.ArenaTuning

	pool   Acquirer
	sched  *Scheduler
	player object.PlayerLocator
	rng    *rand.Rand
	logger *log.Logger

	timer    float64
	interval float64
	pending  map[Handle]struct{}
	spawned  int
}

// SpawnerOption configures a Spawner.
type SpawnerOption func(*Spawner)

// WithRand sets the random source. Tests pass a seeded one.
func WithRand(r *rand.Rand) SpawnerOption {
	return func(s *Spawner) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithPlayer sets who targeted spawns aim at.
func WithPlayer(p object.PlayerLocator) SpawnerOption {
	return func(s *Spawner) {
		s.player = p
	}
}

// WithSpawnerLogger sets the logger for spawn diagnostics.
func WithSpawnerLogger(l *log.Logger) SpawnerOption {
	return func(s *Spawner) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSpawner creates a spawner drawing droplets from pool and deferring
// barrage shots on sched.
func NewSpawner(t config.Tuning, pool Acquirer, sched *Scheduler, opts ...SpawnerOption) *Spawner {
	s := &Spawner{
		spawn:   t.Spawner,
		barrage: t.Barrage,
		droplet: t.Droplet,
		arena:   t.Arena,
		pool:    pool,
		sched:   sched,
		logger:  log.New(io.Discard),
		pending: make(map[Handle]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.interval = s.sampleInterval()
	return s
}

// EventTypes implements Handler.
func (s *Spawner) EventTypes() []EventType {
	return []EventType{EventGameStarted, EventScoreChanged, EventGameOver}
}

// HandleEvent implements Handler.
func (s *Spawner) HandleEvent(ev Event) {
	switch ev.Type {
	case EventScoreChanged:
		s.scheduleBarrage(ev.Score)
	case EventGameStarted, EventGameOver:
		s.Teardown()
	}
}

// Teardown cancels pending barrage shots and restarts the spawn timer.
func (s *Spawner) Teardown() {
	for h := range s.pending {
		s.sched.Cancel(h)
	}
	clear(s.pending)
	s.timer = 0
	s.interval = s.sampleInterval()
}

// Pending returns the number of barrage shots waiting to fire.
func (s *Spawner) Pending() int {
	return len(s.pending)
}

// Spawned returns the number of droplets launched so far.
func (s *Spawner) Spawned() int {
	return s.spawned
}

// Update advances the spawn timer and spawns when it runs out.
func (s *Spawner) Update(dt float64, snap Snapshot) {
	if !snap.Active || snap.Paused {
		return
	}
	s.timer += dt
	if s.timer < s.interval {
		return
	}
	s.timer = 0

	if snap.Score >= s.spawn.TargetedScore {
		s.SpawnTargeted(object.SizeNormal)
	}
	kind, size := s.classify(snap)
	pos, target := s.trajectory(kind)
	s.launch(kind, size, pos, target)

	s.interval = s.sampleInterval()
}

func (s *Spawner) sampleInterval() float64 {
	lo, hi := s.spawn.IntervalMin, s.spawn.IntervalMax
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// classify picks the kind and size of a regular spawn.
func (s *Spawner) classify(snap Snapshot) (object.Kind, object.SizeClass) {
	if s.spawn.PowerUpEnabled && snap.Elapsed >= s.spawn.PowerUpDelay && !snap.PoweredUp &&
		s.oneIn(s.spawn.PowerUpChance) {
		return object.KindPowerUp, object.SizeLarge
	}
	if s.oneIn(s.spawn.CollectibleChance) {
		return object.KindCollectible, object.SizeNormal
	}
	return object.KindHazard, s.HazardSize(snap.Score)
}

// HazardSize rolls a size for a hazard. Huge is checked first against
// min(score, HugeChanceCap) percent, then Large against
// min(2*score, LargeChanceCap) percent, on the same roll.
func (s *Spawner) HazardSize(score int) object.SizeClass {
	roll := s.rng.Intn(100)
	switch {
	case roll < min(score, s.spawn.HugeChanceCap):
		return object.SizeHuge
	case roll < min(score*2, s.spawn.LargeChanceCap):
		return object.SizeLarge
	default:
		return object.SizeNormal
	}
}

func (s *Spawner) oneIn(n int) bool {
	if n <= 1 {
		return true
	}
	return s.rng.Intn(n) == 0
}

func (s *Spawner) spawnRadius() float64 {
	return s.arena.PlatformRadius + s.arena.SpawnOffset
}

// trajectory picks a spawn point on the spawn circle and a target point.
// Usually the target is near the antipode, with small offsets more likely;
// sometimes it is the player.
func (s *Spawner) trajectory(kind object.Kind) (pos, target physics.Vec3) {
	angle := s.rng.Float64() * 2 * math.Pi
	pos = physics.OnCircle(angle, s.spawnRadius(), s.arena.SpawnHeight)

	if s.oneIn(s.spawn.DirectAimChance) {
		if aim, ok := s.aimPoint(); ok {
			return pos, aim
		}
	}

	maxOffset := s.spawn.MaxOffset
	if kind == object.KindCollectible {
		maxOffset = s.spawn.CollectibleMaxOffset
	}
	t := s.rng.Float64()
	offset := physics.Lerp(s.spawn.MinOffset, maxOffset, t*t)
	if s.rng.Intn(2) == 0 {
		offset = -offset
	}
	target = physics.OnCircle(angle+math.Pi+offset, s.spawnRadius(), s.arena.SpawnHeight)
	return pos, target
}

// aimPoint is the player's position at droplet flight height.
func (s *Spawner) aimPoint() (physics.Vec3, bool) {
	if s.player == nil {
		return physics.Vec3{}, false
	}
	p, ok := s.player.PlayerPosition()
	if !ok {
		return physics.Vec3{}, false
	}
	p.Y = s.arena.SpawnHeight
	return p, true
}

// SpawnTargeted launches a hazard aimed at the player's current position.
// Returns false, spawning nothing, when there is no player.
func (s *Spawner) SpawnTargeted(size object.SizeClass) bool {
	aim, ok := s.aimPoint()
	if !ok {
		s.logger.Debug("targeted spawn skipped, no player")
		return false
	}
	angle := s.rng.Float64() * 2 * math.Pi
	pos := physics.OnCircle(angle, s.spawnRadius(), s.arena.SpawnHeight)
	s.launch(object.KindHazard, size, pos, aim)
	return true
}

func (s *Spawner) speedFor(kind object.Kind) float64 {
	switch kind {
	case object.KindCollectible:
		return s.droplet.CollectibleSpeed
	case object.KindPowerUp:
		return s.droplet.PowerUpSpeed
	default:
		return s.droplet.HazardSpeed
	}
}

func (s *Spawner) launch(kind object.Kind, size object.SizeClass, pos, target physics.Vec3) *object.Droplet {
	dir := target.Sub(pos).Normalized()
	if dir == (physics.Vec3{}) {
		// Target on the spawn point, fly through the center instead
		dir = pos.Flat().Scale(-1).Normalized()
	}
	d := s.pool.Acquire()
	d.Launch(kind, size, pos, dir.Scale(s.speedFor(kind)))
	s.spawned++
	s.logger.Debug("spawned droplet", "kind", kind, "size", d.Size, "pooled", d.Pooled())
	return d
}

// BarrageCount returns how many barrage shots a score increase to score triggers.
func (s *Spawner) BarrageCount(score int) int {
	b := s.barrage
	switch {
	case score < b.StartScore:
		return 0
	case score < b.ModerateScore:
		return 1
	case score < b.HighScore:
		return 2 + s.rng.Intn(2)
	case b.HighMax <= b.HighMin:
		return b.HighMin
	default:
		return b.HighMin + s.rng.Intn(b.HighMax-b.HighMin+1)
	}
}

func (s *Spawner) scheduleBarrage(score int) {
	count := s.BarrageCount(score)
	if count == 0 {
		return
	}
	for i := range count {
		var h Handle
		h = s.sched.Schedule(float64(i+1)*s.barrage.Stagger, func() {
			delete(s.pending, h)
			s.SpawnTargeted(object.SizeLarge)
		})
		s.pending[h] = struct{}{}
	}
	s.logger.Debug("barrage scheduled", "score", score, "shots", count)
}

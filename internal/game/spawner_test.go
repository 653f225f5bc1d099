package game

import (
	"math"
	"testing"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/object"
	"github.com/tomz197/orbfall/internal/physics"
)

type spawnerFixture struct {
	tuning  config.Tuning
	pool    *fakePool
	sched   *Scheduler
	spawner *Spawner
}

func newSpawnerFixture(t *testing.T, seed int64, player object.PlayerLocator, mutate func(*config.Tuning)) *spawnerFixture {
	t.Helper()
	tuning := config.DefaultTuning()
	if mutate != nil {
		mutate(&tuning)
	}
	if err := tuning.Validate(); err != nil {
		t.Fatalf("fixture tuning invalid: %v", err)
	}
	f := &spawnerFixture{tuning: tuning, pool: &fakePool{}, sched: NewScheduler()}
	opts := []SpawnerOption{WithRand(seeded(seed))}
	if player != nil {
		opts = append(opts, WithPlayer(player))
	}
	f.spawner = NewSpawner(tuning, f.pool, f.sched, opts...)
	return f
}

func TestBarrageCount(t *testing.T) {
	f := newSpawnerFixture(t, 1, nil, nil)

	tests := []struct {
		score    int
		min, max int
	}{
		{0, 0, 0},
		{2, 0, 0},
		{3, 1, 1},
		{6, 1, 1},
		{7, 2, 3},
		{10, 2, 3},
		{11, 5, 9},
		{40, 5, 9},
	}
	for _, tt := range tests {
		for range 200 {
			got := f.spawner.BarrageCount(tt.score)
			if got < tt.min || got > tt.max {
				t.Fatalf("BarrageCount(%d) = %d, want in [%d, %d]", tt.score, got, tt.min, tt.max)
			}
		}
	}
}

func TestBarrageAtScoreThree(t *testing.T) {
	player := fixedPlayer{pos: physics.Vec3{X: 1, Y: 3, Z: -2}}
	f := newSpawnerFixture(t, 7, player, nil)
	state := NewState(f.tuning.PowerUp)
	state.Register(f.spawner)
	state.StartGame()

	state.AddScore(1)
	state.AddScore(1)
	if f.spawner.Pending() != 0 {
		t.Fatalf("barrage scheduled below the start score: %d", f.spawner.Pending())
	}
	state.AddScore(1)
	if f.spawner.Pending() != 1 || f.sched.Len() != 1 {
		t.Fatalf("pending = %d, want exactly 1", f.spawner.Pending())
	}

	f.sched.Poll(f.tuning.Barrage.Stagger)
	if len(f.pool.acquired) != 1 {
		t.Fatalf("acquired = %d, want 1", len(f.pool.acquired))
	}
	d := f.pool.acquired[0]
	if d.Kind != object.KindHazard || d.Size != object.SizeLarge {
		t.Errorf("barrage shot is %v/%v, want large hazard", d.Kind, d.Size)
	}
	assertAimedAt(t, d, physics.Vec3{X: 1, Y: f.tuning.Arena.SpawnHeight, Z: -2})
	if f.spawner.Pending() != 0 {
		t.Error("fired shot still pending")
	}
}

func TestBarrageAtHighScore(t *testing.T) {
	for seed := range int64(50) {
		f := newSpawnerFixture(t, seed, fixedPlayer{}, nil)
		f.spawner.HandleEvent(Event{Type: EventScoreChanged, Score: 11})
		n := f.spawner.Pending()
		if n < 5 || n > 9 {
			t.Fatalf("seed %d: pending = %d, want in [5, 9]", seed, n)
		}

		// Staggered, one shot per second
		for i := 1; i <= n; i++ {
			f.sched.Poll(float64(i))
			if len(f.pool.acquired) != i {
				t.Fatalf("seed %d: after %ds %d shots fired, want %d", seed, i, len(f.pool.acquired), i)
			}
		}
	}
}

func TestBarrageCancelledOnTeardown(t *testing.T) {
	for _, end := range []EventType{EventGameOver, EventGameStarted} {
		t.Run(end.String(), func(t *testing.T) {
			f := newSpawnerFixture(t, 3, fixedPlayer{}, nil)
			f.spawner.HandleEvent(Event{Type: EventScoreChanged, Score: 12})
			if f.spawner.Pending() == 0 {
				t.Fatal("no barrage scheduled")
			}

			f.spawner.HandleEvent(Event{Type: end})
			if f.spawner.Pending() != 0 || f.sched.Len() != 0 {
				t.Errorf("pending after teardown: spawner %d, scheduler %d", f.spawner.Pending(), f.sched.Len())
			}
			f.sched.Poll(100)
			if len(f.pool.acquired) != 0 {
				t.Errorf("%d shots fired after teardown", len(f.pool.acquired))
			}
		})
	}
}

func TestTargetedSpawnWithoutPlayer(t *testing.T) {
	tests := []struct {
		name   string
		player object.PlayerLocator
	}{
		{"nil locator", nil},
		{"player gone", fixedPlayer{missing: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSpawnerFixture(t, 1, tt.player, nil)
			if f.spawner.SpawnTargeted(object.SizeLarge) {
				t.Error("targeted spawn reported success without a player")
			}
			f.spawner.HandleEvent(Event{Type: EventScoreChanged, Score: 4})
			f.sched.Poll(10)
			if len(f.pool.acquired) != 0 {
				t.Errorf("acquired %d droplets without a player", len(f.pool.acquired))
			}
		})
	}
}

func TestSpawnerInterval(t *testing.T) {
	f := newSpawnerFixture(t, 1, fixedPlayer{}, func(c *config.Tuning) {
		c.Spawner.IntervalMin = 1
		c.Spawner.IntervalMax = 1
	})
	snap := Snapshot{Active: true}

	f.spawner.Update(0.5, snap)
	if len(f.pool.acquired) != 0 {
		t.Fatal("spawned before the interval elapsed")
	}
	f.spawner.Update(0.5, snap)
	if len(f.pool.acquired) != 1 {
		t.Fatalf("acquired = %d after one interval, want 1", len(f.pool.acquired))
	}

	f.spawner.Update(1, Snapshot{Active: true, Paused: true})
	f.spawner.Update(1, Snapshot{})
	if len(f.pool.acquired) != 1 {
		t.Error("spawned while paused or idle")
	}
}

func TestSpawnerIntervalWithinBounds(t *testing.T) {
	f := newSpawnerFixture(t, 9, fixedPlayer{}, nil)
	lo, hi := f.tuning.Spawner.IntervalMin, f.tuning.Spawner.IntervalMax
	for range 500 {
		if got := f.spawner.sampleInterval(); got < lo || got > hi {
			t.Fatalf("interval %v outside [%v, %v]", got, lo, hi)
		}
	}
}

func TestSpawnerTargetedExtraAtHighScore(t *testing.T) {
	f := newSpawnerFixture(t, 1, fixedPlayer{}, func(c *config.Tuning) {
		c.Spawner.IntervalMin = 1
		c.Spawner.IntervalMax = 1
	})

	f.spawner.Update(1, Snapshot{Active: true, Score: 17})
	if len(f.pool.acquired) != 1 {
		t.Fatalf("score 17: acquired %d, want 1", len(f.pool.acquired))
	}
	f.spawner.Update(1, Snapshot{Active: true, Score: 18})
	if len(f.pool.acquired) != 3 {
		t.Fatalf("score 18: acquired %d total, want 3", len(f.pool.acquired))
	}
	assertAimedAt(t, f.pool.acquired[1], physics.Vec3{Y: f.tuning.Arena.SpawnHeight})
}

func TestSpawnerClassification(t *testing.T) {
	const rolls = 4000
	tests := []struct {
		name         string
		snap         Snapshot
		wantPowerUps bool
	}{
		{"before power-up delay", Snapshot{Active: true, Elapsed: 5}, false},
		{"after power-up delay", Snapshot{Active: true, Elapsed: 20}, true},
		{"already powered up", Snapshot{Active: true, Elapsed: 20, PoweredUp: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSpawnerFixture(t, 42, fixedPlayer{}, nil)
			counts := map[object.Kind]int{}
			for range rolls {
				kind, size := f.spawner.classify(tt.snap)
				counts[kind]++
				if kind == object.KindPowerUp && size != object.SizeLarge {
					t.Fatalf("power-up size %v", size)
				}
			}
			if got := counts[object.KindPowerUp] > 0; got != tt.wantPowerUps {
				t.Errorf("power-ups seen = %v, want %v (%v)", got, tt.wantPowerUps, counts)
			}
			// Collectibles are roughly one in five of what is left
			share := float64(counts[object.KindCollectible]) / float64(rolls-counts[object.KindPowerUp])
			if share < 0.15 || share > 0.25 {
				t.Errorf("collectible share = %.3f, want about 0.2", share)
			}
		})
	}
}

func TestSpawnerPowerUpDisabled(t *testing.T) {
	f := newSpawnerFixture(t, 42, fixedPlayer{}, func(c *config.Tuning) {
		c.Spawner.PowerUpEnabled = false
	})
	for range 2000 {
		if kind, _ := f.spawner.classify(Snapshot{Active: true, Elapsed: 60}); kind == object.KindPowerUp {
			t.Fatal("power-up spawned while disabled")
		}
	}
}

func TestHazardSize(t *testing.T) {
	tests := []struct {
		score               int
		wantHuge, wantLarge float64 // Expected shares
	}{
		{0, 0, 0},
		{5, 0.05, 0.05},
		{15, 0.15, 0.15},
		{100, 0.30, 0.10},
	}
	const rolls = 20000
	for _, tt := range tests {
		f := newSpawnerFixture(t, 5, nil, nil)
		counts := map[object.SizeClass]int{}
		for range rolls {
			counts[f.spawner.HazardSize(tt.score)]++
		}
		huge := float64(counts[object.SizeHuge]) / rolls
		large := float64(counts[object.SizeLarge]) / rolls
		if math.Abs(huge-tt.wantHuge) > 0.02 || math.Abs(large-tt.wantLarge) > 0.02 {
			t.Errorf("score %d: huge %.3f large %.3f, want %.2f %.2f",
				tt.score, huge, large, tt.wantHuge, tt.wantLarge)
		}
	}
}

func TestSpawnerTrajectory(t *testing.T) {
	f := newSpawnerFixture(t, 11, fixedPlayer{}, nil)
	arena := f.tuning.Arena
	radius := arena.PlatformRadius + arena.SpawnOffset

	for range 2000 {
		for _, kind := range []object.Kind{object.KindHazard, object.KindCollectible, object.KindPowerUp} {
			pos, target := f.spawner.trajectory(kind)
			if math.Abs(pos.Flat().Len()-radius) > 1e-9 || pos.Y != arena.SpawnHeight {
				t.Fatalf("spawn point %v not on the spawn circle", pos)
			}
			if target.Y != arena.SpawnHeight {
				t.Fatalf("target %v not at flight height", target)
			}

			// A chord to an angular offset o from the antipode passes the
			// center at distance radius*sin(o/2). Direct aims hit the player
			// at the origin, which is closer still.
			maxOffset := f.tuning.Spawner.MaxOffset
			if kind == object.KindCollectible {
				maxOffset = f.tuning.Spawner.CollectibleMaxOffset
			}
			limit := radius*math.Sin(maxOffset/2) + 1e-9
			if miss := missDistance(pos, target); miss > limit {
				t.Fatalf("%v path misses the center by %.3f, limit %.3f", kind, miss, limit)
			}
		}
	}
}

func TestSpawnerLaunchSpeed(t *testing.T) {
	f := newSpawnerFixture(t, 3, fixedPlayer{}, nil)
	speeds := map[object.Kind]float64{
		object.KindHazard:      f.tuning.Droplet.HazardSpeed,
		object.KindCollectible: f.tuning.Droplet.CollectibleSpeed,
		object.KindPowerUp:     f.tuning.Droplet.PowerUpSpeed,
	}
	for kind, want := range speeds {
		pos, target := f.spawner.trajectory(kind)
		d := f.spawner.launch(kind, object.SizeNormal, pos, target)
		if got := d.Velocity.Len(); math.Abs(got-want) > 1e-9 {
			t.Errorf("%v speed = %v, want %v", kind, got, want)
		}
		if !d.Active() {
			t.Errorf("%v droplet not active after launch", kind)
		}
	}
}

// missDistance is how close the line through a and b passes to the origin.
func missDistance(a, b physics.Vec3) float64 {
	a, b = a.Flat(), b.Flat()
	d := b.Sub(a)
	// |a x d| / |d| on the XZ plane
	return math.Abs(a.X*d.Z-a.Z*d.X) / d.Len()
}

func assertAimedAt(t *testing.T, d *object.Droplet, target physics.Vec3) {
	t.Helper()
	want := target.Sub(d.Position).Normalized()
	got := d.Velocity.Normalized()
	if physics.Distance(want, got) > 1e-9 {
		t.Errorf("droplet heads %v, want toward %v (%v)", got, target, want)
	}
}

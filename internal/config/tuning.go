package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTuning is returned (wrapped) when a tuning file holds values the
// gameplay loop cannot run with.
var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds every gameplay threshold. All of them are defaults that a
// YAML file may override; none are protocol constants.
type Tuning struct {
	Pool    PoolTuning    `yaml:"pool"`
	Droplet DropletTuning `yaml:"droplet"`
	Spawner SpawnerTuning `yaml:"spawner"`
	Barrage BarrageTuning `yaml:"barrage"`
	PowerUp PowerUpTuning `yaml:"power_up"`
	Arena   ArenaTuning   `yaml:"arena"`
	Player  PlayerTuning  `yaml:"player"`
}

// PoolTuning sizes the droplet pool.
type PoolTuning struct {
	InitialCount int `yaml:"initial_count"` // Soft target, pre-created during warm-up
	MaxCapacity  int `yaml:"max_capacity"`  // Hard ceiling on in-flight droplets
}

// DropletTuning configures droplet kinematics and collision size.
type DropletTuning struct {
	MaxLifetime      float64 `yaml:"max_lifetime"` // Seconds before an unresolved droplet self-expires
	HazardSpeed      float64 `yaml:"hazard_speed"`
	CollectibleSpeed float64 `yaml:"collectible_speed"`
	PowerUpSpeed     float64 `yaml:"power_up_speed"`
	NormalRadius     float64 `yaml:"normal_radius"`
	LargeRadius      float64 `yaml:"large_radius"`
	HugeRadius       float64 `yaml:"huge_radius"`
}

// SpawnerTuning configures the difficulty spawner.
type SpawnerTuning struct {
	IntervalMin          float64 `yaml:"interval_min"`           // Seconds
	IntervalMax          float64 `yaml:"interval_max"`           // Seconds
	TargetedScore        int     `yaml:"targeted_score"`         // Score from which every spawn adds an aimed hazard
	PowerUpEnabled       bool    `yaml:"power_up_enabled"`       // Feature switch for power-up droplets
	PowerUpDelay         float64 `yaml:"power_up_delay"`         // Elapsed seconds before power-ups may appear
	PowerUpChance        int     `yaml:"power_up_chance"`        // 1 in N
	CollectibleChance    int     `yaml:"collectible_chance"`     // 1 in N
	HugeChanceCap        int     `yaml:"huge_chance_cap"`        // Percent
	LargeChanceCap       int     `yaml:"large_chance_cap"`       // Percent
	DirectAimChance      int     `yaml:"direct_aim_chance"`      // 1 in N
	MinOffset            float64 `yaml:"min_offset"`             // Radians from the antipode
	MaxOffset            float64 `yaml:"max_offset"`             // Radians from the antipode
	CollectibleMaxOffset float64 `yaml:"collectible_max_offset"` // Radians, narrower so pickups cross the platform
}

// BarrageTuning configures score-reactive bursts.
type BarrageTuning struct {
	StartScore    int     `yaml:"start_score"`    // Lowest score that triggers a single-shot barrage
	ModerateScore int     `yaml:"moderate_score"` // From here a coin flip picks 2 or 3 shots
	HighScore     int     `yaml:"high_score"`     // From here the count is uniform in [HighMin, HighMax]
	HighMin       int     `yaml:"high_min"`
	HighMax       int     `yaml:"high_max"`
	Stagger       float64 `yaml:"stagger"` // Seconds between consecutive barrage shots
}

// PowerUpTuning configures the power-up and the immunity window after it.
type PowerUpTuning struct {
	Duration         float64 `yaml:"duration"`
	ImmunityDuration float64 `yaml:"immunity_duration"`
}

// ArenaTuning describes the circular platform in world units (XZ plane).
type ArenaTuning struct {
	PlatformRadius float64 `yaml:"platform_radius"`
	SpawnOffset    float64 `yaml:"spawn_offset"` // Safety margin between platform edge and spawn circle
	SpawnHeight    float64 `yaml:"spawn_height"` // Droplet flight height, equal to the orb's resting height
}

// PlayerTuning configures the player orb.
type PlayerTuning struct {
	Radius       float64 `yaml:"radius"`
	Speed        float64 `yaml:"speed"`
	JumpVelocity float64 `yaml:"jump_velocity"`
	Gravity      float64 `yaml:"gravity"`
}

// DefaultTuning returns the shipped gameplay defaults.
func DefaultTuning() Tuning {
	return Tuning{
		Pool: PoolTuning{
			InitialCount: 20,
			MaxCapacity:  50,
		},
		Droplet: DropletTuning{
			MaxLifetime:      6.0,
			HazardSpeed:      6.0,
			CollectibleSpeed: 5.0,
			PowerUpSpeed:     4.0,
			NormalRadius:     0.5,
			LargeRadius:      0.9,
			HugeRadius:       1.4,
		},
		Spawner: SpawnerTuning{
			IntervalMin:          0.8,
			IntervalMax:          2.0,
			TargetedScore:        18,
			PowerUpEnabled:       true,
			PowerUpDelay:         10.0,
			PowerUpChance:        20,
			CollectibleChance:    5,
			HugeChanceCap:        30,
			LargeChanceCap:       40,
			DirectAimChance:      12,
			MinOffset:            0.0,
			MaxOffset:            0.9,
			CollectibleMaxOffset: 0.45,
		},
		Barrage: BarrageTuning{
			StartScore:    3,
			ModerateScore: 7,
			HighScore:     11,
			HighMin:       5,
			HighMax:       9,
			Stagger:       1.0,
		},
		PowerUp: PowerUpTuning{
			Duration:         10.0,
			ImmunityDuration: 2.0,
		},
		Arena: ArenaTuning{
			PlatformRadius: 8.0,
			SpawnOffset:    4.0,
			SpawnHeight:    0.5,
		},
		Player: PlayerTuning{
			Radius:       0.6,
			Speed:        7.0,
			JumpVelocity: 7.0,
			Gravity:      20.0,
		},
	}
}

// LoadTuning reads a YAML tuning file and overlays it on DefaultTuning.
// Keys missing from the file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file: %w", err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning YAML: %w", err)
	}

	if err := t.Validate(); err != nil {
		return t, err
	}

	return t, nil
}

// Validate checks that the tuning describes a playable game.
func (t Tuning) Validate() error {
	switch {
	case t.Pool.InitialCount < 0:
		return fmt.Errorf("%w: pool.initial_count must be >= 0, got %d", ErrInvalidTuning, t.Pool.InitialCount)
	case t.Pool.MaxCapacity < 1:
		return fmt.Errorf("%w: pool.max_capacity must be >= 1, got %d", ErrInvalidTuning, t.Pool.MaxCapacity)
	case t.Pool.MaxCapacity < t.Pool.InitialCount:
		return fmt.Errorf("%w: pool.max_capacity (%d) < pool.initial_count (%d)",
			ErrInvalidTuning, t.Pool.MaxCapacity, t.Pool.InitialCount)
	case t.Droplet.MaxLifetime <= 0:
		return fmt.Errorf("%w: droplet.max_lifetime must be > 0", ErrInvalidTuning)
	case t.Spawner.IntervalMin <= 0:
		return fmt.Errorf("%w: spawner.interval_min must be > 0", ErrInvalidTuning)
	case t.Spawner.IntervalMax < t.Spawner.IntervalMin:
		return fmt.Errorf("%w: spawner.interval_max (%.2f) < spawner.interval_min (%.2f)",
			ErrInvalidTuning, t.Spawner.IntervalMax, t.Spawner.IntervalMin)
	case t.Spawner.PowerUpChance < 1, t.Spawner.CollectibleChance < 1, t.Spawner.DirectAimChance < 1:
		return fmt.Errorf("%w: spawn chances are 1-in-N and need N >= 1", ErrInvalidTuning)
	case t.Spawner.MaxOffset < t.Spawner.MinOffset:
		return fmt.Errorf("%w: spawner.max_offset < spawner.min_offset", ErrInvalidTuning)
	case t.Barrage.HighMax < t.Barrage.HighMin:
		return fmt.Errorf("%w: barrage.high_max (%d) < barrage.high_min (%d)",
			ErrInvalidTuning, t.Barrage.HighMax, t.Barrage.HighMin)
	case t.Barrage.Stagger <= 0:
		return fmt.Errorf("%w: barrage.stagger must be > 0", ErrInvalidTuning)
	case t.PowerUp.Duration <= 0 || t.PowerUp.ImmunityDuration <= 0:
		return fmt.Errorf("%w: power_up durations must be > 0", ErrInvalidTuning)
	case t.Arena.PlatformRadius <= 0:
		return fmt.Errorf("%w: arena.platform_radius must be > 0", ErrInvalidTuning)
	}
	return nil
}

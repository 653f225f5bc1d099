package object

import (
	"math"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/draw"
	"github.com/tomz197/orbfall/internal/physics"
)

// Kind decides what happens when a droplet reaches the player.
type Kind int

const (
	KindHazard      Kind = iota // Ends the run unless the player is shielded
	KindCollectible             // Worth one point
	KindPowerUp                 // Starts the power-up
)

func (k Kind) String() string {
	switch k {
	case KindHazard:
		return "hazard"
	case KindCollectible:
		return "collectible"
	case KindPowerUp:
		return "power-up"
	default:
		return "unknown"
	}
}

// SizeClass scales a droplet's collision radius and visual size.
type SizeClass int

const (
	SizeNormal SizeClass = iota
	SizeLarge
	SizeHuge

	sizeClassCount
)

func (s SizeClass) String() string {
	switch s {
	case SizeNormal:
		return "normal"
	case SizeLarge:
		return "large"
	case SizeHuge:
		return "huge"
	default:
		return "unknown"
	}
}

// defaultRadius is used when a droplet was built without tuning.
const defaultRadius = 0.5

// Droplet is a pooled projectile crossing the arena.
// A pooled droplet is never destroyed during a session: it is reset and reused.
type Droplet struct {
	Position    physics.Vec3 // World position (center)
	Velocity    physics.Vec3 // Unit direction * speed
	Kind        Kind
	Size        SizeClass
	Elapsed     float64   // Seconds since activation
	MaxLifetime float64   // Seconds before self-expiry
	Shape       []float64 // Radial multipliers for an irregular outline; nil draws a plain circle

	radii  [sizeClassCount]float64
	active bool
	passed bool  // Already passed through a shielded player
	owner  *Pool // nil for one-off fallbacks
}

// NewDroplet creates an inactive droplet with the default radii and lifetime.
// The pool applies its tuning to every droplet it takes ownership of.
func NewDroplet() *Droplet {
	d := &Droplet{}
	d.applyTuning(config.DefaultTuning().Droplet)
	return d
}

func (d *Droplet) applyTuning(t config.DropletTuning) {
	d.MaxLifetime = t.MaxLifetime
	d.radii = [sizeClassCount]float64{
		SizeNormal: t.NormalRadius,
		SizeLarge:  t.LargeRadius,
		SizeHuge:   t.HugeRadius,
	}
}

// Reset clears classification, kinematics and timers. The droplet becomes inactive.
func (d *Droplet) Reset() {
	d.Position = physics.Vec3{}
	d.Velocity = physics.Vec3{}
	d.Kind = KindHazard
	d.Size = SizeNormal
	d.Elapsed = 0
	d.active = false
	d.passed = false
}

// Activate marks the droplet as in flight.
func (d *Droplet) Activate() {
	d.Elapsed = 0
	d.active = true
}

// Active reports whether the droplet is in flight.
func (d *Droplet) Active() bool {
	return d.active
}

// Pooled reports whether the droplet belongs to a pool.
// One-off fallbacks are dropped after use instead of recycled.
func (d *Droplet) Pooled() bool {
	return d.owner != nil
}

// Launch classifies the droplet and sets it moving. Power-ups are always large.
func (d *Droplet) Launch(kind Kind, size SizeClass, pos, vel physics.Vec3) {
	if kind == KindPowerUp {
		size = SizeLarge
	}
	d.Kind = kind
	d.Size = size
	d.Position = pos
	d.Velocity = vel
}

// MarkPassed records that the droplet overlapped a shielded player.
// Returns true only the first time.
func (d *Droplet) MarkPassed() (first bool) {
	if d.passed {
		return false
	}
	d.passed = true
	return true
}

// Radius returns the collision radius for the droplet's size class.
func (d *Droplet) Radius() float64 {
	if d.Size < 0 || d.Size >= sizeClassCount || d.radii[d.Size] <= 0 {
		return defaultRadius
	}
	return d.radii[d.Size]
}

// Update advances the droplet. Returns true once it outlived MaxLifetime
// without colliding; the caller returns it to the pool.
func (d *Droplet) Update(dt float64) (expired bool) {
	if !d.active {
		return false
	}

	d.Elapsed += dt
	if d.MaxLifetime > 0 && d.Elapsed >= d.MaxLifetime {
		return true
	}

	d.Position = d.Position.Add(d.Velocity.Scale(dt))
	return false
}

// HitPlayer applies the collision outcome for this droplet's kind.
// shielded is true while the player is powered up or immune.
// Returns true when the droplet is used up and must go back to the pool;
// hazards pass through a shielded player and stay in flight.
func (d *Droplet) HitPlayer(ref Referee, shielded bool) (consumed bool) {
	switch d.Kind {
	case KindPowerUp:
		ref.ActivatePowerUp()
		return true
	case KindCollectible:
		ref.AddScore(1)
		return true
	default:
		if shielded {
			return false
		}
		// Game over clears every active droplet, this one included
		ref.GameOver()
		return false
	}
}

// Draw renders the droplet: hazards as outlines, pickups filled, power-ups as diamonds.
func (d *Droplet) Draw(ctx DrawContext) error {
	if !d.active {
		return nil
	}

	cx, cy := ctx.View.Project(d.Position)
	r := d.Radius() * ctx.View.Scale

	if d.Kind == KindPowerUp {
		// Pulse between 100% and 130% size
		r *= 1.15 + 0.15*math.Sin(ctx.Time*8)
		points := ctx.Canvas.BorrowPoints(4)
		points[0] = draw.Point{X: cx, Y: cy - r}
		points[1] = draw.Point{X: cx + r, Y: cy}
		points[2] = draw.Point{X: cx, Y: cy + r}
		points[3] = draw.Point{X: cx - r, Y: cy}
		ctx.Canvas.DrawPolygon(points, true)
		return nil
	}

	numVerts := len(d.Shape)
	if numVerts < 3 {
		ctx.Canvas.DrawCircle(cx, cy, r, d.Kind == KindCollectible)
		return nil
	}

	points := ctx.Canvas.BorrowPoints(numVerts)
	for i, mul := range d.Shape {
		angle := float64(i) * 2 * math.Pi / float64(numVerts)
		points[i] = draw.Point{
			X: cx + math.Cos(angle)*r*mul,
			Y: cy + math.Sin(angle)*r*mul,
		}
	}
	ctx.Canvas.DrawPolygon(points, d.Kind == KindCollectible)
	return nil
}

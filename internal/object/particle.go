package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/orbfall/internal/physics"
)

var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived splash dot. Particles are purely visual and live
// in the presentation layer; they never touch gameplay state.
type Particle struct {
	Position    physics.Vec3
	Velocity    physics.Vec3
	Lifetime    float64 // Seconds remaining
	MaxLifetime float64
	Drag        float64 // Fraction of speed kept per 1/60 s
}

// Effects collects spawned particles.
type Effects interface {
	Add(p *Particle)
}

// NewParticle takes a particle from the pool.
func NewParticle(pos, vel physics.Vec3, lifetime float64) *Particle {
	p := particlePool.Get().(*Particle)
	*p = Particle{
		Position:    pos,
		Velocity:    vel,
		Lifetime:    lifetime,
		MaxLifetime: lifetime,
		Drag:        0.92,
	}
	return p
}

// Release returns the particle to the pool.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// SpawnSplash bursts count particles outward on the XZ plane around pos.
func SpawnSplash(pos physics.Vec3, count int, speed, lifetime float64, fx Effects) {
	if fx == nil {
		return
	}
	for range count {
		angle := rand.Float64() * 2 * math.Pi
		spd := speed * (0.5 + rand.Float64())
		life := lifetime * (0.5 + rand.Float64()*0.5)
		fx.Add(NewParticle(pos, physics.OnCircle(angle, spd, 0), life))
	}
}

// Update moves the particle. Returns true when it has faded out.
func (p *Particle) Update(dt float64) (done bool) {
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true
	}
	p.Velocity = p.Velocity.Scale(math.Pow(p.Drag, dt*60))
	p.Position = p.Position.Add(p.Velocity.Scale(dt))
	return false
}

// Draw plots the particle unless it is in the last quarter of its life.
func (p *Particle) Draw(ctx DrawContext) {
	if p.MaxLifetime > 0 && p.Lifetime/p.MaxLifetime < 0.25 {
		return
	}
	ctx.Canvas.SetFloat(ctx.View.Project(p.Position))
}

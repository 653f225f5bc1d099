package object

import (
	"math"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/draw"
	"github.com/tomz197/orbfall/internal/physics"
)

// Orb is the player: a ball rolling on a round platform that can jump.
type Orb struct {
	Position physics.Vec3
	Velocity physics.Vec3

	Radius       float64
	Speed        float64 // Horizontal speed at full input
	JumpVelocity float64 // Initial upward speed of a jump
	Gravity      float64
	RestHeight   float64 // Y of the orb center when standing on the platform
	Platform     float64 // Radius of the walkable platform
}

// NewOrb creates an orb resting at the arena center.
func NewOrb(pt config.PlayerTuning, at config.ArenaTuning) *Orb {
	o := &Orb{
		Radius:       pt.Radius,
		Speed:        pt.Speed,
		JumpVelocity: pt.JumpVelocity,
		Gravity:      pt.Gravity,
		RestHeight:   at.SpawnHeight,
		Platform:     at.PlatformRadius,
	}
	o.Reset()
	return o
}

// Reset puts the orb back at the center of the platform, at rest.
func (o *Orb) Reset() {
	o.Position = physics.Vec3{Y: o.RestHeight}
	o.Velocity = physics.Vec3{}
}

// Grounded reports whether the orb stands on the platform.
func (o *Orb) Grounded() bool {
	return o.Position.Y <= o.RestHeight && o.Velocity.Y <= 0
}

// Update applies one tick of input and gravity.
func (o *Orb) Update(dt float64, in Controls) {
	dir := physics.Vec3{X: in.MoveX, Z: in.MoveZ}
	if dir.LenSquared() > 1 {
		dir = dir.Normalized()
	}
	o.Velocity.X = dir.X * o.Speed
	o.Velocity.Z = dir.Z * o.Speed

	if in.Jump && o.Grounded() {
		o.Velocity.Y = o.JumpVelocity
	}
	o.Velocity.Y -= o.Gravity * dt

	o.Position = o.Position.Add(o.Velocity.Scale(dt))
	if o.Position.Y <= o.RestHeight {
		o.Position.Y = o.RestHeight
		o.Velocity.Y = 0
	}

	// Keep the whole orb on the platform
	limit := o.Platform - o.Radius
	if flat := o.Position.Flat(); limit > 0 && flat.Len() > limit {
		edge := flat.Normalized().Scale(limit)
		o.Position.X, o.Position.Z = edge.X, edge.Z
	}
}

// PlayerPosition implements PlayerLocator.
func (o *Orb) PlayerPosition() (physics.Vec3, bool) {
	return o.Position, true
}

// Draw renders the orb from above. Airborne orbs grow slightly. While blink
// (remaining shield seconds) is positive the orb flashes at hz.
func (o *Orb) Draw(ctx DrawContext, blink, hz float64) error {
	if !ShouldRenderBlink(blink, hz) {
		return nil
	}
	cx, cy := ctx.View.Project(o.Position)
	lift := math.Max(0, o.Position.Y-o.RestHeight)
	r := (o.Radius + lift*0.15) * ctx.View.Scale
	ctx.Canvas.DrawCircle(cx, cy, r, true)
	return nil
}

// DrawPlatform outlines the walkable platform.
func DrawPlatform(ctx DrawContext, radius float64) {
	cx, cy := ctx.View.Project(physics.Vec3{})
	ctx.Canvas.DrawCircle(cx, cy, radius*ctx.View.Scale, false)
	// Center mark
	ctx.Canvas.DrawLine(draw.Point{X: cx - 1, Y: cy}, draw.Point{X: cx + 1, Y: cy})
}

package object

import (
	"github.com/tomz197/orbfall/internal/draw"
	"github.com/tomz197/orbfall/internal/physics"
)

// Referee receives the gameplay consequences of a droplet reaching the player.
// Implemented by the authoritative game state.
type Referee interface {
	AddScore(n int)
	ActivatePowerUp()
	GameOver()
}

// PlayerLocator reports where the player is. ok is false when no player exists.
type PlayerLocator interface {
	PlayerPosition() (pos physics.Vec3, ok bool)
}

// Templates is the asset cache consulted while the pool warms up.
// NewDroplet is only called after Ready reports true.
type Templates interface {
	Ready() bool
	NewDroplet() *Droplet
}

// Controls is one tick of player input: two continuous movement axes and
// an edge-triggered jump.
type Controls struct {
	MoveX float64 // -1 (left) .. 1 (right)
	MoveZ float64 // -1 (up) .. 1 (down)
	Jump  bool    // True only on the tick the jump key went down
}

// View maps world XZ coordinates to logical canvas coordinates (top-down).
type View struct {
	CenterX float64 // Logical X of the arena origin
	CenterY float64 // Logical Y of the arena origin
	Scale   float64 // Logical units per world unit
}

// Project converts a world position to logical canvas coordinates.
func (v View) Project(p physics.Vec3) (x, y float64) {
	return v.CenterX + p.X*v.Scale, v.CenterY + p.Z*v.Scale
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Canvas *draw.Canvas
	View   View
	Time   float64 // Seconds, drives blinking
}

// ShouldRenderBlink returns true if an object with remaining protection/invincibility
// time should be rendered this frame (for blinking effect).
// Returns true always if remainingTime <= 0 (no protection).
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return true
	}
	phase := int(remainingTime * frequency)
	return phase%2 != 0
}

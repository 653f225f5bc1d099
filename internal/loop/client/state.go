package client

import (
	"time"

	"github.com/tomz197/orbfall/internal/input"
	"github.com/tomz197/orbfall/internal/object"
)

// Screen is the client's current presentation phase.
type Screen int

const (
	ScreenTitle    Screen = iota // Title and controls
	ScreenPlaying                // Run in progress (possibly paused)
	ScreenGameOver               // Final score, restart prompt
)

// ClientState holds per-connection presentation state. Gameplay state lives
// in the session; this only tracks what the player sees.
type ClientState struct {
	Input      input.Input
	Screen     Screen
	Running    bool
	Paused     bool
	NewBest    bool    // Last run set the high score
	ScreenTime float64 // Seconds on the current screen

	particles   []*object.Particle
	prevScreen  Screen
	prevPaused  bool
	delta       time.Duration
	isInactive  bool
	wasInactive bool
}

// NewClientState creates the state for a fresh connection on the title screen.
func NewClientState() *ClientState {
	return &ClientState{
		Screen:     ScreenTitle,
		prevScreen: -1,
		Running:    true,
	}
}

// Add implements object.Effects.
func (s *ClientState) Add(p *object.Particle) {
	s.particles = append(s.particles, p)
}

// updateParticles advances splash particles and returns finished ones to their pool.
func (s *ClientState) updateParticles(dt float64) {
	kept := s.particles[:0]
	for _, p := range s.particles {
		if p.Update(dt) {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(s.particles[len(kept):])
	s.particles = kept
}

func (s *ClientState) clearParticles() {
	for _, p := range s.particles {
		p.Release()
	}
	clear(s.particles)
	s.particles = s.particles[:0]
}

func (s *ClientState) setScreen(sc Screen) {
	s.Screen = sc
	s.ScreenTime = 0
}

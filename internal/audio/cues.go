// Package audio plays short synthesized cues in reaction to gameplay events.
package audio

import (
	"github.com/tomz197/orbfall/internal/game"
	"github.com/tomz197/orbfall/internal/object"
)

// Cue is a named sound effect.
type Cue int

const (
	CuePickup Cue = iota
	CuePowerUp
	CueHazardIgnored
	CueImmunityEnded
	CueGameOver
	CueGameStarted
)

func (c Cue) String() string {
	switch c {
	case CuePickup:
		return "pickup"
	case CuePowerUp:
		return "power_up"
	case CueHazardIgnored:
		return "hazard_ignored"
	case CueImmunityEnded:
		return "immunity_ended"
	case CueGameOver:
		return "game_over"
	case CueGameStarted:
		return "game_started"
	default:
		return "unknown"
	}
}

// Player plays cues without blocking the caller.
type Player interface {
	Play(c Cue)
}

// Nop is a Player that stays silent.
type Nop struct{}

func (Nop) Play(Cue) {}

// Cues turns gameplay events into sound cues. Register it on a session.
type Cues struct {
	player Player
}

// NewCues creates a cue handler. A nil player is silent.
func NewCues(p Player) *Cues {
	if p == nil {
		p = Nop{}
	}
	return &Cues{player: p}
}

// EventTypes implements game.Handler.
func (c *Cues) EventTypes() []game.EventType {
	return []game.EventType{
		game.EventGameStarted,
		game.EventPickup,
		game.EventHazardIgnored,
		game.EventImmunityEnded,
		game.EventGameOver,
	}
}

// HandleEvent implements game.Handler.
func (c *Cues) HandleEvent(ev game.Event) {
	switch ev.Type {
	case game.EventGameStarted:
		c.player.Play(CueGameStarted)
	case game.EventPickup:
		// Power-up has its own jingle
		if ev.Kind == object.KindPowerUp {
			c.player.Play(CuePowerUp)
		} else {
			c.player.Play(CuePickup)
		}
	case game.EventHazardIgnored:
		c.player.Play(CueHazardIgnored)
	case game.EventImmunityEnded:
		c.player.Play(CueImmunityEnded)
	case game.EventGameOver:
		c.player.Play(CueGameOver)
	}
}

// Package game holds the authoritative gameplay loop: the state machine, the
// difficulty spawner, the deferred-work scheduler and the session tying them
// to the droplet pool.
package game

import (
	"github.com/google/uuid"

	"github.com/tomz197/orbfall/internal/object"
	"github.com/tomz197/orbfall/internal/physics"
)

// EventType identifies a gameplay notification.
type EventType int

const (
	EventGameStarted     EventType = iota // A new run began
	EventScoreChanged                     // Score increased; Score holds the new value
	EventPowerUpStarted                   // Power-up picked up
	EventImmunityStarted                  // Power-up ran out, immunity window begins
	EventImmunityEnded                    // Immunity window is over
	EventPickup                           // A droplet was consumed by the player
	EventHazardIgnored                    // A hazard passed through a shielded player
	EventGameOver                         // Run ended; Score and HighScore are final

	eventTypeCount
)

var eventTypeNames = [eventTypeCount]string{
	EventGameStarted:     "game_started",
	EventScoreChanged:    "score_changed",
	EventPowerUpStarted:  "power_up_started",
	EventImmunityStarted: "immunity_started",
	EventImmunityEnded:   "immunity_ended",
	EventPickup:          "pickup",
	EventHazardIgnored:   "hazard_ignored",
	EventGameOver:        "game_over",
}

func (t EventType) String() string {
	if t < 0 || t >= eventTypeCount {
		return "unknown"
	}
	return eventTypeNames[t]
}

// Event is a notification emitted by State or Session.
// Fields that do not apply to the event type are zero.
type Event struct {
	Type      EventType
	RunID     uuid.UUID
	Score     int
	HighScore int
	Kind      object.Kind  // Pickup, HazardIgnored
	Position  physics.Vec3 // Pickup, HazardIgnored, GameOver: where it happened
}

// Handler receives events it registered for.
//
// Handlers are invoked synchronously, in registration order, from the tick
// loop. A handler may call back into State; events emitted from inside a
// handler are delivered before the outer emit returns.
type Handler interface {
	// HandleEvent processes a single event
	HandleEvent(ev Event)

	// EventTypes returns the event types this handler processes
	EventTypes() []EventType
}

// HandlerFunc adapts a function to a Handler for a fixed set of types.
type HandlerFunc struct {
	Types []EventType
	Fn    func(Event)
}

func (h HandlerFunc) HandleEvent(ev Event) { h.Fn(ev) }

func (h HandlerFunc) EventTypes() []EventType { return h.Types }

// observers routes events to handlers by type.
type observers struct {
	handlers [eventTypeCount][]Handler
}

func (o *observers) register(h Handler) {
	for _, t := range h.EventTypes() {
		if t >= 0 && t < eventTypeCount {
			o.handlers[t] = append(o.handlers[t], h)
		}
	}
}

func (o *observers) emit(ev Event) {
	for _, h := range o.handlers[ev.Type] {
		h.HandleEvent(ev)
	}
}

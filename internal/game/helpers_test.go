package game

import (
	"math/rand"

	"github.com/tomz197/orbfall/internal/object"
	"github.com/tomz197/orbfall/internal/physics"
)

func allEventTypes() []EventType {
	types := make([]EventType, 0, eventTypeCount)
	for t := range eventTypeCount {
		types = append(types, t)
	}
	return types
}

// recorder collects every event it receives.
type recorder struct {
	types  []EventType
	events []Event
}

func newRecorder(types ...EventType) *recorder {
	if len(types) == 0 {
		types = allEventTypes()
	}
	return &recorder{types: types}
}

func (r *recorder) EventTypes() []EventType { return r.types }

func (r *recorder) HandleEvent(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t EventType) (Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}

type countingClearer struct{ calls int }

func (c *countingClearer) ClearActive() { c.calls++ }

// fakePool hands out fresh unpooled droplets and remembers them.
type fakePool struct {
	acquired []*object.Droplet
}

func (p *fakePool) Acquire() *object.Droplet {
	d := object.NewDroplet()
	d.Activate()
	p.acquired = append(p.acquired, d)
	return d
}

type fixedPlayer struct {
	pos     physics.Vec3
	missing bool
}

func (p fixedPlayer) PlayerPosition() (physics.Vec3, bool) {
	return p.pos, !p.missing
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

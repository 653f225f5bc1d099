package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

type note struct {
	freq float64 // Hz, 0 is a rest
	dur  time.Duration
}

var melodies = map[Cue][]note{
	CuePickup:        {{880, 60 * time.Millisecond}, {1320, 60 * time.Millisecond}},
	CuePowerUp:       {{523, 80 * time.Millisecond}, {659, 80 * time.Millisecond}, {784, 80 * time.Millisecond}, {1047, 140 * time.Millisecond}},
	CueHazardIgnored: {{220, 50 * time.Millisecond}},
	CueImmunityEnded: {{660, 70 * time.Millisecond}, {0, 40 * time.Millisecond}, {440, 90 * time.Millisecond}},
	CueGameOver:      {{392, 150 * time.Millisecond}, {330, 150 * time.Millisecond}, {262, 300 * time.Millisecond}},
	CueGameStarted:   {{440, 70 * time.Millisecond}, {660, 110 * time.Millisecond}},
}

// BeepPlayer synthesizes cues on the default audio device.
type BeepPlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
}

// NewBeepPlayer creates a player. Nothing is audible until Init succeeds.
func NewBeepPlayer(volume float64) *BeepPlayer {
	return &BeepPlayer{mixer: &beep.Mixer{}, volume: volume}
}

// Init opens the audio device and starts the mixer.
func (p *BeepPlayer) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play queues a cue on the mixer. It is a no-op before Init.
func (p *BeepPlayer) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s, err := cueStreamer(c, p.volume)
	if err != nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close silences everything still playing.
func (p *BeepPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// cueStreamer renders a cue's melody as a finite streamer.
func cueStreamer(c Cue, volume float64) (beep.Streamer, error) {
	notes, ok := melodies[c]
	if !ok {
		return nil, fmt.Errorf("no melody for cue %v", c)
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		samples := sampleRate.N(n.dur)
		if n.freq == 0 {
			parts = append(parts, beep.Take(samples, rest))
			continue
		}
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("cue %v: %w", c, err)
		}
		parts = append(parts, beep.Take(samples, tone))
	}
	return &gain{Streamer: beep.Seq(parts...), volume: volume}, nil
}

// rest streams silence forever.
var rest = beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
	clear(samples)
	return len(samples), true
})

// gain scales samples by a fixed volume.
type gain struct {
	beep.Streamer
	volume float64
}

func (g *gain) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.Streamer.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= g.volume
		samples[i][1] *= g.volume
	}
	return n, ok
}

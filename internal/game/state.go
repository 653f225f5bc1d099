package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/physics"
)

// Clearer is the part of the droplet pool the state machine needs.
type Clearer interface {
	ClearActive()
}

// Snapshot is a consistent copy of State taken once per tick.
type Snapshot struct {
	RunID        uuid.UUID
	Score        int
	HighScore    int
	LastScore    int
	Active       bool
	Paused       bool
	Elapsed      float64
	PoweredUp    bool
	PowerUpTimer float64
	Immune       bool
	ImmuneTimer  float64
}

// Shielded reports whether hazards pass through the player.
func (s Snapshot) Shielded() bool {
	return s.PoweredUp || s.Immune
}

// Phase names the state machine position, for logs.
func (s Snapshot) Phase() string {
	switch {
	case !s.Active:
		return "idle"
	case s.PoweredUp:
		return "powered_up"
	case s.Immune:
		return "immune"
	default:
		return "active"
	}
}

// State is the single source of truth for a session: score, the power-up and
// immunity timers, and whether a run is in progress.
//
// States: idle -> active -> powered up -> immune -> active, any active state
// -> idle on game over. Powered up and immune are never both set.
type State struct {
	score     int
	highScore int
	lastScore int
	active    bool
	paused    bool
	elapsed   float64

	poweredUp    bool
	powerUpTimer float64
	immune       bool
	immuneTimer  float64

	transitioning bool
	runID         uuid.UUID

	tuning    config.PowerUpTuning
	clearer   Clearer
	observers observers
	logger    *log.Logger

	// Where the hazard that ended the run hit, reported on EventGameOver
	lastHit physics.Vec3
}

// StateOption configures a State.
type StateOption func(*State)

// WithStateLogger sets the logger for run lifecycle messages.
func WithStateLogger(l *log.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClearer sets the pool cleared on start and game over.
func WithClearer(c Clearer) StateOption {
	return func(s *State) {
		s.clearer = c
	}
}

// NewState creates an idle state.
func NewState(t config.PowerUpTuning, opts ...StateOption) *State {
	s := &State{
		tuning: t,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds an observer for the event types it declares.
func (s *State) Register(h Handler) {
	s.observers.register(h)
}

// Emit delivers an event stamped with the current run id.
func (s *State) Emit(ev Event) {
	ev.RunID = s.runID
	s.observers.emit(ev)
}

// StartGame begins a new run with a clean battlefield.
// Calls made while a start or game over is being processed are ignored.
func (s *State) StartGame() {
	if s.transitioning {
		return
	}
	s.transitioning = true
	defer func() { s.transitioning = false }()

	s.score = 0
	s.elapsed = 0
	s.paused = false
	s.lastHit = physics.Vec3{}
	s.clearPowerUp()
	if s.clearer != nil {
		s.clearer.ClearActive()
	}
	s.active = true
	s.runID = uuid.New()

	s.logger.Info("run started", "run", s.runID, "high_score", s.highScore)
	s.Emit(Event{Type: EventGameStarted, HighScore: s.highScore})
}

// AddScore increases the score. Ignored outside a run.
func (s *State) AddScore(n int) {
	if !s.active || n <= 0 {
		return
	}
	s.score += n
	s.Emit(Event{Type: EventScoreChanged, Score: s.score, HighScore: s.highScore})
}

// ActivatePowerUp starts the power-up with a full timer. It does not check
// whether one is already running; the spawner avoids offering it then.
// A pending immunity window is dropped.
func (s *State) ActivatePowerUp() {
	s.poweredUp = true
	s.powerUpTimer = s.tuning.Duration
	s.immune = false
	s.immuneTimer = 0
	s.logPhase()
	s.Emit(Event{Type: EventPowerUpStarted, Score: s.score})
}

// endPowerUp hands over from the power-up to the immunity window.
func (s *State) endPowerUp() {
	s.poweredUp = false
	s.powerUpTimer = 0
	s.immune = true
	s.immuneTimer = s.tuning.ImmunityDuration
	s.logPhase()
	s.Emit(Event{Type: EventImmunityStarted, Score: s.score})
}

func (s *State) logPhase() {
	s.logger.Debug("phase changed", "run", s.runID, "phase", s.Snapshot().Phase(), "elapsed", s.elapsed)
}

func (s *State) clearPowerUp() {
	s.poweredUp = false
	s.powerUpTimer = 0
	s.immune = false
	s.immuneTimer = 0
}

// Update advances run time and the power-up and immunity timers.
// Does nothing while idle or paused.
func (s *State) Update(dt float64) {
	if !s.active || s.paused {
		return
	}
	s.elapsed += dt

	switch {
	case s.poweredUp:
		s.powerUpTimer -= dt
		if s.powerUpTimer <= 0 {
			s.endPowerUp()
		}
	case s.immune:
		s.immuneTimer -= dt
		if s.immuneTimer <= 0 {
			s.immune = false
			s.immuneTimer = 0
			s.logPhase()
			s.Emit(Event{Type: EventImmunityEnded, Score: s.score})
		}
	}
}

// GameOver ends the run. Only the first call per run has any effect.
func (s *State) GameOver() {
	if !s.active || s.transitioning {
		return
	}
	s.transitioning = true
	defer func() { s.transitioning = false }()

	phase := s.Snapshot().Phase()
	s.active = false
	s.lastScore = s.score
	if s.score > s.highScore {
		s.highScore = s.score
	}
	s.logger.Info("game over", "run", s.runID, "score", s.lastScore, "high_score", s.highScore,
		"elapsed", s.elapsed, "phase", phase)

	s.Emit(Event{Type: EventGameOver, Score: s.lastScore, HighScore: s.highScore, Position: s.lastHit})
	if s.clearer != nil {
		s.clearer.ClearActive()
	}
	s.score = 0
	s.paused = false
	s.clearPowerUp()
}

// gameOverAt records where the fatal hit landed before ending the run.
func (s *State) gameOverAt(pos physics.Vec3) {
	s.lastHit = pos
	s.GameOver()
}

// SetPaused freezes or resumes the run timers. Ignored while idle.
func (s *State) SetPaused(paused bool) {
	if !s.active {
		return
	}
	s.paused = paused
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		RunID:        s.runID,
		Score:        s.score,
		HighScore:    s.highScore,
		LastScore:    s.lastScore,
		Active:       s.active,
		Paused:       s.paused,
		Elapsed:      s.elapsed,
		PoweredUp:    s.poweredUp,
		PowerUpTimer: s.powerUpTimer,
		Immune:       s.immune,
		ImmuneTimer:  s.immuneTimer,
	}
}

// Score returns the current run's score.
func (s *State) Score() int { return s.score }

// Active reports whether a run is in progress.
func (s *State) Active() bool { return s.active }

// HighScore returns the best score seen by this state.
func (s *State) HighScore() int { return s.highScore }

// SetHighScore seeds the in-memory high score, e.g. from an external store.
func (s *State) SetHighScore(n int) {
	if n >= 0 {
		s.highScore = n
	}
}

package client

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	gamecfg "github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/draw"
	"github.com/tomz197/orbfall/internal/game"
	"github.com/tomz197/orbfall/internal/input"
	"github.com/tomz197/orbfall/internal/loop/config"
	"github.com/tomz197/orbfall/internal/object"
)

// Client runs one player's game session against a terminal: it reads keys,
// ticks the session and renders frames.
type Client struct {
	session      *game.Session
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	view         object.View
	logger       *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Tuning       *gamecfg.Tuning  // nil uses the defaults
	Templates    object.Templates // Droplet outline cache, optional
	Handlers     []game.Handler   // Extra observers, e.g. sound cues
	HighScore    int              // Seed for the in-memory high score
	Seed         int64            // 0 picks a random seed
	Logger       *log.Logger
}

// NewClient creates a client reading keys from r and drawing to w.
func NewClient(r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tuning := gamecfg.DefaultTuning()
	if opts.Tuning != nil {
		tuning = *opts.Tuning
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	sessOpts := []game.SessionOption{game.WithLogger(logger), game.WithSeed(seed)}
	if opts.Templates != nil {
		sessOpts = append(sessOpts, game.WithDropletTemplates(opts.Templates))
	}
	session := game.NewSession(tuning, sessOpts...)
	session.State().SetHighScore(opts.HighScore)

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	c := &Client{
		session:      session,
		state:        NewClientState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		termSizeFunc: termSizeFunc,
		view:         fitView(tuning.Arena),
		logger:       logger,
	}

	session.Register(c)
	for _, h := range opts.Handlers {
		session.Register(h)
	}
	return c
}

// fitView scales the arena so the spawn circle fills the viewport.
func fitView(a gamecfg.ArenaTuning) object.View {
	outer := a.PlatformRadius + a.SpawnOffset
	half := min(float64(config.ViewWidth), float64(config.ViewHeight)) / 2
	return object.View{
		CenterX: config.ViewWidth / 2,
		CenterY: config.ViewHeight / 2,
		Scale:   half * (1 - config.ViewMargin) / outer,
	}
}

// Session returns the gameplay session driven by this client.
func (c *Client) Session() *game.Session {
	return c.session
}

// EventTypes implements game.Handler.
func (c *Client) EventTypes() []game.EventType {
	return []game.EventType{game.EventGameOver, game.EventPickup, game.EventHazardIgnored}
}

// HandleEvent implements game.Handler.
func (c *Client) HandleEvent(ev game.Event) {
	switch ev.Type {
	case game.EventGameOver:
		c.state.NewBest = ev.Score > 0 && ev.Score >= ev.HighScore
		c.state.Paused = false
		c.state.setScreen(ScreenGameOver)
		object.SpawnSplash(ev.Position, config.SplashParticles*2, config.SplashSpeed, config.SplashLifetime*2, c.state)
	case game.EventPickup, game.EventHazardIgnored:
		object.SpawnSplash(ev.Position, config.SplashParticles, config.SplashSpeed, config.SplashLifetime, c.state)
	}
}

// Run starts the frame loop. It blocks until the player quits, the input
// stream closes, or ctx is done.
func (c *Client) Run(ctx context.Context) error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()
	for c.state.Running {
		if ctx.Err() != nil {
			break
		}

		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.updateScreen()
		c.update()

		if err := c.drawFrame(); err != nil {
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			select {
			case <-ctx.Done():
			case <-time.After(config.ClientTargetFrameTime - elapsed):
			}
		}
	}

	if c.session.Snapshot().Active {
		c.session.State().GameOver()
	}
	c.state.clearParticles()
	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads keys and handles quitting and inactivity.
func (c *Client) processInput() {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	pressed := in.Left || in.Right || in.Up || in.Down || in.Jump || in.Enter || in.Pause
	switch {
	case pressed:
		c.lastInput = time.Now()
		c.state.isInactive = false
	case time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser:
		c.logger.Info("disconnecting inactive player")
		c.state.Running = false
	case time.Since(c.lastInput).Seconds() > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if in.Quit || in.Closed {
		c.state.Running = false
	}
}

// updateScreen follows terminal resizes, clamped to the max render size.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
	}
	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize limits the render area and centers it in the terminal.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// update advances the session and the screen state machine by one frame.
func (c *Client) update() {
	dt := min(c.state.delta.Seconds(), config.MaxTickSeconds)
	c.state.ScreenTime += dt
	in := c.state.Input

	switch c.state.Screen {
	case ScreenTitle:
		if in.Enter || in.Jump {
			c.startGame()
		}
	case ScreenPlaying:
		if in.Pause {
			c.state.Paused = !c.state.Paused
			c.session.Pause(c.state.Paused)
		}
	case ScreenGameOver:
		// Short grace period so a held jump key does not restart at once
		if c.state.ScreenTime > 1 && in.Enter {
			c.startGame()
		}
	}

	// Idle sessions still tick so the pool warms up on the title screen
	c.session.Tick(dt, in.Controls())
	if !c.state.Paused {
		c.state.updateParticles(dt)
	}
}

// startGame begins a new run.
func (c *Client) startGame() {
	c.inputStream.Reset()
	c.state.clearParticles()
	c.state.Paused = false
	c.state.NewBest = false
	c.session.Start()
	c.state.setScreen(ScreenPlaying)
	c.logger.Debug("run started from client", "run", c.session.Snapshot().RunID)
}

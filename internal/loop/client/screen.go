package client

import (
	"fmt"
	"time"

	"github.com/tomz197/orbfall/internal/loop/config"
	"github.com/tomz197/orbfall/internal/object"
)

// drawFrame renders the arena and the text overlay for the current screen.
func (c *Client) drawFrame() error {
	// Screen changes clear the terminal so old overlays do not linger
	if c.state.Screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive ||
		c.state.Paused != c.state.prevPaused {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.Screen
		c.state.wasInactive = c.state.isInactive
		c.state.prevPaused = c.state.Paused
	}

	c.canvas.Clear()
	snap := c.session.Snapshot()
	ctx := object.DrawContext{
		Canvas: c.canvas,
		View:   c.view,
		Time:   float64(time.Now().UnixMilli()) / 1000,
	}

	if c.state.Screen != ScreenTitle {
		object.DrawPlatform(ctx, c.session.Tuning().Arena.PlatformRadius)
		for _, d := range c.session.Droplets() {
			if err := d.Draw(ctx); err != nil {
				return err
			}
		}
		if c.state.Screen == ScreenPlaying {
			blink := 0.0
			if snap.Immune {
				blink = snap.ImmuneTimer
			}
			if err := c.session.Orb().Draw(ctx, blink, config.ShieldBlinkFrequency); err != nil {
				return err
			}
		}
		for _, p := range c.state.particles {
			p.Draw(ctx)
		}
	}

	if err := c.canvas.Render(c.chunkWriter); err != nil {
		return err
	}
	c.drawUI()
	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay.
func (c *Client) drawUI() {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.Screen {
	case ScreenTitle:
		c.drawTitleScreen(centerX, centerY)
	case ScreenPlaying:
		c.drawPlayingHUD(termWidth, termHeight)
		if c.state.Paused {
			c.writeCentered(centerX, centerY, "PAUSED - press P to resume", true)
		}
	case ScreenGameOver:
		c.drawGameOverScreen(centerX, centerY)
	}
}

// writeCentered writes text centered on a column and marks the cells dirty
// so the canvas repaints them next frame.
func (c *Client) writeCentered(centerX, row int, text string, bold bool) {
	col := max(centerX-len(text)/2, 1)
	c.chunkWriter.WriteStyledAt(col, row, text, bold)
	c.canvas.MarkTextDirty(col, row, len(text))
}

func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, "INACTIVITY WARNING", true)
	msg := fmt.Sprintf("You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()))
	c.writeCentered(centerX, centerY, msg, false)
	c.writeCentered(centerX, centerY+2, "Press any key to continue", false)
}

func (c *Client) drawTitleScreen(centerX, centerY int) {
	titleArt := []string{
		`  ___  ___ ___ ___ _   _    _    `,
		` / _ \| _ \ _ ) __/_\ | |  | |   `,
		`| (_) |   / _ \ _/ _ \| |__| |__ `,
		` \___/|_|_\___/_/_/ \_\____|____|`,
	}
	cw := c.chunkWriter
	top := centerY - 8
	for i, line := range titleArt {
		cw.WriteAt(max(centerX-len(line)/2, 1), top+i, line)
	}

	c.writeCentered(centerX, top+len(titleArt)+1, "~ dodge the hazards, catch the drops ~", false)

	controls := []string{
		"WASD / arrows . . . Move",
		"SPACE . . . . . . . Jump",
		"P . . . . . . . .  Pause",
		"Q . . . . . . . . . Quit",
	}
	controlsY := top + len(titleArt) + 3
	c.writeCentered(centerX, controlsY, "Controls", true)
	for i, line := range controls {
		c.writeCentered(centerX, controlsY+1+i, line, false)
	}

	legend := []string{
		"outline  hazard, avoid unless shielded",
		"filled   +1 point",
		"diamond  power-up, then a short shield",
	}
	legendY := controlsY + len(controls) + 2
	for i, line := range legend {
		c.writeCentered(centerX, legendY+i, line, false)
	}

	if best := c.session.Snapshot().HighScore; best > 0 {
		c.writeCentered(centerX, legendY+len(legend)+1, fmt.Sprintf("Best: %d", best), false)
	}
	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, legendY+len(legend)+3, ">>  Press ENTER to Start  <<", true)
	}
}

// drawPlayingHUD uses fixed-width fields so shrinking values leave no residue.
func (c *Client) drawPlayingHUD(termWidth, termHeight int) {
	snap := c.session.Snapshot()
	cw := c.chunkWriter

	cw.WriteAt(2, 1, fmt.Sprintf("Score: %-6d", snap.Score))
	best := fmt.Sprintf("Best: %-6d", max(snap.HighScore, snap.Score))
	cw.WriteAt(max(termWidth-len(best)-1, 1), 1, best)

	var status string
	switch {
	case snap.PoweredUp:
		status = fmt.Sprintf("POWER  %4.1fs", snap.PowerUpTimer)
	case snap.Immune:
		status = fmt.Sprintf("SHIELD %4.1fs", snap.ImmuneTimer)
	default:
		status = "             "
	}
	c.writeCentered(termWidth/2, 1, status, true)

	cw.WriteAt(2, termHeight, fmt.Sprintf("Time: %-7.1f", snap.Elapsed))
	flying := fmt.Sprintf("Drops: %-3d", len(c.session.Droplets()))
	cw.WriteAt(max(termWidth-len(flying)-1, 1), termHeight, flying)
}

func (c *Client) drawGameOverScreen(centerX, centerY int) {
	titleArt := []string{
		`  ___   _   __  __ ___    _____   _____ ___ `,
		` / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \`,
		`| (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   /`,
		` \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\`,
	}
	cw := c.chunkWriter
	top := centerY - 6
	for i, line := range titleArt {
		cw.WriteAt(max(centerX-len(line)/2, 1), top+i, line)
	}

	snap := c.session.Snapshot()
	c.writeCentered(centerX, top+len(titleArt)+1, fmt.Sprintf("Score: %d", snap.LastScore), true)
	c.writeCentered(centerX, top+len(titleArt)+2, fmt.Sprintf("Best: %d", snap.HighScore), false)
	if c.state.NewBest {
		c.writeCentered(centerX, top+len(titleArt)+4, "NEW HIGH SCORE!", true)
	}
	if c.state.ScreenTime > 1 && time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, top+len(titleArt)+6, ">>  Press ENTER to Restart  <<", true)
	}
}

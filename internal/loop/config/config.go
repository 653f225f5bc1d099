// Package config holds presentation constants for the terminal client.
// Gameplay thresholds live in the tuning file, see internal/config.
package config

import "time"

// Logical viewport. The canvas scales it to the terminal size.
const (
	ViewWidth  = 120 // Logical width
	ViewHeight = 80  // Logical height in sub-pixels (40 terminal rows)
)

// Largest terminal area the client renders into; bigger terminals get the
// canvas centered.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// ViewMargin is the fraction of the shorter view axis kept free around the
// spawn circle.
const ViewMargin = 0.05

// Player
const (
	ShieldBlinkFrequency = 6.0 // Hz, while immune
)

// Splash effects
const (
	SplashParticles = 10
	SplashSpeed     = 4.0 // World units per second
	SplashLifetime  = 0.5 // Seconds
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client frame pacing. The gameplay step is clamped so a stalled frame
// cannot tunnel droplets through the player.
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTickSeconds        = 0.05
)

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/orbfall/internal/asset"
	"github.com/tomz197/orbfall/internal/audio"
	"github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/game"
	"github.com/tomz197/orbfall/internal/loop/client"
)

const outlineVariants = 16

func main() {
	os.Exit(run())
}

// run plays one local game and returns the process exit code.
func run() int {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return 1
	}
	defer closeLog()

	tuning := config.DefaultTuning()
	if path := config.GetEnv("ORBFALL_TUNING", ""); path != "" {
		t, err := config.LoadTuning(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load tuning: %v\n", err)
			return 1
		}
		tuning = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := asset.NewCache(outlineVariants, time.Now().UnixNano())
	go func() {
		if err := cache.Preload(ctx); err != nil {
			logger.Warn("outline preload failed", "err", err)
		}
	}()

	var handlers []game.Handler
	if config.GetEnvBool("ORBFALL_SOUND", false) {
		player := audio.NewBeepPlayer(0.3)
		if err := player.Init(); err != nil {
			logger.Warn("sound disabled", "err", err)
		} else {
			defer player.Close()
			handlers = append(handlers, audio.NewCues(player))
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		return 1
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	c := client.NewClient(bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Tuning:    &tuning,
		Templates: cache,
		Handlers:  handlers,
		Logger:    logger,
	})
	if err := c.Run(ctx); err != nil {
		_ = term.Restore(fd, oldState)
		logger.Error("game error", "err", err)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		return 1
	}
	logger.Info("bye", "best", c.Session().State().HighScore())
	return 0
}

// newLogger writes to LOG_FILE when set; the terminal belongs to the game.
func newLogger() (*log.Logger, func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if path := config.GetEnv("LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "orbfall",
	})
	if level, err := log.ParseLevel(config.GetEnv("LOG_LEVEL", "info")); err == nil {
		logger.SetLevel(level)
	}
	return logger, closeFn, nil
}

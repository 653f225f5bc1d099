package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	gamecfg "github.com/tomz197/orbfall/internal/config"
	"github.com/tomz197/orbfall/internal/input"
	"github.com/tomz197/orbfall/internal/loop/config"
	"github.com/tomz197/orbfall/internal/physics"
)

// syncBuffer is a bytes.Buffer safe for the client goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

func newTestClient(r io.Reader, w io.Writer) *Client {
	return NewClient(bufio.NewReader(r), w, ClientOptions{
		TermSizeFunc: fixedSize(100, 40),
		Seed:         1,
	})
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		w, h                   int
		rw, rh, offCol, offRow int
	}{
		{80, 24, 80, 24, 0, 0},
		{config.MaxTermWidth + 40, config.MaxTermHeight + 10, config.MaxTermWidth, config.MaxTermHeight, 20, 5},
	}
	for _, tt := range tests {
		rw, rh, oc, or := clampTermSize(tt.w, tt.h)
		if rw != tt.rw || rh != tt.rh || oc != tt.offCol || or != tt.offRow {
			t.Errorf("clampTermSize(%d, %d) = %d %d %d %d", tt.w, tt.h, rw, rh, oc, or)
		}
	}
}

func TestFitViewKeepsSpawnCircleVisible(t *testing.T) {
	arena := gamecfg.DefaultTuning().Arena
	v := fitView(arena)
	outer := arena.PlatformRadius + arena.SpawnOffset
	for _, p := range []struct{ x, z float64 }{{outer, 0}, {-outer, 0}, {0, outer}, {0, -outer}} {
		x, y := v.Project(physics.Vec3{X: p.x, Z: p.z})
		if x < 0 || x > config.ViewWidth || y < 0 || y > config.ViewHeight {
			t.Errorf("spawn circle point (%v, %v) projects off view to (%v, %v)", p.x, p.z, x, y)
		}
	}
}

func TestClientScreensFollowEvents(t *testing.T) {
	pr, _ := io.Pipe()
	c := newTestClient(pr, io.Discard)

	c.state.Input.Enter = true
	c.update()
	if c.state.Screen != ScreenPlaying || !c.session.Snapshot().Active {
		t.Fatal("enter on the title screen should start a run")
	}

	c.session.State().AddScore(1)
	c.session.State().GameOver()
	if c.state.Screen != ScreenGameOver {
		t.Fatal("game over event should switch to the game over screen")
	}
	if !c.state.NewBest {
		t.Error("first scoring run should be a new best")
	}
	if len(c.state.particles) == 0 {
		t.Error("game over should leave a splash")
	}

	// Enter right away is ignored, then accepted after the grace period
	c.update()
	if c.state.Screen != ScreenGameOver {
		t.Error("restart accepted during the grace period")
	}
	c.state.ScreenTime = 2
	c.update()
	if c.state.Screen != ScreenPlaying {
		t.Error("restart not accepted after the grace period")
	}
}

func TestClientPauseToggle(t *testing.T) {
	pr, _ := io.Pipe()
	c := newTestClient(pr, io.Discard)
	c.startGame()

	c.state.Input = input.Input{Pause: true}
	c.update()
	if !c.state.Paused || !c.session.Snapshot().Paused {
		t.Fatal("P should pause the run")
	}
	c.state.Input = input.Input{}
	c.update()
	if !c.session.Snapshot().Paused {
		t.Fatal("pause should stick until P is pressed again")
	}
	c.state.Input = input.Input{Pause: true}
	c.update()
	if c.state.Paused {
		t.Error("second P should resume")
	}
}

func TestClientRunRendersAndQuits(t *testing.T) {
	out := &syncBuffer{}
	c := newTestClient(strings.NewReader("\rq"), out)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("client did not quit on Q")
	}
	if !strings.Contains(out.String(), "\033[?25h") {
		t.Error("cursor not restored on exit")
	}
	if c.session.Snapshot().Active {
		t.Error("run left active after the client quit")
	}
}

func TestClientRunStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	out := &syncBuffer{}
	c := newTestClient(pr, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client ignored cancellation")
	}
	if !strings.Contains(out.String(), "Controls") {
		t.Error("title screen never rendered")
	}
}

package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/orbfall/internal/object"
)

func TestApplyKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Input
	}{
		{"wasd", "wd", Input{Up: true, Right: true}},
		{"arrows", "\x1b[B\x1b[D", Input{Down: true, Left: true}},
		{"jump", " ", Input{Jump: true}},
		{"start", "\r", Input{Enter: true}},
		{"pause", "p", Input{Pause: true}},
		{"quit", "q", Input{Quit: true}},
		{"ctrl-c", "\x03", Input{Quit: true}},
		{"unknown", "zx", Input{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stream{}
			got := s.apply([]byte(tt.in), time.Now())
			if got != tt.want {
				t.Errorf("apply(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHeldKeysExpire(t *testing.T) {
	s := &Stream{}
	now := time.Now()
	s.apply([]byte("a"), now)

	if in := s.apply(nil, now.Add(keyHoldDuration/2)); !in.Left {
		t.Error("key released before the hold duration")
	}
	if in := s.apply(nil, now.Add(keyHoldDuration)); in.Left {
		t.Error("key still held after the hold duration")
	}
}

func TestJumpIsEdgeTriggered(t *testing.T) {
	s := &Stream{}
	now := time.Now()
	if !s.apply([]byte(" "), now).Jump {
		t.Fatal("jump not reported on press")
	}
	if s.apply(nil, now.Add(time.Millisecond)).Jump {
		t.Error("jump reported again without a new press")
	}
}

func TestControls(t *testing.T) {
	tests := []struct {
		in   Input
		want object.Controls
	}{
		{Input{}, object.Controls{}},
		{Input{Left: true}, object.Controls{MoveX: -1}},
		{Input{Right: true, Down: true}, object.Controls{MoveX: 1, MoveZ: 1}},
		{Input{Left: true, Right: true, Up: true}, object.Controls{MoveZ: -1}},
		{Input{Jump: true}, object.Controls{Jump: true}},
	}
	for _, tt := range tests {
		if got := tt.in.Controls(); got != tt.want {
			t.Errorf("%+v.Controls() = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestReadInputReportsClosedStream(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("w")))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ReadInput(s).Closed {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("closed stream never reported")
}

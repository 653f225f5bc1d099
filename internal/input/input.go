// Package input turns a raw terminal byte stream into per-tick key state.
package input

import (
	"bufio"
	"time"

	"github.com/tomz197/orbfall/internal/object"
)

// keyHoldDuration is how long a key counts as held after its last byte.
// Terminals report no key releases, only repeats, so holds are inferred.
const keyHoldDuration = 80 * time.Millisecond

// Input is the key state for one frame.
type Input struct {
	Quit   bool
	Left   bool
	Right  bool
	Up     bool
	Down   bool
	Jump   bool // Space arrived this frame
	Enter  bool // Enter arrived this frame
	Pause  bool // P arrived this frame
	Closed bool // The byte stream ended (client gone)
}

// Controls maps movement keys onto the two movement axes.
func (in Input) Controls() object.Controls {
	var c object.Controls
	if in.Left {
		c.MoveX--
	}
	if in.Right {
		c.MoveX++
	}
	if in.Up {
		c.MoveZ--
	}
	if in.Down {
		c.MoveZ++
	}
	c.Jump = in.Jump
	return c
}

// keyState tracks the last time each held key was seen.
type keyState struct {
	quit  time.Time
	left  time.Time
	right time.Time
	up    time.Time
	down  time.Time
}

// Stream delivers input bytes via a channel and tracks held keys.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream without blocking.
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	in := s.apply(buf, time.Now())
	in.Closed = s.closed
	return in
}

// apply parses bytes received at now and returns the resulting frame input.
func (s *Stream) apply(buf []byte, now time.Time) Input {
	var in Input
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI arrow keys: ESC [ A..D
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.up = now
			case 'B':
				s.state.down = now
			case 'C':
				s.state.right = now
			case 'D':
				s.state.left = now
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', 0x03: // Ctrl+C
			s.state.quit = now
		case 'a', 'A', 'h', 'H':
			s.state.left = now
		case 'd', 'D', 'l', 'L':
			s.state.right = now
		case 'w', 'W', 'k', 'K':
			s.state.up = now
		case 's', 'S', 'j', 'J':
			s.state.down = now
		case ' ':
			in.Jump = true
		case '\n', '\r':
			in.Enter = true
		case 'p', 'P':
			in.Pause = true
		}
	}

	held := func(t time.Time) bool { return now.Sub(t) < keyHoldDuration }
	in.Quit = held(s.state.quit)
	in.Left = held(s.state.left)
	in.Right = held(s.state.right)
	in.Up = held(s.state.up)
	in.Down = held(s.state.down)
	return in
}

// Reset forgets every held key, e.g. when switching screens.
func (s *Stream) Reset() {
	s.state = keyState{}
}

package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera after its last frame.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back pre-recorded frames for testing.
type MockCamera struct {
	frames   []*gocv.Mat
	loop     bool
	index    int
	reads    int
	failures map[int]bool
	open     bool
	mu       sync.Mutex
}

// NewMockCamera plays frames in order, starting over when loop is set.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames:   frames,
		loop:     loop,
		failures: map[int]bool{},
	}
}

// FailReads makes the given read attempts (0-based) return ErrFrameRead
// without consuming a frame.
func (c *MockCamera) FailReads(attempts ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range attempts {
		c.failures[a] = true
	}
}

// Reads reports how many times ReadFrame has been called.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	attempt := c.reads
	c.reads++

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.failures[attempt] {
		return nil, ErrFrameRead
	}
	if c.index >= len(c.frames) {
		if !c.loop || len(c.frames) == 0 {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	// Clone so callers may draw on and close the frame.
	frame := c.frames[c.index].Clone()
	c.index++
	return &frame, nil
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

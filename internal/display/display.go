// Package display shows frames in a desktop window and reads key presses.
package display

import (
	"sync"

	"gocv.io/x/gocv"
)

// Key codes returned by WaitKey.
const (
	NoKey  = -1
	KeyEsc = 27
	KeyQ   = 'q'
)

// Display shows frames and polls the keyboard.
type Display interface {
	Show(frame *gocv.Mat)

	// WaitKey waits up to delay milliseconds and returns the pressed key or NoKey.
	WaitKey(delay int) int

	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window. It must be used
// from the main goroutine.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

func (w *Window) Show(frame *gocv.Mat) {
	w.win.IMShow(*frame)
}

func (w *Window) WaitKey(delay int) int {
	k := w.win.WaitKey(delay)
	if k < 0 {
		return NoKey
	}
	return k & 0xFF
}

func (w *Window) Close() error {
	return w.win.Close()
}

// Scripted is a headless Display for tests. Each WaitKey call returns the
// next scripted key, then Default once the script runs out.
type Scripted struct {
	Default int

	mu    sync.Mutex
	keys  []int
	shown int
	last  gocv.Mat
}

// NewScripted returns a Scripted display that plays keys in order.
func NewScripted(keys ...int) *Scripted {
	return &Scripted{Default: NoKey, keys: keys, last: gocv.NewMat()}
}

func (s *Scripted) Show(frame *gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown++
	frame.CopyTo(&s.last)
}

func (s *Scripted) WaitKey(int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.keys) == 0 {
		return s.Default
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k
}

func (s *Scripted) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Close()
}

// Shown reports how many frames were shown.
func (s *Scripted) Shown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Last returns a copy of the most recently shown frame. The caller must Close it.
func (s *Scripted) Last() gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone()
}

// Package capture reads BGR frames from a webcam.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default webcam settings.
const (
	DefaultDevice = 0
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrFrameRead is returned when the device delivers no usable frame.
	ErrFrameRead = errors.New("failed to read frame")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error

	// ReadFrame returns the next frame. The caller must Close it.
	ReadFrame() (*gocv.Mat, error)

	IsOpen() bool
}

// Options configure a webcam.
type Options struct {
	Device int
	Width  int
	Height int
}

// DefaultOptions returns device 0 at 640x480.
func DefaultOptions() Options {
	return Options{Device: DefaultDevice, Width: DefaultWidth, Height: DefaultHeight}
}

type webcam struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
}

// NewWebcam returns a Camera backed by an OpenCV video device. It is not
// opened until Open is called.
func NewWebcam(opts Options) Camera {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultWidth, DefaultHeight
	}
	return &webcam{opts: opts}
}

func (c *webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.opts.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: device unavailable", c.opts.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))

	c.capture = vc
	return nil
}

func (c *webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrFrameRead
	}
	return &mat, nil
}

func (c *webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

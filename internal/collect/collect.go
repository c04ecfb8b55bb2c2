// Package collect records labelled webcam frames into per-class folders.
package collect

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/display"
)

// DefaultPerClass is the number of images recorded for each label.
const DefaultPerClass = 100

// DefaultMaxReadFailures bounds consecutive failed camera reads before giving up.
const DefaultMaxReadFailures = 50

// ErrCameraFailed is returned after too many consecutive failed reads.
var ErrCameraFailed = errors.New("camera stopped delivering frames")

var (
	promptColor = color.RGBA{G: 255, A: 255}
	countColor  = color.RGBA{R: 0, G: 100, B: 255, A: 255}
)

// Collector drives a camera and a window to record PerClass images for each label.
type Collector struct {
	Camera   capture.Camera
	Display  display.Display
	Root     string
	PerClass int
	Log      logrus.FieldLogger

	MaxReadFailures int

	// WriteImage saves a frame. Defaults to gocv.IMWrite.
	WriteImage func(path string, frame gocv.Mat) bool
}

// NewCollector creates a Collector writing under root.
func NewCollector(cam capture.Camera, disp display.Display, root string) *Collector {
	return &Collector{
		Camera:          cam,
		Display:         disp,
		Root:            root,
		PerClass:        DefaultPerClass,
		Log:             logrus.StandardLogger(),
		MaxReadFailures: DefaultMaxReadFailures,
		WriteImage:      gocv.IMWrite,
	}
}

// ParseLabels splits a comma separated label list, trimming blanks and
// dropping empty entries.
func ParseLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Run records every label in turn and returns how many images were saved per label.
func (c *Collector) Run(ctx context.Context, labels []string) (map[string]int, error) {
	if err := os.MkdirAll(c.Root, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	session := uuid.NewString()
	log := c.Log.WithField("session", session)

	saved := map[string]int{}
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		n, err := c.collectLabel(ctx, log.WithField("label", label), label)
		saved[label] = n
		if err != nil {
			return saved, err
		}
	}

	log.Info("Dataset collection complete")
	return saved, nil
}

func (c *Collector) collectLabel(ctx context.Context, log logrus.FieldLogger, label string) (int, error) {
	dir := filepath.Join(c.Root, label)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create label dir: %w", err)
	}

	log.Infof("Ready to collect data for label '%s'. Press 'Q' to start recording", strings.ToUpper(label))
	if err := c.waitForStart(ctx, label); err != nil {
		return 0, err
	}

	log.Infof("Collecting %d images for label '%s'", c.PerClass, label)
	counter, failures := 0, 0
	for counter < c.PerClass {
		if err := ctx.Err(); err != nil {
			return counter, err
		}

		frame, err := c.Camera.ReadFrame()
		if err != nil {
			log.Warnf("Failed to grab frame: %v", err)
			if failures++; failures >= c.MaxReadFailures {
				return counter, ErrCameraFailed
			}
			continue
		}
		failures = 0

		path := filepath.Join(dir, strconv.Itoa(counter)+".jpg")
		if !c.WriteImage(path, *frame) {
			log.Errorf("Failed to write %s", path)
		}

		text := fmt.Sprintf("Collecting %s - Image %d/%d", strings.ToUpper(label), counter+1, c.PerClass)
		gocv.PutText(frame, text, image.Pt(10, 30), gocv.FontHersheySimplex, 0.8, countColor, 2)
		c.Display.Show(frame)
		frame.Close()
		counter++

		if c.Display.WaitKey(1) == display.KeyEsc {
			log.Warn("Exiting early")
			break
		}
	}

	log.Infof("Finished collecting %d images for '%s'", counter, label)
	return counter, nil
}

// waitForStart shows the live feed until 'q' is pressed.
func (c *Collector) waitForStart(ctx context.Context, label string) error {
	prompt := fmt.Sprintf("Label: %s - Press \"Q\" to start", strings.ToUpper(label))
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := c.Camera.ReadFrame()
		if err != nil {
			c.Log.Warnf("Failed to grab frame: %v", err)
			if failures++; failures >= c.MaxReadFailures {
				return ErrCameraFailed
			}
			continue
		}
		failures = 0

		gocv.PutText(frame, prompt, image.Pt(50, 50), gocv.FontHersheySimplex, 1, promptColor, 2)
		c.Display.Show(frame)
		frame.Close()

		if c.Display.WaitKey(1) == display.KeyQ {
			return nil
		}
	}
}

// Package live runs the webcam recognition demo: every frame is mirrored,
// searched for a hand and annotated with the predicted sign.
package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/features"
)

// DefaultMaxReadFailures bounds consecutive failed camera reads before giving up.
const DefaultMaxReadFailures = 50

// ErrCameraFailed is returned after too many consecutive failed reads.
var ErrCameraFailed = errors.New("camera stopped delivering frames")

// Overlay is what gets drawn on a frame: the first detected hand, if any, and its label.
type Overlay struct {
	Hand  *detector.HandLandmarks
	Label string
}

// Runner owns the demo loop.
type Runner struct {
	Camera     capture.Camera
	Display    display.Display
	Detector   detector.Detector
	Classifier *classifier.Classifier
	Log        logrus.FieldLogger

	// MotionThreshold enables the motion gate when > 0: frames that change
	// less than this percentage of pixels reuse the previous overlay.
	MotionThreshold float64

	MaxReadFailures int

	last   Overlay
	frames int
}

// NewRunner creates a Runner with the motion gate disabled.
func NewRunner(cam capture.Camera, disp display.Display, d detector.Detector, c *classifier.Classifier) *Runner {
	return &Runner{
		Camera:          cam,
		Display:         disp,
		Detector:        d,
		Classifier:      c,
		Log:             logrus.StandardLogger(),
		MaxReadFailures: DefaultMaxReadFailures,
	}
}

// Run processes frames until ESC is pressed or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	var motion *capture.MotionDetector
	if r.MotionThreshold > 0 {
		motion = capture.NewMotionDetector(r.MotionThreshold)
		defer motion.Close()
	}

	var prev time.Time
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := r.Camera.ReadFrame()
		if err != nil {
			r.Log.Warnf("Failed to grab frame: %v", err)
			if failures++; failures >= r.MaxReadFailures {
				return ErrCameraFailed
			}
			continue
		}
		failures = 0

		gocv.Flip(*frame, frame, 1)

		analyze := true
		if motion != nil {
			analyze, _ = motion.Changed(frame)
		}
		if analyze {
			r.last = r.analyze(frame)
		}
		r.frames++

		Draw(frame, r.last)

		now := time.Now()
		fps := 0.0
		if !prev.IsZero() {
			fps = 1 / now.Sub(prev).Seconds()
		}
		prev = now
		DrawFPS(frame, fps)

		r.Display.Show(frame)
		frame.Close()

		if r.Display.WaitKey(1) == display.KeyEsc {
			return nil
		}
	}
}

// Last returns the overlay drawn on the most recent frame.
func (r *Runner) Last() Overlay {
	return r.last
}

// Frames returns how many frames have been shown.
func (r *Runner) Frames() int {
	return r.frames
}

func (r *Runner) analyze(frame *gocv.Mat) Overlay {
	hands, err := r.Detector.Detect(frame)
	if err != nil {
		r.Log.Errorf("Hand detection failed: %v", err)
		return Overlay{}
	}
	if len(hands) == 0 {
		return Overlay{}
	}

	hand := hands[0]
	label := r.Classifier.PredictFeatures(features.FromLandmarks(hand))
	return Overlay{Hand: &hand, Label: label}
}

// String formats an overlay for logs.
func (o Overlay) String() string {
	if o.Hand == nil {
		return classifier.NoHand
	}
	return fmt.Sprintf("%s (%s hand)", o.Label, o.Hand.Handedness)
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/live"
	"github.com/ayusman/mudra/internal/model"
)

// HighGUI windows must live on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	defaults := config.Default()
	modelPath := flag.String("model", defaults.ModelPath, "trained model bundle")
	labelMapPath := flag.String("labels", defaults.LabelMapPath, "label map used when the model has none embedded")
	device := flag.Int("device", capture.DefaultDevice, "camera device index")
	motion := flag.Float64("motion", 0, "skip detection unless this percentage of pixels changed (0 disables)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.SetupLogging()

	bundle, err := model.LoadWithLabels(*modelPath, *labelMapPath)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create hand detector: %v", err)
	}
	defer det.Close()

	cam := capture.NewWebcam(capture.Options{Device: *device, Width: capture.DefaultWidth, Height: capture.DefaultHeight})
	if err := cam.Open(); err != nil {
		log.Fatalf("Cannot open webcam: %v", err)
	}
	defer cam.Close()

	win := display.NewWindow("ASL Recognition")
	defer win.Close()

	r := live.NewRunner(cam, win, det, classifier.New(bundle, bundle.Labels, nil))
	r.MotionThreshold = *motion

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Press ESC to quit")
	if err := r.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Live demo failed: %v", err)
	}
}

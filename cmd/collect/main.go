package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/collect"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/display"
)

// HighGUI windows must live on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	defaults := config.Default()
	dataDir := flag.String("data", defaults.DataDir, "directory that receives one folder per label")
	perClass := flag.Int("n", collect.DefaultPerClass, "images to record per label")
	labelList := flag.String("labels", "", "comma separated labels (prompted for when empty)")
	device := flag.Int("device", capture.DefaultDevice, "camera device index")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.SetupLogging()

	if *labelList == "" {
		fmt.Print("Enter label(s) to collect (comma-separated, e.g., A,B,C,space,del): ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("Failed to read labels: %v", err)
		}
		*labelList = line
	}
	labels := collect.ParseLabels(*labelList)
	if len(labels) == 0 {
		log.Fatal("No labels given")
	}

	cam := capture.NewWebcam(capture.Options{Device: *device, Width: capture.DefaultWidth, Height: capture.DefaultHeight})
	if err := cam.Open(); err != nil {
		log.Fatalf("Cannot open webcam: %v", err)
	}
	defer cam.Close()

	win := display.NewWindow("Frame")
	defer win.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := collect.NewCollector(cam, win, *dataDir)
	c.PerClass = *perClass

	saved, err := c.Run(ctx, labels)
	names := make([]string, 0, len(saved))
	for name := range saved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Infof("%s: %d images", name, saved[name])
	}
	if err != nil {
		log.Fatalf("Collection failed: %v", err)
	}
}

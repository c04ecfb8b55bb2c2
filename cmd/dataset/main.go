package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/labels"
)

func main() {
	defaults := config.Default()
	dataDir := flag.String("data", defaults.DataDir, "directory with one folder of images per class")
	out := flag.String("out", defaults.DataPath, "dataset output file")
	labelMapPath := flag.String("labels", defaults.LabelMapPath, "label map output file")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.SetupLogging()

	det, err := detector.NewMediaPipeDetector(detector.StaticConfig())
	if err != nil {
		log.Fatalf("Failed to create hand detector: %v", err)
	}
	defer det.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Starting image processing")
	ds, labelMap, stats, err := dataset.NewBuilder(features.NewExtractor(det)).Build(ctx, *dataDir)
	if err != nil {
		log.Fatalf("Failed to build dataset: %v", err)
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := stats[name]
		log.WithFields(log.Fields{
			"index":      st.Index,
			"kept":       st.Kept,
			"no_hand":    st.NoHand,
			"unreadable": st.Unreadable,
			"failed":     st.Failed,
		}).Infof("Class %s", name)
	}

	if err := dataset.Save(*out, ds); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}
	log.Infof("Wrote dataset to %s", *out)

	if err := labels.Save(*labelMapPath, labelMap); err != nil {
		log.Fatalf("Failed to write label map: %v", err)
	}
	log.Infof("Wrote label map to %s", *labelMapPath)
}

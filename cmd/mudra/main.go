package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/model"
	"github.com/ayusman/mudra/internal/report"
	"github.com/ayusman/mudra/internal/server"
)

func main() {
	defaults := config.Default()
	modelPath := flag.String("model", defaults.ModelPath, "trained model bundle")
	labelMapPath := flag.String("labels", defaults.LabelMapPath, "label map used when the model has none embedded")
	webDir := flag.String("web", "", "static files directory (searched for when empty)")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.SetupLogging()

	log.Info("Mudra - ASL sign recognition")

	bundle, err := model.LoadWithLabels(*modelPath, *labelMapPath)
	if err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	log.Infof("Loaded model with %d trees and %d classes", len(bundle.Forest.Trees), len(bundle.Labels))

	det, err := detector.NewMediaPipeDetector(detector.StaticConfig())
	if err != nil {
		log.Fatalf("Failed to create hand detector: %v", err)
	}
	defer det.Close()

	reporter, err := report.New(cfg.SentryDSN)
	if err != nil {
		log.Fatalf("Failed to set up error reporting: %v", err)
	}
	defer reporter.Close()

	static := *webDir
	if static == "" {
		static = config.FindWebDir()
	}
	if static != "" {
		log.Infof("Serving static files from: %s", static)
	}

	srv := server.New(server.Config{
		StaticDir:  static,
		Classifier: classifier.New(bundle, bundle.Labels, features.NewExtractor(det)),
		Reporter:   reporter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting server on %s", cfg.Addr())
	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Info("Server stopped")
}

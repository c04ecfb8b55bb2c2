package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/evaluate"
	"github.com/ayusman/mudra/internal/forest"
	"github.com/ayusman/mudra/internal/labels"
	"github.com/ayusman/mudra/internal/model"
)

func main() {
	defaults := config.Default()
	fc := forest.DefaultConfig()

	dataPath := flag.String("data", defaults.DataPath, "dataset produced by the dataset command")
	labelMapPath := flag.String("labels", defaults.LabelMapPath, "label map produced by the dataset command")
	modelPath := flag.String("model", defaults.ModelPath, "model bundle output file")
	testSize := flag.Float64("test-size", 0.2, "fraction of each class held out for evaluation")
	flag.IntVar(&fc.Trees, "trees", fc.Trees, "number of trees")
	flag.IntVar(&fc.MaxDepth, "max-depth", fc.MaxDepth, "maximum tree depth, 0 for unlimited")
	flag.IntVar(&fc.MaxFeatures, "max-features", fc.MaxFeatures, "features tried per split, 0 for sqrt")
	flag.Int64Var(&fc.Seed, "seed", fc.Seed, "random seed for splitting and training")
	flag.IntVar(&fc.Workers, "workers", 0, "trees trained in parallel, 0 for all CPUs")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.SetupLogging()

	log.Info("Loading dataset")
	ds, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	log.Info("Loading label map")
	labelMap, err := labels.Load(*labelMapPath)
	if err != nil {
		log.Fatalf("Failed to load label map: %v", err)
	}
	names := labelMap.Invert()
	log.Infof("Loaded %d samples and %d class labels", ds.Len(), len(names))

	split, err := evaluate.StratifiedSplit(ds.Data, ds.Labels, *testSize, fc.Seed)
	if err != nil {
		log.Fatalf("Failed to split dataset: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Infof("Training random forest with %d trees on %d samples", fc.Trees, len(split.TrainY))
	start := time.Now()
	f, err := forest.Train(ctx, split.TrainX, split.TrainY, fc)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	log.Infof("Trained in %s (deepest tree: %d levels)", time.Since(start).Round(time.Millisecond), f.MaxDepth())

	if len(split.TestY) > 0 {
		log.Info("Evaluating model")
		pred, err := f.Predict(split.TestX)
		if err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
		rep, err := evaluate.Evaluate(split.TestY, pred, names)
		if err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}
		log.Infof("Accuracy: %.2f", rep.Accuracy)
		fmt.Println(rep)
	} else {
		log.Warn("No samples held out; skipping evaluation")
	}

	if err := model.Save(*modelPath, model.New(f, names)); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}
	log.Infof("Saved model and label map into %s", *modelPath)
}

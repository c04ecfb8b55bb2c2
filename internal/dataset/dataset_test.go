package dataset

import (
	"context"
	"errors"
	"image/color"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/labels"
)

// widthDetector finds the letter A hand only in frames of the given width.
type widthDetector struct {
	width int
}

func (d widthDetector) Detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	if frame.Cols() != d.width {
		return nil, nil
	}
	return []detector.HandLandmarks{detector.LetterALandmarks()}, nil
}

func (d widthDetector) Close() error { return nil }

func writeImage(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	img := imaging.New(size, size, color.NRGBA{R: 200, G: 150, B: 120, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestBuilder(d detector.Detector) (*Builder, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	b := NewBuilder(features.NewExtractor(d))
	b.Log = logger
	return b, hook
}

func TestBuilder_SkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "0.jpg"), "definitely not a jpeg")
	writeImage(t, filepath.Join(root, "A", "1.jpg"), 64)

	b, hook := newTestBuilder(widthDetector{width: 64})

	ds, labelMap, stats, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ds.Len() != 1 || len(ds.Data) != 1 {
		t.Fatalf("got %d samples, want 1", ds.Len())
	}
	if ds.Labels[0] != 0 {
		t.Errorf("label = %d, want 0", ds.Labels[0])
	}
	if !maps.Equal(labelMap, labels.Map{"A": 0}) {
		t.Errorf("label map = %v", labelMap)
	}
	if stats["A"].Unreadable != 1 || stats["A"].Kept != 1 {
		t.Errorf("stats = %+v", *stats["A"])
	}

	var skipped bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "0.jpg") {
			skipped = true
		}
	}
	if !skipped {
		t.Error("expected a warning for the unreadable file")
	}
}

func TestBuilder_ExcludesNoHand(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "B", "hand.jpg"), 64)
	writeImage(t, filepath.Join(root, "B", "empty.jpg"), 32)

	b, _ := newTestBuilder(widthDetector{width: 64})

	ds, _, stats, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ds.Len() != 1 {
		t.Fatalf("got %d samples, want 1", ds.Len())
	}
	for _, x := range ds.Data[0] {
		if x != 0 {
			return
		}
	}
	t.Errorf("kept row is the zero sentinel; stats = %+v", *stats["B"])
}

func TestBuilder_SortedClassesAndFiles(t *testing.T) {
	root := t.TempDir()
	for _, class := range []string{"space", "B", "A"} {
		writeImage(t, filepath.Join(root, class, "1.jpg"), 64)
		writeImage(t, filepath.Join(root, class, "0.jpg"), 64)
	}
	writeFile(t, filepath.Join(root, "README.txt"), "not a class")

	b, _ := newTestBuilder(widthDetector{width: 64})

	ds, labelMap, _, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := labels.Map{"A": 0, "B": 1, "space": 2}
	if !maps.Equal(labelMap, want) {
		t.Errorf("label map = %v, want %v", labelMap, want)
	}
	wantLabels := []int{0, 0, 1, 1, 2, 2}
	for i, l := range ds.Labels {
		if l != wantLabels[i] {
			t.Fatalf("labels = %v, want %v", ds.Labels, wantLabels)
		}
	}
}

func TestBuilder_DetectorFailureIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "A", "0.jpg"), 64)

	mock := detector.NewMockDetector()
	mock.SetError(errors.New("sidecar crashed"))
	b, hook := newTestBuilder(mock)

	ds, _, stats, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ds.Len() != 0 || stats["A"].Failed != 1 {
		t.Errorf("len = %d, stats = %+v", ds.Len(), *stats["A"])
	}
	if hook.LastEntry() == nil {
		t.Error("expected the failure to be logged")
	}
}

func TestBuilder_MissingRoot(t *testing.T) {
	b, _ := newTestBuilder(detector.NewMockDetector())

	_, _, _, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Build() error = %v, want fs.ErrNotExist", err)
	}
}

func TestBuilder_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "A", "0.jpg"), 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _ := newTestBuilder(widthDetector{width: 64})
	if _, _, _, err := b.Build(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, want context.Canceled", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	row := features.FromLandmarks(detector.LetterALandmarks()).Slice()
	ds := &Dataset{Data: [][]float64{row}, Labels: []int{3}}
	if err := Save(path, ds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 1 || got.Labels[0] != 3 || got.Data[0][5] != row[5] {
		t.Errorf("Load() = %+v", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "data.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: error = %v", err)
	}

	short := filepath.Join(dir, "short.json")
	writeFile(t, short, `{"data": [[1, 2]], "labels": [0]}`)
	if _, err := Load(short); err == nil {
		t.Error("expected error for short rows")
	}

	mismatched := filepath.Join(dir, "mismatched.json")
	writeFile(t, mismatched, `{"data": [], "labels": [0]}`)
	if _, err := Load(mismatched); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

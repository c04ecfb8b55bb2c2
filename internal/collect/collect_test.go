package collect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/display"
)

func newCamera(t *testing.T) *capture.MockCamera {
	t.Helper()
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	return cam
}

func newCollector(t *testing.T, cam capture.Camera, disp display.Display) (*Collector, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	c := NewCollector(cam, disp, t.TempDir())
	c.Log = logger
	c.PerClass = 3
	return c, hook
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func TestCollector_Run(t *testing.T) {
	disp := display.NewScripted(
		display.NoKey, display.KeyQ, // prompt for A
		display.NoKey, display.NoKey, display.NoKey, // record A
		display.NoKey, display.KeyQ, // prompt for space
	)
	defer disp.Close()
	c, _ := newCollector(t, newCamera(t), disp)

	saved, err := c.Run(context.Background(), []string{"A", "space"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if saved["A"] != 3 || saved["space"] != 3 {
		t.Errorf("saved = %v", saved)
	}
	want := []string{"0.jpg", "1.jpg", "2.jpg"}
	for _, label := range []string{"A", "space"} {
		if got := listFiles(t, filepath.Join(c.Root, label)); !slices.Equal(got, want) {
			t.Errorf("%s files = %v, want %v", label, got, want)
		}
	}

	// 2 prompt frames + 3 recorded frames per label
	if disp.Shown() != 10 {
		t.Errorf("Shown() = %d, want 10", disp.Shown())
	}
}

func TestCollector_SkipsFailedReads(t *testing.T) {
	cam := newCamera(t)
	cam.FailReads(2)
	disp := display.NewScripted(display.KeyQ)
	defer disp.Close()
	c, hook := newCollector(t, cam, disp)

	saved, err := c.Run(context.Background(), []string{"B"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if saved["B"] != 3 {
		t.Errorf("saved = %d, want 3", saved["B"])
	}
	if cam.Reads() != 5 {
		t.Errorf("Reads() = %d, want 5", cam.Reads())
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "Failed to grab frame") {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the failed read")
	}
}

func TestCollector_EscStopsLabel(t *testing.T) {
	disp := display.NewScripted(display.KeyQ, display.NoKey, display.KeyEsc, display.KeyQ)
	defer disp.Close()
	c, _ := newCollector(t, newCamera(t), disp)

	saved, err := c.Run(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if saved["A"] != 2 {
		t.Errorf("A saved = %d, want 2 after ESC", saved["A"])
	}
	if saved["B"] != 3 {
		t.Errorf("B saved = %d, want 3", saved["B"])
	}
}

func TestCollector_TrimsLabels(t *testing.T) {
	disp := display.NewScripted(display.KeyQ)
	defer disp.Close()
	c, _ := newCollector(t, newCamera(t), disp)

	saved, err := c.Run(context.Background(), []string{"  del ", "", "   "})
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved["del"] != 3 {
		t.Errorf("saved = %v", saved)
	}
	if _, err := os.Stat(filepath.Join(c.Root, "del")); err != nil {
		t.Errorf("label dir missing: %v", err)
	}
}

func TestCollector_CameraFailure(t *testing.T) {
	cam := capture.NewMockCamera(nil, false)
	cam.Open()
	disp := display.NewScripted()
	defer disp.Close()
	c, _ := newCollector(t, cam, disp)
	c.MaxReadFailures = 3

	if _, err := c.Run(context.Background(), []string{"A"}); !errors.Is(err, ErrCameraFailed) {
		t.Errorf("Run() error = %v, want ErrCameraFailed", err)
	}
}

func TestCollector_Cancelled(t *testing.T) {
	disp := display.NewScripted()
	defer disp.Close()
	c, _ := newCollector(t, newCamera(t), disp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Run(ctx, []string{"A"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A,B,C", []string{"A", "B", "C"}},
		{" A , space ,del", []string{"A", "space", "del"}},
		{"A,,B,", []string{"A", "B"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseLabels(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseLabels(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

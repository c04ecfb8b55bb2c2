package capture

import (
	"errors"
	"testing"
)

func TestNewWebcam(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantWidth  int
		wantHeight int
	}{
		{name: "defaults", opts: DefaultOptions(), wantWidth: 640, wantHeight: 480},
		{name: "custom size", opts: Options{Device: 1, Width: 1280, Height: 720}, wantWidth: 1280, wantHeight: 720},
		{name: "zero size falls back", opts: Options{Device: 2}, wantWidth: 640, wantHeight: 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewWebcam(tt.opts).(*webcam)

			if cam.opts.Width != tt.wantWidth || cam.opts.Height != tt.wantHeight {
				t.Errorf("size = %dx%d, want %dx%d", cam.opts.Width, cam.opts.Height, tt.wantWidth, tt.wantHeight)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}
		})
	}
}

func TestWebcam_ReadFrame_NotOpened(t *testing.T) {
	cam := NewWebcam(DefaultOptions())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestWebcam_Close_NotOpened(t *testing.T) {
	cam := NewWebcam(DefaultOptions())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestWebcam_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewWebcam(DefaultOptions())
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Cols() != 640 || mat.Rows() != 480 {
			t.Logf("Frame dimensions: %dx%d (camera may not support 640x480)", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

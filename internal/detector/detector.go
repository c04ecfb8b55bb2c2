package detector

import "gocv.io/x/gocv"

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a BGR frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	// Ignored in static image mode.
	MinTrackingConf float64

	// StaticImageMode treats every frame as an unrelated photo instead of a video stream.
	StaticImageMode bool
}

// DefaultConfig returns the Config used for live video: one hand, tracking enabled.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// StaticConfig returns the Config used when extracting features from still images.
func StaticConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.3,
		StaticImageMode: true,
	}
}

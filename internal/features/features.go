// Package features turns a frame into the fixed-size landmark vector the classifier consumes.
package features

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Dim is the length of a feature vector: an (x, y) pair per landmark.
const Dim = detector.NumLandmarks * 2

// Vector holds the translated (x, y) landmark coordinates, x before y per landmark.
// The all-zero Vector is the "no hand detected" sentinel.
type Vector [Dim]float64

// IsZero reports whether v is the no-hand sentinel.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Slice returns a copy of v as a slice, the row shape models expect.
func (v Vector) Slice() []float64 {
	s := make([]float64, Dim)
	copy(s, v[:])
	return s
}

// FromSlice converts a 42-element slice back into a Vector.
func FromSlice(s []float64) (Vector, error) {
	var v Vector
	if len(s) != Dim {
		return v, fmt.Errorf("feature vector has %d values, want %d", len(s), Dim)
	}
	copy(v[:], s)
	return v, nil
}

// FromLandmarks shifts each axis so its minimum over the 21 points is zero and
// flattens the result. Scale is left untouched.
func FromLandmarks(h detector.HandLandmarks) Vector {
	minX, minY, _, _ := h.Bounds()

	var v Vector
	for i, p := range h.Points {
		v[2*i] = p.X - minX
		v[2*i+1] = p.Y - minY
	}
	return v
}

// Extractor runs a hand detector and reduces its first hand to a Vector.
type Extractor struct {
	detector detector.Detector
}

// NewExtractor creates an Extractor backed by d.
func NewExtractor(d detector.Detector) *Extractor {
	return &Extractor{detector: d}
}

// Extract returns the feature vector for the first detected hand, or the zero
// sentinel when no hand is found. Detector failures are returned as errors.
func (e *Extractor) Extract(frame *gocv.Mat) (Vector, error) {
	hands, err := e.detector.Detect(frame)
	if err != nil {
		return Vector{}, fmt.Errorf("detect hands: %w", err)
	}
	if len(hands) == 0 {
		return Vector{}, nil
	}
	return FromLandmarks(hands[0]), nil
}

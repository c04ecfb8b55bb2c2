package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	blurSize      = 21
	diffThreshold = 25
)

// MotionDetector compares consecutive frames and reports whether enough of
// the picture changed. Frames are reduced to blurred grayscale before the
// absolute difference is thresholded.
type MotionDetector struct {
	threshold float64
	prev      gocv.Mat
	mu        sync.Mutex
}

// NewMotionDetector returns a detector that fires when more than threshold
// percent of the pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Changed reports whether frame differs from the previous one and by what
// percentage of pixels. The first frame after creation or Reset always counts
// as changed so callers compute an initial result.
func (m *MotionDetector) Changed(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	gocv.GaussianBlur(gray, &gray, image.Pt(blurSize, blurSize), 0, 0, gocv.BorderDefault)

	if m.prev.Empty() || m.prev.Rows() != gray.Rows() || m.prev.Cols() != gray.Cols() {
		gray.CopyTo(&m.prev)
		return true, 100
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(gray, m.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	gray.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset forgets the previous frame.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prev.Close()
	m.prev = gocv.NewMat()
}

// Close releases the stored frame.
func (m *MotionDetector) Close() {
	m.Reset()
}

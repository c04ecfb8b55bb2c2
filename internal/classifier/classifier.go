// Package classifier pairs a trained model with its label map and turns frames
// or feature vectors into sign names.
package classifier

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/labels"
)

// Outcomes returned instead of a class name.
const (
	NoHand  = "No hand detected"
	Unknown = "Unknown"
	Error   = "Error"
)

// ErrNoModel is returned when a Classifier is used without a model.
var ErrNoModel = errors.New("no model loaded")

// Model is a trained classifier over the feature space.
// Predict returns one class index per input row.
type Model interface {
	Predict(rows [][]float64) ([]int, error)
}

// Classifier holds one trained model and the index to name mapping.
// It is read-only after construction and safe to share between requests.
type Classifier struct {
	model     Model
	labels    labels.IndexMap
	extractor *features.Extractor
	log       logrus.FieldLogger
}

// New creates a Classifier. The extractor may be nil when only feature
// vectors will be classified.
func New(model Model, idx labels.IndexMap, extractor *features.Extractor) *Classifier {
	return &Classifier{
		model:     model,
		labels:    idx,
		extractor: extractor,
		log:       logrus.StandardLogger(),
	}
}

// SetLogger replaces the logger used for swallowed failures.
func (c *Classifier) SetLogger(l logrus.FieldLogger) {
	c.log = l
}

// Labels returns the index to name mapping.
func (c *Classifier) Labels() labels.IndexMap {
	return c.labels
}

// Classify extracts features from frame and predicts a label.
// Errors from detection or the model are returned.
func (c *Classifier) Classify(frame *gocv.Mat) (string, error) {
	if c.extractor == nil {
		return "", errors.New("classifier has no feature extractor")
	}
	v, err := c.extractor.Extract(frame)
	if err != nil {
		return "", err
	}
	return c.ClassifyFeatures(v)
}

// ClassifyFeatures predicts a label for an already extracted vector.
// The zero vector short-circuits to NoHand without consulting the model.
func (c *Classifier) ClassifyFeatures(v features.Vector) (string, error) {
	if v.IsZero() {
		return NoHand, nil
	}
	if c.model == nil {
		return "", ErrNoModel
	}

	pred, err := c.model.Predict([][]float64{v.Slice()})
	if err != nil {
		return "", fmt.Errorf("predict: %w", err)
	}
	if len(pred) != 1 {
		return "", fmt.Errorf("predict: got %d results for 1 row", len(pred))
	}

	name, ok := c.labels[pred[0]]
	if !ok {
		return Unknown, nil
	}
	return name, nil
}

// PredictImage is Classify with every failure, including panics, logged and
// collapsed into Error.
func (c *Classifier) PredictImage(frame *gocv.Mat) (label string) {
	defer c.recover(&label)

	label, err := c.Classify(frame)
	if err != nil {
		c.log.Errorf("Prediction failed: %v", err)
		return Error
	}
	if label == NoHand {
		c.log.Debug("No hand landmarks detected in image")
	}
	return label
}

// PredictFeatures is ClassifyFeatures with every failure logged and collapsed into Error.
func (c *Classifier) PredictFeatures(v features.Vector) (label string) {
	defer c.recover(&label)

	label, err := c.ClassifyFeatures(v)
	if err != nil {
		c.log.Errorf("Landmark prediction failed: %v", err)
		return Error
	}
	return label
}

func (c *Classifier) recover(label *string) {
	if r := recover(); r != nil {
		c.log.Errorf("Prediction panicked: %v", r)
		*label = Error
	}
}

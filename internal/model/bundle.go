// Package model persists a trained forest together with its label map.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/forest"
	"github.com/ayusman/mudra/internal/labels"
)

// Bundle format identifiers.
const (
	Version = 1
	Kind    = "random_forest"
)

// ErrUnsupportedVersion is returned for bundles written in an unknown format.
var ErrUnsupportedVersion = errors.New("unsupported model bundle")

// Bundle is the on-disk model artifact.
type Bundle struct {
	Version int             `json:"version"`
	Kind    string          `json:"kind"`
	Forest  *forest.Forest  `json:"forest"`
	Labels  labels.IndexMap `json:"label_map,omitempty"`
}

// New wraps a trained forest and its index to name map.
func New(f *forest.Forest, idx labels.IndexMap) *Bundle {
	return &Bundle{
		Version: Version,
		Kind:    Kind,
		Forest:  f,
		Labels:  idx,
	}
}

// Predict classifies rows with the bundled forest.
func (b *Bundle) Predict(rows [][]float64) ([]int, error) {
	if b.Forest == nil {
		return nil, errors.New("bundle has no forest")
	}
	return b.Forest.Predict(rows)
}

// Save writes b as JSON.
func Save(path string, b *Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a bundle. A missing file yields an error matching fs.ErrNotExist.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model file not found at %s: %w", path, err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if b.Version != Version || b.Kind != Kind {
		return nil, fmt.Errorf("%w: version %d kind %q", ErrUnsupportedVersion, b.Version, b.Kind)
	}
	if b.Forest == nil {
		return nil, fmt.Errorf("model %s has no forest", path)
	}
	if err := b.Forest.Validate(features.Dim); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &b, nil
}

// LoadWithLabels loads a bundle and makes sure it carries a label map. The
// embedded map wins; otherwise the name to index file at labelMapPath is
// loaded and inverted.
func LoadWithLabels(modelPath, labelMapPath string) (*Bundle, error) {
	b, err := Load(modelPath)
	if err != nil {
		return nil, err
	}

	if len(b.Labels) > 0 {
		log.Debugf("Using %d labels embedded in %s", len(b.Labels), modelPath)
		return b, nil
	}

	m, err := labels.Load(labelMapPath)
	if err != nil {
		return nil, err
	}
	b.Labels = m.Invert()
	log.Debugf("Loaded %d labels from %s", len(b.Labels), labelMapPath)
	return b, nil
}

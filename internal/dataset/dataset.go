// Package dataset builds the landmark feature dataset from per-class image folders.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/labels"
)

// Dataset holds parallel feature rows and class indices.
type Dataset struct {
	Data   [][]float64 `json:"data"`
	Labels []int       `json:"labels"`
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Validate checks that rows and labels line up and every row has the feature width.
func (d *Dataset) Validate() error {
	if len(d.Data) != len(d.Labels) {
		return fmt.Errorf("dataset has %d rows but %d labels", len(d.Data), len(d.Labels))
	}
	for i, row := range d.Data {
		if _, err := features.FromSlice(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// ClassStats counts what happened to the images of one class.
type ClassStats struct {
	Index      int
	Kept       int
	NoHand     int
	Unreadable int
	Failed     int
}

// Stats maps class name to its counts.
type Stats map[string]*ClassStats

// Builder walks a data root of <class>/<image> files.
type Builder struct {
	Extractor *features.Extractor
	Log       logrus.FieldLogger

	// ReadImage loads a color image; an empty Mat means unreadable.
	// Defaults to gocv.IMRead.
	ReadImage func(path string) gocv.Mat
}

// NewBuilder creates a Builder using ex for feature extraction.
func NewBuilder(ex *features.Extractor) *Builder {
	return &Builder{
		Extractor: ex,
		Log:       logrus.StandardLogger(),
		ReadImage: readColor,
	}
}

func readColor(path string) gocv.Mat {
	return gocv.IMRead(path, gocv.IMReadColor)
}

// Build walks class directories and their files in name order and returns the
// dataset, the class label map and per-class stats. Images without a detected
// hand are left out of the dataset.
func (b *Builder) Build(ctx context.Context, root string) (*Dataset, labels.Map, Stats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read data dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	ds := &Dataset{Data: [][]float64{}, Labels: []int{}}
	labelMap := labels.Map{}
	stats := Stats{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		className := entry.Name()
		classIdx := labelMap.Add(className)
		st := &ClassStats{Index: classIdx}
		stats[className] = st
		b.Log.Infof("Processing class '%s' -> idx %d", className, classIdx)

		classDir := filepath.Join(root, className)
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read class dir %s: %w", classDir, err)
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, nil, nil, err
			}
			if f.IsDir() {
				continue
			}

			imgPath := filepath.Join(classDir, f.Name())
			v, ok := b.process(imgPath, st)
			if !ok {
				continue
			}

			ds.Data = append(ds.Data, v.Slice())
			ds.Labels = append(ds.Labels, classIdx)
			st.Kept++
		}
	}

	b.Log.Infof("Collected %d samples across %d classes", ds.Len(), len(labelMap))
	return ds, labelMap, stats, nil
}

// process reads and extracts one image. It reports false when the image must be skipped.
func (b *Builder) process(path string, st *ClassStats) (features.Vector, bool) {
	img := b.ReadImage(path)
	defer img.Close()

	if img.Empty() {
		b.Log.Warnf("Skipped unreadable: %s", path)
		st.Unreadable++
		return features.Vector{}, false
	}

	v, err := b.Extractor.Extract(&img)
	if err != nil {
		b.Log.Errorf("Error on %s: %v", path, err)
		st.Failed++
		return features.Vector{}, false
	}
	if v.IsZero() {
		b.Log.Debugf("No hand in %s", path)
		st.NoHand++
		return features.Vector{}, false
	}
	return v, true
}

// Save writes ds as JSON.
func Save(path string, ds *Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads and validates a dataset. A missing file yields an error matching fs.ErrNotExist.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset file not found at %s: %w", path, err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return &ds, nil
}

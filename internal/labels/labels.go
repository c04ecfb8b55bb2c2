// Package labels maps class names to the integer indices the classifier predicts.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Map assigns each class name a unique, contiguous index starting at 0.
type Map map[string]int

// IndexMap is the inverse of Map: index to class name.
type IndexMap map[int]string

// Build assigns indices in the order names are given. A repeated name keeps
// its first index.
func Build(names []string) Map {
	m := make(Map, len(names))
	for _, name := range names {
		if _, ok := m[name]; ok {
			continue
		}
		m[name] = len(m)
	}
	return m
}

// Add returns the index for name, assigning the next free one if it is new.
func (m Map) Add(name string) int {
	if idx, ok := m[name]; ok {
		return idx
	}
	idx := len(m)
	m[name] = idx
	return idx
}

// Invert swaps names and indices. Indices are assumed unique.
func (m Map) Invert() IndexMap {
	inv := make(IndexMap, len(m))
	for name, idx := range m {
		inv[idx] = name
	}
	return inv
}

// Invert swaps indices and names.
func (m IndexMap) Invert() Map {
	inv := make(Map, len(m))
	for idx, name := range m {
		inv[name] = idx
	}
	return inv
}

// Indices returns the indices in ascending order.
func (m IndexMap) Indices() []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Names returns the class names ordered by index.
func (m IndexMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, i := range m.Indices() {
		names = append(names, m[i])
	}
	return names
}

// Load reads a name-to-index map from a JSON file. A missing file yields an
// error matching fs.ErrNotExist.
func Load(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("label map not found at %s: %w", path, err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse label map %s: %w", path, err)
	}
	return m, nil
}

// Save writes m as indented JSON.
func Save(path string, m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode label map: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

package labels

import (
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  Map
	}{
		{
			name:  "sorted classes",
			input: []string{"A", "B", "space"},
			want:  Map{"A": 0, "B": 1, "space": 2},
		},
		{
			name:  "repeated name keeps first index",
			input: []string{"A", "A", "B"},
			want:  Map{"A": 0, "B": 1},
		},
		{
			name:  "empty",
			input: nil,
			want:  Map{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.input)
			if !maps.Equal(got, tt.want) {
				t.Errorf("Build(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMap_Invert(t *testing.T) {
	m := Build([]string{"A", "B", "space"})

	inv := m.Invert()

	want := IndexMap{0: "A", 1: "B", 2: "space"}
	if !maps.Equal(inv, want) {
		t.Errorf("Invert() = %v, want %v", inv, want)
	}
	if !maps.Equal(inv.Invert(), m) {
		t.Error("inverting twice should round-trip the map")
	}
}

func TestMap_Add(t *testing.T) {
	m := Map{}

	if idx := m.Add("del"); idx != 0 {
		t.Errorf("Add(del) = %d, want 0", idx)
	}
	if idx := m.Add("nothing"); idx != 1 {
		t.Errorf("Add(nothing) = %d, want 1", idx)
	}
	if idx := m.Add("del"); idx != 0 {
		t.Errorf("second Add(del) = %d, want 0", idx)
	}
}

func TestIndexMap_Names(t *testing.T) {
	inv := IndexMap{2: "space", 0: "A", 1: "B"}

	if got := inv.Names(); !slices.Equal(got, []string{"A", "B", "space"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "label_map.json"))
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("saved map", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "label_map.json")
		m := Map{"A": 0, "B": 1}
		if err := Save(path, m); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !maps.Equal(got, m) {
			t.Errorf("Load() = %v, want %v", got, m)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "label_map.json")
		os.WriteFile(path, []byte("{not json"), 0644)

		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// Package testdata generates image fixtures shared by tests.
package testdata

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// JPEG encodes a solid w x h image.
func JPEG(w, h int, c color.Color) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(w, h, c), imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode fixture: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI returns a solid JPEG as a browser style data URI.
func DataURI(w, h int, c color.Color) (string, error) {
	data, err := JPEG(w, h, c)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// WriteImages writes n solid w x h JPEGs named 0.jpg, 1.jpg, ... into dir.
func WriteImages(dir string, n, w, h int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		data, err := JPEG(w, h, color.Gray{Y: uint8(40 + 10*i)})
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.jpg", i)), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

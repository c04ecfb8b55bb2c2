package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// MaxImageSide bounds the width and height of decoded uploads.
const MaxImageSide = 1280

// ErrEmptyImage is returned when a request carries no image data.
var ErrEmptyImage = errors.New("empty image")

// StripDataURI removes a "data:<mime>;base64," header. Anything up to the
// first comma is treated as the header.
func StripDataURI(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodeBase64 accepts standard base64 with or without padding. Whitespace
// anywhere in s is ignored, so line-wrapped (MIME) payloads decode too.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if rawErr != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}

// DecodeImage turns an uploaded base64 image into a BGR Mat. The image is
// rotated according to its EXIF orientation and shrunk to fit MaxImageSide.
// The caller owns the returned Mat.
func DecodeImage(payload string) (gocv.Mat, error) {
	data, err := DecodeBase64(StripDataURI(payload))
	if err != nil {
		return gocv.NewMat(), err
	}
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxImageSide || b.Dy() > MaxImageSide {
		img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.Lanczos)
	}

	frame, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert image: %w", err)
	}
	return frame, nil
}

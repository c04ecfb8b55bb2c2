package live

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// BoxPadding is added around the landmark bounds, in pixels.
const BoxPadding = 10

var (
	green     = color.RGBA{G: 255, A: 255}
	red       = color.RGBA{R: 255, A: 255}
	fpsColor  = color.RGBA{G: 255, B: 100, A: 255}
	boneWidth = 2
)

// BoundingBox converts the normalized landmark bounds to pixels and pads them.
func BoundingBox(hand *detector.HandLandmarks, width, height int) image.Rectangle {
	minX, minY, maxX, maxY := hand.Bounds()
	return image.Rect(
		int(minX*float64(width))-BoxPadding,
		int(minY*float64(height))-BoxPadding,
		int(maxX*float64(width))+BoxPadding,
		int(maxY*float64(height))+BoxPadding,
	)
}

// Draw renders the hand skeleton, its bounding box and the label onto frame.
func Draw(frame *gocv.Mat, o Overlay) {
	if o.Hand == nil {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	px := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}
	for _, c := range detector.Connections {
		gocv.Line(frame, px(o.Hand.Points[c[0]]), px(o.Hand.Points[c[1]]), green, boneWidth)
	}
	for _, p := range o.Hand.Points {
		gocv.Circle(frame, px(p), 3, red, -1)
	}

	box := BoundingBox(o.Hand, w, h)
	gocv.Rectangle(frame, box, green, 2)
	gocv.PutText(frame, o.Label, image.Pt(box.Min.X, box.Min.Y-10), gocv.FontHersheySimplex, 1.5, green, 2)
}

// DrawFPS writes the frame rate in the top left corner.
func DrawFPS(frame *gocv.Mat, fps float64) {
	gocv.PutText(frame, fmt.Sprintf("FPS: %.1f", fps), image.Pt(10, 30), gocv.FontHersheySimplex, 1, fpsColor, 2)
}

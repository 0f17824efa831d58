// Package render produces annotated, JPEG-encoded frames for display.
package render

import (
	"errors"
	"image"
	"image/color"
	"log"

	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/pose"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 85

var (
	// ErrNoFrame is returned when there is no frame to render.
	ErrNoFrame = errors.New("no frame to render")
	// ErrEncodeFailed is returned when JPEG encoding fails.
	ErrEncodeFailed = errors.New("frame encoding failed")
)

// Drawing colors, BGR order as OpenCV expects.
var (
	landmarkColor   = color.RGBA{112, 112, 112, 0}
	connectionColor = color.RGBA{20, 200, 100, 0}
	hudColor        = color.RGBA{70, 70, 70, 0}
	labelColor      = color.RGBA{10, 150, 25, 0}
)

// Renderer draws skeletal overlays and a per-exercise HUD onto frames and
// encodes them as JPEG.
type Renderer struct {
	estimator pose.Estimator
	quality   int
}

// NewRenderer creates a Renderer. quality <= 0 selects DefaultQuality.
func NewRenderer(estimator pose.Estimator, quality int) *Renderer {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return &Renderer{
		estimator: estimator,
		quality:   quality,
	}
}

// Render annotates a copy of the frame with the skeletal connection set and
// the exercise HUD, then JPEG-encodes it. A failed or empty landmark
// estimation degrades to an un-annotated frame; only a missing frame or an
// encoding failure is an error.
func (r *Renderer) Render(frame *gocv.Mat, exercise analysis.Exercise) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, ErrNoFrame
	}

	canvas := frame.Clone()
	defer canvas.Close()

	landmarks, err := r.estimator.Estimate(frame)
	if err != nil {
		log.Printf("[RENDER] landmark estimation failed: %v", err)
		landmarks = nil
	}

	if landmarks != nil {
		r.drawSkeleton(&canvas, landmarks)
	}
	r.drawHUD(&canvas, exercise)

	buf, err := gocv.IMEncodeWithParams(".jpg", canvas, []int{gocv.IMWriteJpegQuality, r.quality})
	if err != nil {
		return nil, ErrEncodeFailed
	}
	defer buf.Close()

	encoded := make([]byte, buf.Len())
	copy(encoded, buf.GetBytes())
	return encoded, nil
}

// drawSkeleton draws the fixed connection set (no facial landmarks) plus a
// dot per joint.
func (r *Renderer) drawSkeleton(canvas *gocv.Mat, landmarks *pose.Landmarks) {
	cols := canvas.Cols()
	rows := canvas.Rows()

	toPixel := func(p pose.Point) image.Point {
		return image.Pt(int(p.X*float64(cols)), int(p.Y*float64(rows)))
	}

	for _, conn := range pose.Connections {
		a := toPixel(landmarks.Points[conn[0]])
		b := toPixel(landmarks.Points[conn[1]])
		gocv.Line(canvas, a, b, connectionColor, 3)
	}

	for _, conn := range pose.Connections {
		gocv.Circle(canvas, toPixel(landmarks.Points[conn[0]]), 4, landmarkColor, -1)
		gocv.Circle(canvas, toPixel(landmarks.Points[conn[1]]), 4, landmarkColor, -1)
	}
}

// drawHUD draws the exercise label box in the top-left corner.
func (r *Renderer) drawHUD(canvas *gocv.Mat, exercise analysis.Exercise) {
	gocv.Rectangle(canvas, image.Rect(0, 0, 250, 70), hudColor, -1)
	gocv.PutText(canvas, exercise.Label(), image.Pt(12, 42), gocv.FontHersheySimplex, 0.8, labelColor, 2)
}

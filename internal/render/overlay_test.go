package render

import (
	"bytes"
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
	"github.com/JosephGleason/moveright-backend/internal/pose"
)

var jpegMagic = []byte{0xff, 0xd8}

func testFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func TestRenderer_Render(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(pose.PlankLandmarks())

	r := NewRenderer(estimator, 0)

	data, err := r.Render(testFrame(t), analysis.Pushup)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(data, jpegMagic) {
		t.Error("Render() output is not JPEG data")
	}
}

func TestRenderer_NoFrame(t *testing.T) {
	r := NewRenderer(pose.NewMockEstimator(), 85)

	if _, err := r.Render(nil, analysis.Squat); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Render(nil) error = %v, want ErrNoFrame", err)
	}

	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := r.Render(&empty, analysis.Squat); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Render(empty) error = %v, want ErrNoFrame", err)
	}
}

func TestRenderer_DegradesWithoutLandmarks(t *testing.T) {
	t.Run("no subject", func(t *testing.T) {
		estimator := pose.NewMockEstimator()
		estimator.SetLandmarks(nil)

		r := NewRenderer(estimator, 85)

		data, err := r.Render(testFrame(t), analysis.Squat)
		if err != nil {
			t.Fatalf("Render() error = %v, want un-annotated frame", err)
		}
		if !bytes.HasPrefix(data, jpegMagic) {
			t.Error("Render() output is not JPEG data")
		}
	})

	t.Run("estimator failure", func(t *testing.T) {
		estimator := pose.NewMockEstimator()
		estimator.SetError(errors.New("subprocess gone"))

		r := NewRenderer(estimator, 85)

		if _, err := r.Render(testFrame(t), analysis.Pushup); err != nil {
			t.Fatalf("Render() error = %v, estimation failure must not fail rendering", err)
		}
	})
}

func TestRenderer_DoesNotMutateInput(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(pose.SquatBottomLandmarks())

	r := NewRenderer(estimator, 85)

	frame := testFrame(t)
	before := frame.Clone()
	defer before.Close()

	if _, err := r.Render(frame, analysis.Squat); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(*frame, before, &diff)
	if gocv.CountNonZero(diff.Reshape(1, frame.Rows()*3)) != 0 {
		t.Error("Render() mutated the input frame")
	}
}

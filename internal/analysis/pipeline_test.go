package analysis

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/pose"
)

func testFrame(t *testing.T) *gocv.Mat {
	t.Helper()
	mat := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { mat.Close() })
	return &mat
}

func TestAnalyzer_NoSubject(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(nil)

	analyzer := NewAnalyzer(estimator, NewMockClassifier())

	result, err := analyzer.Analyze(testFrame(t), Pushup)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result != nil {
		t.Errorf("Analyze() = %+v, want nil result when no subject detected", result)
	}
}

func TestAnalyzer_EstimatorError(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetError(errors.New("subprocess died"))

	analyzer := NewAnalyzer(estimator, NewMockClassifier())

	if _, err := analyzer.Analyze(testFrame(t), Pushup); err == nil {
		t.Error("Analyze() should propagate estimator errors")
	}
}

func TestAnalyzer_PushupAngles(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(pose.PlankLandmarks())

	classifier := NewMockClassifier()
	var gotExercise Exercise
	var gotVector []float64
	classifier.Observe(func(e Exercise, angles []float64) {
		gotExercise = e
		gotVector = append([]float64(nil), angles...)
	})

	analyzer := NewAnalyzer(estimator, classifier)

	result, err := analyzer.Analyze(testFrame(t), Pushup)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result == nil {
		t.Fatal("Analyze() returned nil result for a detected subject")
	}

	for _, name := range []string{"elbow", "body", "shoulder"} {
		angle, ok := result.Angles[name]
		if !ok {
			t.Fatalf("missing %s angle in %v", name, result.Angles)
		}
		if angle < 0 || angle > 180 {
			t.Errorf("%s angle = %v, want within [0,180]", name, angle)
		}
	}

	if result.Classification == nil {
		t.Fatal("expected a classification from the mock classifier")
	}
	if result.Classification.Label != "good" {
		t.Errorf("classification label = %s, want good", result.Classification.Label)
	}

	if gotExercise != Pushup {
		t.Errorf("classifier received exercise %v, want Pushup", gotExercise)
	}
	if len(gotVector) != 3 {
		t.Errorf("classifier received %d angles, want 3", len(gotVector))
	}
}

func TestAnalyzer_ClassifierUnavailable(t *testing.T) {
	estimator := pose.NewMockEstimator()
	estimator.SetLandmarks(pose.SquatBottomLandmarks())

	t.Run("nil classifier", func(t *testing.T) {
		analyzer := NewAnalyzer(estimator, nil)

		result, err := analyzer.Analyze(testFrame(t), Squat)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if result == nil || len(result.Angles) != 3 {
			t.Fatalf("expected angle measurements without classifier, got %+v", result)
		}
		if result.Classification != nil {
			t.Error("classification should be nil without a classifier")
		}
	})

	t.Run("failing classifier degrades", func(t *testing.T) {
		classifier := NewMockClassifier()
		classifier.SetError(errors.New("model not loaded"))

		analyzer := NewAnalyzer(estimator, classifier)

		result, err := analyzer.Analyze(testFrame(t), Squat)
		if err != nil {
			t.Fatalf("Analyze() error = %v, classifier failure must not fail the frame", err)
		}
		if result == nil || result.Classification != nil {
			t.Errorf("expected partial result with nil classification, got %+v", result)
		}
	})
}

package analysis

import (
	"fmt"
	"log"

	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/pose"
)

// Result holds the measurements for one analyzed frame. Angles map angle
// names to degrees rounded to one decimal. Classification is nil when the
// form classifier is unavailable.
type Result struct {
	Angles         map[string]float64 `json:"angles"`
	Classification *Classification    `json:"classification"`
}

// Analyzer runs the frame analysis pipeline: landmark estimation, joint
// angle computation, and form classification.
type Analyzer struct {
	estimator  pose.Estimator
	classifier FormClassifier
}

// NewAnalyzer creates an Analyzer. classifier may be nil, in which case
// results carry angle measurements without a verdict.
func NewAnalyzer(estimator pose.Estimator, classifier FormClassifier) *Analyzer {
	return &Analyzer{
		estimator:  estimator,
		classifier: classifier,
	}
}

// Analyze measures the exercise's angle set on one frame. It returns
// (nil, nil) when no subject is detected. A missing or failing classifier
// degrades the result to a nil Classification rather than failing the frame.
func (a *Analyzer) Analyze(frame *gocv.Mat, exercise Exercise) (*Result, error) {
	landmarks, err := a.estimator.Estimate(frame)
	if err != nil {
		return nil, fmt.Errorf("estimate landmarks: %w", err)
	}
	if landmarks == nil {
		return nil, nil
	}

	specs := exercise.angleSpecs()
	vector := make([]float64, 0, len(specs))
	angles := make(map[string]float64, len(specs))
	for _, s := range specs {
		angle := JointAngle(landmarks.Points[s.a], landmarks.Points[s.b], landmarks.Points[s.c])
		vector = append(vector, angle)
		angles[s.name] = round1(angle)
	}

	result := &Result{Angles: angles}

	if a.classifier != nil {
		classification, err := a.classifier.Classify(exercise, vector)
		if err != nil {
			log.Printf("[ANALYSIS] form classification unavailable: %v", err)
		} else {
			result.Classification = classification
		}
	}

	return result, nil
}

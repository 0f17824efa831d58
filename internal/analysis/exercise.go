// Package analysis turns raw frames into joint-angle measurements and form
// verdicts for a given exercise.
package analysis

import (
	"fmt"

	"github.com/JosephGleason/moveright-backend/internal/pose"
)

// Exercise identifies a supported exercise mode. Each mode carries its own
// landmark selection and ordered angle set.
type Exercise int

const (
	Pushup Exercise = iota
	Squat
)

// ParseExercise converts a wire string into an Exercise.
func ParseExercise(s string) (Exercise, error) {
	switch s {
	case "pushup":
		return Pushup, nil
	case "squat":
		return Squat, nil
	default:
		return 0, fmt.Errorf("unknown exercise %q", s)
	}
}

// String returns the wire name of the exercise.
func (e Exercise) String() string {
	switch e {
	case Pushup:
		return "pushup"
	case Squat:
		return "squat"
	}
	return fmt.Sprintf("Exercise(%d)", int(e))
}

// Label returns the heads-up display label for the exercise.
func (e Exercise) Label() string {
	switch e {
	case Pushup:
		return "Pushup session"
	case Squat:
		return "Squat session"
	}
	return "Exercise session"
}

// angleSpec names one measured angle and the three landmark indices that
// define it; b is the vertex.
type angleSpec struct {
	name    string
	a, b, c int
}

// angleSpecs returns the ordered angle set for the exercise. The order
// matches the feature vector the form classifier was trained on.
func (e Exercise) angleSpecs() []angleSpec {
	switch e {
	case Pushup:
		return []angleSpec{
			{"elbow", pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist},
			{"body", pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle},
			{"shoulder", pose.LeftEar, pose.LeftShoulder, pose.LeftElbow},
		}
	case Squat:
		return []angleSpec{
			{"knee", pose.LeftHip, pose.LeftKnee, pose.LeftAnkle},
			{"hip", pose.LeftShoulder, pose.LeftHip, pose.LeftKnee},
			{"back", pose.LeftShoulder, pose.LeftHip, pose.LeftAnkle},
		}
	}
	return nil
}

// AngleNames returns the ordered names of the angles measured for the
// exercise.
func (e Exercise) AngleNames() []string {
	specs := e.angleSpecs()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.name
	}
	return names
}

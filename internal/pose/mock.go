package pose

import (
	"gocv.io/x/gocv"
)

// MockEstimator is a test implementation of the Estimator interface.
// It allows tests to control the estimation results.
type MockEstimator struct {
	landmarks *Landmarks
	err       error
	calls     int
}

// NewMockEstimator creates a new MockEstimator instance.
func NewMockEstimator() *MockEstimator {
	return &MockEstimator{}
}

// SetLandmarks sets the landmarks that will be returned by Estimate.
// nil means "no subject detected".
func (m *MockEstimator) SetLandmarks(lm *Landmarks) {
	m.landmarks = lm
}

// SetError sets the error that will be returned by Estimate.
func (m *MockEstimator) SetError(err error) {
	m.err = err
}

// Calls returns how many times Estimate has been invoked.
func (m *MockEstimator) Calls() int {
	return m.calls
}

// Estimate returns the pre-configured landmarks or error.
func (m *MockEstimator) Estimate(frame *gocv.Mat) (*Landmarks, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.landmarks, nil
}

// Close is a no-op for the mock estimator.
func (m *MockEstimator) Close() error {
	return nil
}

// PlankLandmarks returns a preset pose for a subject holding the top of a
// pushup, facing left of frame with the body roughly horizontal.
func PlankLandmarks() *Landmarks {
	lm := &Landmarks{Score: 0.95}

	set := func(idx int, x, y float64) {
		lm.Points[idx] = Point{X: x, Y: y, Visibility: 0.9}
	}

	set(LeftEar, 0.22, 0.44)
	set(RightEar, 0.24, 0.46)
	set(LeftShoulder, 0.30, 0.50)
	set(RightShoulder, 0.31, 0.52)
	set(LeftElbow, 0.30, 0.65)
	set(RightElbow, 0.31, 0.66)
	set(LeftWrist, 0.30, 0.80)
	set(RightWrist, 0.31, 0.81)
	set(LeftHip, 0.55, 0.56)
	set(RightHip, 0.56, 0.57)
	set(LeftKnee, 0.70, 0.60)
	set(RightKnee, 0.71, 0.61)
	set(LeftAnkle, 0.85, 0.64)
	set(RightAnkle, 0.86, 0.65)

	return lm
}

// SquatBottomLandmarks returns a preset pose for a subject at the bottom of
// a squat, facing left of frame with knees deeply bent.
func SquatBottomLandmarks() *Landmarks {
	lm := &Landmarks{Score: 0.93}

	set := func(idx int, x, y float64) {
		lm.Points[idx] = Point{X: x, Y: y, Visibility: 0.9}
	}

	set(LeftEar, 0.50, 0.28)
	set(RightEar, 0.52, 0.29)
	set(LeftShoulder, 0.52, 0.38)
	set(RightShoulder, 0.53, 0.39)
	set(LeftElbow, 0.42, 0.42)
	set(RightElbow, 0.43, 0.43)
	set(LeftWrist, 0.34, 0.40)
	set(RightWrist, 0.35, 0.41)
	set(LeftHip, 0.56, 0.62)
	set(RightHip, 0.57, 0.63)
	set(LeftKnee, 0.44, 0.70)
	set(RightKnee, 0.45, 0.71)
	set(LeftAnkle, 0.48, 0.90)
	set(RightAnkle, 0.49, 0.91)

	return lm
}

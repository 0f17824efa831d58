package pose

import "gocv.io/x/gocv"

// Estimator defines the interface for pose landmark providers.
type Estimator interface {
	// Estimate analyzes a video frame and returns the detected body
	// landmarks, or nil if no subject is found. A nil result is not an
	// error.
	Estimate(frame *gocv.Mat) (*Landmarks, error)

	// Close releases any resources held by the estimator.
	Close() error
}

// Config holds configuration options for pose estimation.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

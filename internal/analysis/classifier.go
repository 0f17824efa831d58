package analysis

// Classification is a binary form verdict with a confidence score.
type Classification struct {
	Label      string  `json:"label"` // "good" or "bad"
	Confidence float64 `json:"confidence"`
}

// FormClassifier maps an ordered angle feature vector to a form verdict.
type FormClassifier interface {
	Classify(exercise Exercise, angles []float64) (*Classification, error)

	// Close releases any resources held by the classifier.
	Close() error
}

// MockClassifier is a test implementation of FormClassifier.
type MockClassifier struct {
	result *Classification
	err    error
	calls  int
	lastFn func(Exercise, []float64)
}

// NewMockClassifier creates a MockClassifier returning a "good" verdict.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		result: &Classification{Label: "good", Confidence: 0.9},
	}
}

// SetResult sets the classification returned by Classify.
func (m *MockClassifier) SetResult(c *Classification) {
	m.result = c
}

// SetError sets the error returned by Classify.
func (m *MockClassifier) SetError(err error) {
	m.err = err
}

// Observe registers a callback invoked with each Classify input.
func (m *MockClassifier) Observe(fn func(Exercise, []float64)) {
	m.lastFn = fn
}

// Calls returns how many times Classify has been invoked.
func (m *MockClassifier) Calls() int {
	return m.calls
}

// Classify returns the pre-configured result or error.
func (m *MockClassifier) Classify(exercise Exercise, angles []float64) (*Classification, error) {
	m.calls++
	if m.lastFn != nil {
		m.lastFn(exercise, angles)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock classifier.
func (m *MockClassifier) Close() error {
	return nil
}

package capture

import (
	"errors"
	"log"

	"gocv.io/x/gocv"
)

// ErrNoSource is returned when no working local capture source is found.
var ErrNoSource = errors.New("no capture source found")

// DefaultProbeIndices is the ordered list of local device indices probed
// when no explicit source is given.
var DefaultProbeIndices = []int{0, 1, 2}

// FindSource probes local device indices in order and returns the first one
// that opens and yields a non-empty frame. Each probed device is released
// again, whether or not the probe succeeded. Returns ErrNoSource if nothing
// works; callers must treat that as a hard failure.
func FindSource(indices []int) (int, error) {
	if len(indices) == 0 {
		indices = DefaultProbeIndices
	}

	for _, idx := range indices {
		log.Printf("[CAMERA] probing local source %d", idx)

		capture, err := gocv.OpenVideoCapture(idx)
		if err != nil {
			continue
		}

		mat := gocv.NewMat()
		ok := capture.Read(&mat)
		empty := mat.Empty()
		mat.Close()
		capture.Close()

		if ok && !empty {
			log.Printf("[CAMERA] using local source %d", idx)
			return idx, nil
		}
	}

	return 0, ErrNoSource
}

// Package capture provides per-user camera capture using GoCV (OpenCV).
package capture

import (
	"errors"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrDeviceNotOpen is returned when trying to read from a device that is not open.
var ErrDeviceNotOpen = errors.New("capture device is not open")

// Device defines the interface for frame source implementations.
type Device interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// videoDevice wraps a gocv.VideoCapture for a local camera index or a
// network/file URI.
type videoDevice struct {
	source  any // int device index or string URI
	width   int
	height  int
	mu      sync.Mutex
	capture *gocv.VideoCapture
	open    bool
}

// NewVideoDevice creates a Device for the given source descriptor.
// A numeric source is treated as a local device index, anything else
// as a URI (network stream or video file).
func NewVideoDevice(source string, width, height int) Device {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var src any = source
	if idx, err := strconv.Atoi(source); err == nil {
		src = idx
	}

	return &videoDevice{
		source: src,
		width:  width,
		height: height,
	}
}

// Open opens the underlying video capture and sets the resolution.
func (d *videoDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(d.source)
	if err != nil {
		return err
	}

	// Set resolution for performance
	capture.Set(gocv.VideoCaptureFrameWidth, float64(d.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(d.height))

	d.capture = capture
	d.open = true

	return nil
}

// Close releases the video capture. Safe to call when not open.
func (d *videoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.capture == nil {
		d.open = false
		return nil
	}

	err := d.capture.Close()
	d.capture = nil
	d.open = false

	return err
}

// ReadFrame reads a single frame from the device.
// The caller is responsible for closing the returned Mat.
func (d *videoDevice) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.capture == nil {
		return nil, ErrDeviceNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from device")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the device is currently open.
func (d *videoDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.open
}

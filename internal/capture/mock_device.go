package capture

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDevice plays back pre-recorded frames for testing.
type MockDevice struct {
	frames    []*gocv.Mat
	index     int
	loop      bool
	readDelay time.Duration
	err       error
	mu        sync.Mutex
	open      bool
	reads     int
}

func NewMockDevice(frames []*gocv.Mat, loop bool) *MockDevice {
	return &MockDevice{
		frames: frames,
		loop:   loop,
	}
}

func (d *MockDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.index = 0
	return nil
}

func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	return nil
}

func (d *MockDevice) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	delay := d.readDelay
	d.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.reads++

	if !d.open {
		return nil, ErrDeviceNotOpen
	}

	if d.err != nil {
		return nil, d.err
	}

	if len(d.frames) == 0 {
		return nil, fmt.Errorf("no frames available")
	}

	if d.index >= len(d.frames) {
		if d.loop {
			d.index = 0
		} else {
			return nil, fmt.Errorf("no more frames")
		}
	}

	// Clone the frame so the original isn't modified
	frame := d.frames[d.index].Clone()
	d.index++

	return &frame, nil
}

func (d *MockDevice) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// SetReadDelay makes each ReadFrame block for the given duration,
// simulating a real capture cadence.
func (d *MockDevice) SetReadDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readDelay = delay
}

// SetError forces subsequent reads to fail with err (nil clears it).
func (d *MockDevice) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// Reads returns how many times ReadFrame has been called.
func (d *MockDevice) Reads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads
}

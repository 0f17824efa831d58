package capture

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/JosephGleason/moveright-backend/internal/metrics"
)

// Agent timing constants.
const (
	// readBackoff is how long the capture loop pauses after a failed read.
	readBackoff = 100 * time.Millisecond
	// DefaultStopTimeout bounds how long Stop waits for the loop to exit.
	DefaultStopTimeout = 2 * time.Second
)

// ErrNoFrame is returned when no frame has been captured yet.
var ErrNoFrame = errors.New("no frame available")

// AgentConfig holds construction options for a capture Agent.
type AgentConfig struct {
	// UserID identifies the owning user.
	UserID string
	// Source is a device index or URI. Empty means auto-resolve a local camera.
	Source string
	// Width and Height set the capture resolution (defaults 640x480).
	Width  int
	Height int
	// ProbeIndices overrides the device indices probed during auto-resolve.
	ProbeIndices []int
	// StopTimeout bounds how long Stop waits for the capture loop to finish.
	StopTimeout time.Duration
	// Metrics receives throughput counters when non-nil.
	Metrics *metrics.Metrics
}

// Agent owns one capture device for one user. It runs a dedicated capture
// loop that keeps the latest decoded frame available to any number of
// readers. Construction and loop startup are separate steps: NewAgent opens
// the device but spawns nothing, Start begins capturing.
type Agent struct {
	userID      string
	source      string
	device      Device
	stopTimeout time.Duration
	metrics     *metrics.Metrics

	// frameMu guards the latest-frame slot. The capture loop is the only
	// writer; readers always receive clones.
	frameMu sync.Mutex
	frame   *gocv.Mat

	rate *rateCounter

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewAgent constructs an Agent and opens its capture device. If no source is
// given, local device indices are probed; ErrNoSource is returned when none
// works. On any failure no agent handle is returned, so there is never a
// stoppable-looking handle for a half-constructed agent.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	source := cfg.Source
	if source == "" {
		idx, err := FindSource(cfg.ProbeIndices)
		if err != nil {
			return nil, err
		}
		source = strconv.Itoa(idx)
	}

	device := NewVideoDevice(source, cfg.Width, cfg.Height)
	return NewAgentWithDevice(cfg, device, source)
}

// NewAgentWithDevice constructs an Agent around an already-built Device.
// The device is opened here; the capture loop is not started.
func NewAgentWithDevice(cfg AgentConfig, device Device, source string) (*Agent, error) {
	if err := device.Open(); err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", source, err)
	}

	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = DefaultStopTimeout
	}

	return &Agent{
		userID:      cfg.UserID,
		source:      source,
		device:      device,
		stopTimeout: stopTimeout,
		metrics:     cfg.Metrics,
		rate:        newRateCounter(time.Now()),
	}, nil
}

// Start spawns the capture loop. It returns immediately and is a no-op if
// the agent is already running.
func (a *Agent) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	a.running = true

	go a.loop(a.stopCh, a.done)

	if a.metrics != nil {
		a.metrics.ActiveCameras.Add(1)
	}
	log.Printf("[CAMERA] capture started for user %s (source %s)", a.userID, a.source)
}

// loop reads frames until the stop channel is closed. Transient read
// failures are logged and retried after a bounded backoff; only an explicit
// stop terminates the loop.
func (a *Agent) loop(stopCh, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		mat, err := a.device.ReadFrame()
		if err != nil {
			if a.metrics != nil {
				a.metrics.CaptureErrors.Add(1)
			}
			log.Printf("[CAMERA] frame read failed for user %s: %v", a.userID, err)

			select {
			case <-stopCh:
				return
			case <-time.After(readBackoff):
			}
			continue
		}

		a.publish(mat)
	}
}

// publish installs a freshly decoded frame into the latest-frame slot,
// taking ownership of the Mat.
func (a *Agent) publish(mat *gocv.Mat) {
	a.frameMu.Lock()
	if a.frame != nil {
		a.frame.Close()
	}
	a.frame = mat
	a.frameMu.Unlock()

	a.rate.Tick(time.Now())
	if a.metrics != nil {
		a.metrics.FramesCaptured.Add(1)
	}
}

// LatestFrame returns a copy of the most recent successfully decoded frame,
// or nil if no frame has arrived yet. The caller owns the returned Mat.
func (a *Agent) LatestFrame() *gocv.Mat {
	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	if a.frame == nil {
		return nil
	}

	clone := a.frame.Clone()
	return &clone
}

// FPS returns the capture rate measured over a rolling one-second window,
// rounded to two decimals.
func (a *Agent) FPS() float64 {
	rate := a.rate.Rate()
	return float64(int(rate*100+0.5)) / 100
}

// IsRunning reports whether the capture loop is active. It is false before
// Start and after Stop; it does not reflect device health.
func (a *Agent) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.running
}

// UserID returns the owning user's id.
func (a *Agent) UserID() string {
	return a.userID
}

// Source returns the resolved source descriptor.
func (a *Agent) Source() string {
	return a.source
}

// TakePicture snapshots the latest frame to a JPEG file. When filename is
// empty a name is derived from the user id and timestamp inside dir.
// Returns ErrNoFrame when no frame has been captured yet.
func (a *Agent) TakePicture(dir, filename string) (string, error) {
	frame := a.LatestFrame()
	if frame == nil {
		return "", ErrNoFrame
	}
	defer frame.Close()

	if filename == "" {
		stamp := time.Now().Format("20060102_150405")
		filename = fmt.Sprintf("user_%s_%s.jpg", a.userID, stamp)
	}
	path := filepath.Join(dir, filename)

	if ok := gocv.IMWrite(path, *frame); !ok {
		return "", fmt.Errorf("failed to save picture %s", path)
	}

	log.Printf("[CAMERA] picture saved: %s", path)
	return filename, nil
}

// Stop signals the capture loop to exit, waits up to the stop timeout for it
// to finish, frees the latest frame, and releases the device. A timeout is
// treated as stopped best-effort; resources are still released. Stop is safe
// to call multiple times and on an agent that was never started.
func (a *Agent) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		a.release()
		return
	}
	a.running = false
	close(a.stopCh)
	done := a.done
	a.mu.Unlock()

	select {
	case <-done:
	case <-time.After(a.stopTimeout):
		log.Printf("[CAMERA] capture loop for user %s did not stop within %v", a.userID, a.stopTimeout)
	}

	a.release()

	if a.metrics != nil {
		a.metrics.ActiveCameras.Add(-1)
	}
	log.Printf("[CAMERA] capture stopped for user %s", a.userID)
}

// release frees the frame slot and the device. Idempotent.
func (a *Agent) release() {
	a.frameMu.Lock()
	if a.frame != nil {
		a.frame.Close()
		a.frame = nil
	}
	a.frameMu.Unlock()

	if err := a.device.Close(); err != nil {
		log.Printf("[CAMERA] error closing device for user %s: %v", a.userID, err)
	}
}

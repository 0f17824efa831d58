package capture

import (
	"sync"
	"time"
)

// rateCounter measures throughput over a rolling one-second window.
// The published rate is recomputed at each window rollover as the number
// of ticks since the window started divided by the elapsed time.
type rateCounter struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int
	rate        float64
}

func newRateCounter(now time.Time) *rateCounter {
	return &rateCounter{windowStart: now}
}

// Tick records one successful event at the given time.
func (c *rateCounter) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	elapsed := now.Sub(c.windowStart)
	if elapsed >= time.Second {
		c.rate = float64(c.count) / elapsed.Seconds()
		c.count = 0
		c.windowStart = now
	}
}

// Rate returns the most recently computed rate.
func (c *rateCounter) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rate
}

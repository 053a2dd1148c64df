package speech

import (
	"fmt"
	"sync"
	"time"
)

// Clock accumulates elapsed speaking time while running and calls onTick
// each time a whole second is crossed.
type Clock struct {
	period time.Duration
	onTick func(elapsed time.Duration)

	mu      sync.Mutex
	elapsed time.Duration
	stop    chan struct{}
}

func NewClock(period time.Duration, onTick func(elapsed time.Duration)) (*Clock, error) {
	if period <= 0 || period%(10*time.Millisecond) != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidFrequency, period)
	}
	return &Clock{period: period, onTick: onTick}, nil
}

// Start begins ticking. Starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	stop := make(chan struct{})
	c.stop = stop
	go c.run(stop)
}

// Stop halts ticking and keeps the elapsed time.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
}

// Reset stops the clock and zeroes it.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halt()
	c.elapsed = 0
}

func (c *Clock) Set(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed = d
}

func (c *Clock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *Clock) halt() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Clock) run(stop chan struct{}) {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.step(stop)
		}
	}
}

// step advances the clock by one period if stop is still the live run.
func (c *Clock) step(stop chan struct{}) {
	c.mu.Lock()
	if c.stop != stop {
		c.mu.Unlock()
		return
	}
	before := c.elapsed
	c.elapsed += c.period
	now := c.elapsed
	c.mu.Unlock()

	if c.onTick != nil && now/time.Second > before/time.Second {
		c.onTick(now)
	}
}

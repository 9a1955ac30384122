package usecase

import (
	"sync"
	"time"
)

type windowState struct {
	firstSeen time.Time
	count     int
	alerted   bool
}

// WindowCounter counts events per key inside a fixed window that starts at
// the key's first event. It fires once per key per window when the count
// reaches the threshold. State is per process.
type WindowCounter struct {
	mu        sync.Mutex
	entries   map[string]*windowState
	now       func() time.Time
	window    time.Duration
	threshold int
}

// NewWindowCounter creates a counter. A nil clock uses time.Now.
func NewWindowCounter(window time.Duration, threshold int, now func() time.Time) *WindowCounter {
	if now == nil {
		now = time.Now
	}

	return &WindowCounter{
		entries:   make(map[string]*windowState),
		now:       now,
		window:    window,
		threshold: threshold,
	}
}

// Hit records one event for key and returns the count inside the current
// window. fire is true only on the event that first reaches the threshold.
func (c *WindowCounter) Hit(key string) (count int, fire bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	for k, s := range c.entries {
		if now.Sub(s.firstSeen) > c.window {
			delete(c.entries, k)
		}
	}

	s, ok := c.entries[key]
	if !ok {
		s = &windowState{firstSeen: now}
		c.entries[key] = s
	}

	s.count++

	if s.count >= c.threshold && !s.alerted {
		s.alerted = true
		return s.count, true
	}

	return s.count, false
}

// Len returns the number of keys currently tracked.
func (c *WindowCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Window returns the counting window.
func (c *WindowCounter) Window() time.Duration {
	return c.window
}

// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clocktest

import (
	"sync"
	"time"
)

// Clock is a manually advanceable clock for tests
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// New creates a clock frozen at now
func New(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the frozen time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

package com

import "sync/atomic"

// Counter is a simple atomic add-only uint64 counter, safe for concurrent
// use without external locking.
type Counter struct {
	v atomic.Uint64
}

// Add adds delta to the counter and returns nothing; callers wanting the
// new value call Val afterward.
func (c *Counter) Add(delta uint64) {
	c.v.Add(delta)
}

// Val returns the counter's current value.
func (c *Counter) Val() uint64 {
	return c.v.Load()
}

// Total is an alias for Val, used where call sites read more naturally as
// "total rows processed so far" than "current value".
func (c *Counter) Total() uint64 {
	return c.v.Load()
}

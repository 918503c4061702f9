package com

// Waiter is implemented by anything with a blocking Wait method that
// returns the first error encountered, such as *errgroup.Group.
type Waiter interface {
	Wait() error
}

// WaiterFunc is an adapter to allow the use of ordinary functions as Waiter.
type WaiterFunc func() error

// Wait implements the Waiter interface.
func (f WaiterFunc) Wait() error { return f() }

package com

import (
	"context"
	"sync"
)

// Cond is a context-bound broadcast condition variable: Wait returns a
// channel that closes on the next Broadcast call, and Done returns a
// channel that closes once the bound context is done or Close is called.
type Cond struct {
	mu        sync.Mutex
	ch        chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCond returns a Cond bound to ctx: once ctx is done, Done's channel
// closes automatically.
func NewCond(ctx context.Context) *Cond {
	c := &Cond{ch: make(chan struct{}), done: make(chan struct{})}

	go func() {
		select {
		case <-ctx.Done():
			c.closeOnce.Do(func() { close(c.done) })
		case <-c.done:
		}
	}()

	return c
}

// Done returns a channel that closes once the Cond's context is done or
// Close is called.
func (c *Cond) Done() <-chan struct{} {
	return c.done
}

// Wait returns a channel that closes on the next call to Broadcast.
func (c *Cond) Wait() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

// Broadcast wakes every current Wait caller and arms a fresh channel for
// the next round.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.ch)
	c.ch = make(chan struct{})
}

// Close closes Done's channel, if not already closed.
func (c *Cond) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

package com

import (
	"context"
	"time"
)

// BulkChunkSplitPolicy decides, for the item just appended to the current
// chunk, whether Bulk must cut the chunk off right there regardless of
// count.
type BulkChunkSplitPolicy[T any] func(T) bool

// BulkChunkSplitPolicyFactory produces a fresh BulkChunkSplitPolicy for
// each chunk Bulk assembles, so a policy can keep state across the items of
// one chunk without leaking it into the next.
type BulkChunkSplitPolicyFactory[T any] func() BulkChunkSplitPolicy[T]

// NeverSplit is a BulkChunkSplitPolicyFactory that never forces an early
// split — a chunk ends only when it reaches count items or the input goes
// idle.
func NeverSplit[T any]() BulkChunkSplitPolicy[T] {
	return func(T) bool { return false }
}

// bulkIdleTimeout bounds how long Bulk waits for another item before
// flushing a partial chunk, so a slow trickle of items does not stall
// bulk execution indefinitely.
const bulkIdleTimeout = 100 * time.Millisecond

// Bulk groups items read from in into chunks of up to count items (count
// <= 0 means unbounded), flushing a chunk early if the split policy
// requests it or if no new item arrives within bulkIdleTimeout. The
// returned channel is closed once in is closed and its final chunk (if
// any) has been delivered, or once ctx is done.
func Bulk[T any](ctx context.Context, in <-chan T, count int, splitPolicyFactory BulkChunkSplitPolicyFactory[T]) <-chan []T {
	out := make(chan []T)

	go func() {
		defer close(out)

		var chunk []T
		splitPolicy := splitPolicyFactory()

		flush := func() bool {
			if len(chunk) == 0 {
				return true
			}
			select {
			case out <- chunk:
				chunk = nil
				splitPolicy = splitPolicyFactory()
				return true
			case <-ctx.Done():
				return false
			}
		}

		timer := time.NewTimer(bulkIdleTimeout)
		defer timer.Stop()

		for {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(bulkIdleTimeout)

			select {
			case <-ctx.Done():
				return
			case item, ok := <-in:
				if !ok {
					flush()
					return
				}

				chunk = append(chunk, item)
				if splitPolicy(item) || (count > 0 && len(chunk) >= count) {
					if !flush() {
						return
					}
				}
			case <-timer.C:
				if !flush() {
					return
				}
			}
		}
	}()

	return out
}

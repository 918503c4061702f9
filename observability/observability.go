// Package observability defines the executor's event model and the
// observer adapters that consume it — metrics, tracing, structured logging,
// and (in observability/redisbus) a durable event bus.
package observability

import (
	"time"

	"github.com/AnirudhB3000/buildaquery/types"
)

// ExecutionEvent is emitted once per statement execution, successful or
// not. Field names and types mirror the executor's own bookkeeping so an
// observer never needs to recompute anything from raw driver state.
type ExecutionEvent struct {
	QueryID       types.UUID
	ConnectionID  types.UUID
	TransactionID *types.UUID // nil outside a transaction

	Dialect   string
	Operation string // "execute", "execute_many" or "retry"
	SQL       string
	ParamsLen int

	StartedAt time.Time
	Duration  time.Duration

	RowsAffected int64
	Err          error
	RetryAttempt uint64 // set on "retry" observations; 0 otherwise
}

// QueryObservation is the read-only summary an Observer.OnQuery callback
// receives — an ExecutionEvent plus an attempt count and outcome. The
// executor emits one for every executed attempt, with TotalAttempts 1, and
// one with Operation "retry" for every retry that retry.Do schedules; it
// emits no summary once a retry sequence ends.
type QueryObservation struct {
	ExecutionEvent
	TotalAttempts uint64
	Succeeded     bool
}

// Observer is implemented by anything that wants to react to executor
// activity. Every method is called synchronously on the executor's
// goroutine, inline with the operation it reports, so a slow method delays
// that operation; redisbus.Sink, for example, performs a blocking XADD in
// each call.
type Observer interface {
	OnQuery(QueryObservation)
	OnTransactionBegin(txID types.UUID)
	OnTransactionEnd(txID types.UUID, committed bool)
}

// Compose combines observers into one that fans every call out to each in
// order. A nil entry is skipped, so callers can build a slice conditionally
// without filtering it themselves.
func Compose(observers ...Observer) Observer {
	return compositeObserver{observers: observers}
}

type compositeObserver struct{ observers []Observer }

func (c compositeObserver) OnQuery(o QueryObservation) {
	for _, obs := range c.observers {
		if obs != nil {
			obs.OnQuery(o)
		}
	}
}

func (c compositeObserver) OnTransactionBegin(txID types.UUID) {
	for _, obs := range c.observers {
		if obs != nil {
			obs.OnTransactionBegin(txID)
		}
	}
}

func (c compositeObserver) OnTransactionEnd(txID types.UUID, committed bool) {
	for _, obs := range c.observers {
		if obs != nil {
			obs.OnTransactionEnd(txID, committed)
		}
	}
}

package observability

import (
	"sync"

	"github.com/AnirudhB3000/buildaquery/com"
	"github.com/AnirudhB3000/buildaquery/types"
)

// MetricsAdapter is an in-memory Observer that keeps label-keyed counters
// and a rolling per-label duration total, grounded on the teacher's
// com.Counter atomic-add idiom generalized to a lazily-populated,
// mutex-guarded map of series (the same shape as the teacher's
// table-semaphore map in its DB connector).
type MetricsAdapter struct {
	mu       sync.Mutex
	queries  map[string]*com.Counter
	errors   map[string]*com.Counter
	duration map[string]*com.Counter // nanoseconds, summed
	retries  map[string]*com.Counter
	txBegins com.Counter
	txEnds   com.Counter
}

// NewMetricsAdapter returns an empty MetricsAdapter.
func NewMetricsAdapter() *MetricsAdapter {
	return &MetricsAdapter{
		queries:  make(map[string]*com.Counter),
		errors:   make(map[string]*com.Counter),
		duration: make(map[string]*com.Counter),
		retries:  make(map[string]*com.Counter),
	}
}

func (m *MetricsAdapter) counter(series map[string]*com.Counter, label string) *com.Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := series[label]
	if !ok {
		c = &com.Counter{}
		series[label] = c
	}
	return c
}

func (m *MetricsAdapter) label(o QueryObservation) string {
	return o.Dialect + ":" + o.Operation
}

// OnQuery implements Observer.
func (m *MetricsAdapter) OnQuery(o QueryObservation) {
	label := m.label(o)
	m.counter(m.queries, label).Add(1)
	m.counter(m.duration, label).Add(uint64(o.Duration.Nanoseconds()))
	if o.Err != nil {
		m.counter(m.errors, label).Add(1)
	}
	if o.RetryAttempt > 0 {
		m.counter(m.retries, label).Add(o.RetryAttempt)
	}
}

// OnTransactionBegin implements Observer.
func (m *MetricsAdapter) OnTransactionBegin(txID types.UUID) {
	m.txBegins.Add(1)
}

// OnTransactionEnd implements Observer.
func (m *MetricsAdapter) OnTransactionEnd(txID types.UUID, committed bool) {
	m.txEnds.Add(1)
}

// QueryCount returns the number of observed queries for dialect:operation.
func (m *MetricsAdapter) QueryCount(dialect, operation string) uint64 {
	return m.counter(m.queries, dialect+":"+operation).Val()
}

// ErrorCount returns the number of observed failing queries for
// dialect:operation.
func (m *MetricsAdapter) ErrorCount(dialect, operation string) uint64 {
	return m.counter(m.errors, dialect+":"+operation).Val()
}

// RetryCount returns the sum of retry attempts observed for
// dialect:operation.
func (m *MetricsAdapter) RetryCount(dialect, operation string) uint64 {
	return m.counter(m.retries, dialect+":"+operation).Val()
}

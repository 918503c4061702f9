package observability

import (
	"sync"
	"time"

	"github.com/AnirudhB3000/buildaquery/types"
)

// Span is one open db.query or db.transaction span.
type Span struct {
	Name      string
	StartedAt time.Time
	EndedAt   time.Time
	Attrs     map[string]string
}

// SpanExporter receives a finished Span. Implementations must not block.
type SpanExporter interface {
	Export(Span)
}

// TracingAdapter is an Observer that emits a "db.query" span per
// ExecutionEvent and a "db.transaction" span per transaction lifetime.
type TracingAdapter struct {
	exporter SpanExporter

	mu   sync.Mutex
	open map[types.UUID]time.Time
}

// NewTracingAdapter returns a TracingAdapter publishing finished spans to
// exporter.
func NewTracingAdapter(exporter SpanExporter) *TracingAdapter {
	return &TracingAdapter{exporter: exporter, open: make(map[types.UUID]time.Time)}
}

// OnQuery implements Observer.
func (t *TracingAdapter) OnQuery(o QueryObservation) {
	attrs := map[string]string{
		"db.dialect":   o.Dialect,
		"db.operation": o.Operation,
	}
	if o.Err != nil {
		attrs["error"] = o.Err.Error()
	}

	t.exporter.Export(Span{
		Name:      "db.query",
		StartedAt: o.StartedAt,
		EndedAt:   o.StartedAt.Add(o.Duration),
		Attrs:     attrs,
	})
}

// OnTransactionBegin implements Observer.
func (t *TracingAdapter) OnTransactionBegin(txID types.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open[txID] = nowOrZero()
}

// OnTransactionEnd implements Observer.
func (t *TracingAdapter) OnTransactionEnd(txID types.UUID, committed bool) {
	t.mu.Lock()
	started, ok := t.open[txID]
	delete(t.open, txID)
	t.mu.Unlock()
	if !ok {
		return
	}

	outcome := "rollback"
	if committed {
		outcome = "commit"
	}

	t.exporter.Export(Span{
		Name:      "db.transaction",
		StartedAt: started,
		EndedAt:   nowOrZero(),
		Attrs:     map[string]string{"db.transaction.outcome": outcome},
	})
}

// nowOrZero exists only so the timestamp source is a single call site; the
// executor stamps events with its own clock, this adapter only needs
// relative ordering between begin and end.
func nowOrZero() time.Time { return time.Now() }

// NoopSpanExporter discards every span. Useful as a TracingAdapter default
// when no real exporter is configured.
type NoopSpanExporter struct{}

func (NoopSpanExporter) Export(Span) {}

var _ SpanExporter = NoopSpanExporter{}

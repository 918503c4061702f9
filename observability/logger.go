package observability

import (
	"encoding/json"
	"io"
	"time"

	"github.com/AnirudhB3000/buildaquery/types"
)

// JSONLogger is an Observer that writes one JSON object per line to w —
// the executor's structured-logging equivalent of the teacher's
// zap.SugaredLogger-based query logging in database/db.go's Log method,
// re-expressed as a standalone observer so it composes with MetricsAdapter
// and TracingAdapter via Compose.
type JSONLogger struct {
	w io.Writer
}

// NewJSONLogger returns a JSONLogger writing to w.
func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{w: w}
}

type jsonQueryLine struct {
	QueryID      string    `json:"query_id"`
	ConnectionID string    `json:"connection_id"`
	Dialect      string    `json:"dialect"`
	Operation    string    `json:"operation"`
	SQL          string    `json:"sql"`
	ParamsLen    int       `json:"params_len"`
	StartedAt    time.Time `json:"started_at"`
	DurationMs   float64   `json:"duration_ms"`
	RowsAffected int64     `json:"rows_affected"`
	Attempts     uint64    `json:"attempts"`
	Succeeded    bool      `json:"succeeded"`
	Error        string    `json:"error,omitempty"`
}

// OnQuery implements Observer.
func (l *JSONLogger) OnQuery(o QueryObservation) {
	line := jsonQueryLine{
		QueryID:      o.QueryID.String(),
		ConnectionID: o.ConnectionID.String(),
		Dialect:      o.Dialect,
		Operation:    o.Operation,
		SQL:          o.SQL,
		ParamsLen:    o.ParamsLen,
		StartedAt:    o.StartedAt,
		DurationMs:   float64(o.Duration.Microseconds()) / 1000,
		RowsAffected: o.RowsAffected,
		Attempts:     o.TotalAttempts,
		Succeeded:    o.Succeeded,
	}
	if o.Err != nil {
		line.Error = o.Err.Error()
	}

	enc := json.NewEncoder(l.w)
	_ = enc.Encode(line)
}

// OnTransactionBegin implements Observer.
func (l *JSONLogger) OnTransactionBegin(txID types.UUID) {
	enc := json.NewEncoder(l.w)
	_ = enc.Encode(map[string]string{"event": "transaction_begin", "transaction_id": txID.String()})
}

// OnTransactionEnd implements Observer.
func (l *JSONLogger) OnTransactionEnd(txID types.UUID, committed bool) {
	enc := json.NewEncoder(l.w)
	_ = enc.Encode(map[string]interface{}{
		"event":          "transaction_end",
		"transaction_id": txID.String(),
		"committed":      committed,
	})
}

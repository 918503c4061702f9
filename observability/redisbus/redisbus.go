// Package redisbus publishes executor ExecutionEvents onto a Redis Stream
// and tails them back, grounded on the teacher's redis.Client XADD usage
// and its XReadUntilResult retry loop in redis/client.go.
package redisbus

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/AnirudhB3000/buildaquery/observability"
	"github.com/AnirudhB3000/buildaquery/redis"
	"github.com/AnirudhB3000/buildaquery/types"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultStreamKey is the Redis Stream key Sink writes to and Tail reads
// from when the caller does not set one explicitly.
const DefaultStreamKey = "buildaquery:events"

// DefaultMaxLen bounds the stream with an approximate MAXLEN trim so the
// bus does not grow unbounded on a long-lived connection.
const DefaultMaxLen = 100_000

// Sink is an observability.Observer that publishes every query and
// transaction event onto a Redis Stream via XADD.
type Sink struct {
	client    *redis.Client
	streamKey string
	maxLen    int64
}

// NewSink returns a Sink publishing to streamKey on client. An empty
// streamKey falls back to DefaultStreamKey.
func NewSink(client *redis.Client, streamKey string) *Sink {
	if streamKey == "" {
		streamKey = DefaultStreamKey
	}
	return &Sink{client: client, streamKey: streamKey, maxLen: DefaultMaxLen}
}

// WithMaxLen overrides the approximate MAXLEN trim applied on every XADD.
// A value <= 0 disables trimming.
func (s *Sink) WithMaxLen(maxLen int64) *Sink {
	s.maxLen = maxLen
	return s
}

type wireEvent struct {
	Kind          string  `json:"kind"` // "query", "transaction_begin" or "transaction_end"
	QueryID       string  `json:"query_id,omitempty"`
	ConnectionID  string  `json:"connection_id,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Dialect       string  `json:"dialect,omitempty"`
	Operation     string  `json:"operation,omitempty"`
	SQL           string  `json:"sql,omitempty"`
	ParamsLen     int     `json:"params_len,omitempty"`
	StartedAtUnix int64   `json:"started_at_unix,omitempty"`
	DurationMs    float64 `json:"duration_ms,omitempty"`
	RowsAffected  int64   `json:"rows_affected,omitempty"`
	Attempts      uint64  `json:"attempts,omitempty"`
	Succeeded     bool    `json:"succeeded,omitempty"`
	Error         string  `json:"error,omitempty"`
	Committed     bool    `json:"committed,omitempty"`
}

func (s *Sink) publish(ctx context.Context, w wireEvent) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return errors.Wrap(err, "marshal event for redis stream")
	}

	args := &goredis.XAddArgs{
		Stream: s.streamKey,
		Values: map[string]interface{}{"event": string(payload)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	return s.client.XAdd(ctx, args).Err()
}

// OnQuery implements observability.Observer. Publish errors are swallowed
// since observers must not block or fail the operation they are observing;
// callers that need delivery guarantees should wrap Sink and surface
// publish errors through their own side channel.
func (s *Sink) OnQuery(o observability.QueryObservation) {
	w := wireEvent{
		Kind:          "query",
		QueryID:       o.QueryID.String(),
		ConnectionID:  o.ConnectionID.String(),
		Dialect:       o.Dialect,
		Operation:     o.Operation,
		SQL:           o.SQL,
		ParamsLen:     o.ParamsLen,
		StartedAtUnix: o.StartedAt.Unix(),
		DurationMs:    float64(o.Duration.Microseconds()) / 1000,
		RowsAffected:  o.RowsAffected,
		Attempts:      o.TotalAttempts,
		Succeeded:     o.Succeeded,
	}
	if o.TransactionID != nil {
		w.TransactionID = o.TransactionID.String()
	}
	if o.Err != nil {
		w.Error = o.Err.Error()
	}

	_ = s.publish(context.Background(), w)
}

// OnTransactionBegin implements observability.Observer.
func (s *Sink) OnTransactionBegin(txID types.UUID) {
	_ = s.publish(context.Background(), wireEvent{Kind: "transaction_begin", TransactionID: txID.String()})
}

// OnTransactionEnd implements observability.Observer.
func (s *Sink) OnTransactionEnd(txID types.UUID, committed bool) {
	_ = s.publish(context.Background(), wireEvent{Kind: "transaction_end", TransactionID: txID.String(), Committed: committed})
}

var _ observability.Observer = (*Sink)(nil)

// Event is one decoded entry read back from the stream by Tail.
type Event struct {
	ID      string
	Kind    string
	Payload wireEvent
}

// Tail reads events from streamKey starting after lastID ("0" to start from
// the beginning, "$" to start from new entries only), delivering each
// decoded Event on the returned channel. It calls client.XReadUntilResult
// in a loop, so it blocks between reads the same way the teacher's stream
// readers do, and stops once ctx is done or ch is closed by the caller
// dropping out.
func Tail(ctx context.Context, client *redis.Client, streamKey, lastID string) (<-chan Event, <-chan error) {
	if streamKey == "" {
		streamKey = DefaultStreamKey
	}
	if lastID == "" {
		lastID = "0"
	}

	events := make(chan Event)
	errs := make(chan error, 1)

	go func() {
		defer close(events)

		cursor := lastID
		for {
			result, err := client.XReadUntilResult(ctx, &goredis.XReadArgs{
				Streams: redis.Streams{streamKey: cursor}.Option(),
				Count:   64,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case errs <- err:
				default:
				}
				return
			}

			for _, stream := range result {
				for _, msg := range stream.Messages {
					raw, _ := msg.Values["event"].(string)

					var w wireEvent
					if jsonErr := json.Unmarshal([]byte(raw), &w); jsonErr != nil {
						continue
					}

					select {
					case events <- Event{ID: msg.ID, Kind: w.Kind, Payload: w}:
						cursor = msg.ID
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return events, errs
}

// ParseStreamOffset parses a Redis Stream entry ID's millisecond timestamp
// component, useful for diagnostics when correlating bus entries with
// executor-side QueryObservation.StartedAt values.
func ParseStreamOffset(id string) (int64, error) {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			return strconv.ParseInt(id[:i], 10, 64)
		}
	}
	return strconv.ParseInt(id, 10, 64)
}

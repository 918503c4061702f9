package executor

import (
	"context"
	"time"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/observability"
	"github.com/AnirudhB3000/buildaquery/retry"
)

// retryObservation wraps a retry attempt as a QueryObservation so it can
// flow through the same Observer.OnQuery callback as a finished query,
// rather than requiring a third Observer method just for retry events.
func retryObservation(dialect string, attempt uint64, delay time.Duration, err error) observability.QueryObservation {
	return observability.QueryObservation{
		ExecutionEvent: observability.ExecutionEvent{
			Dialect:      dialect,
			Operation:    "retry",
			Duration:     delay,
			Err:          err,
			RetryAttempt: attempt,
			StartedAt:    time.Now(),
		},
		TotalAttempts: attempt,
		Succeeded:     false,
	}
}

// ExecuteWithRetry runs Execute under the Executor's configured retry
// policy, retrying only on a dberrors.TransientError.
func (e *Executor) ExecuteWithRetry(ctx context.Context, q interface{}) ([]Row, int64, error) {
	var rows []Row
	var affected int64

	err := retry.Do(ctx, func(ctx context.Context) error {
		r, a, err := e.Execute(ctx, q)
		rows, affected = r, a
		return err
	}, e.retryPolicy, e.retryHooks())

	return rows, affected, err
}

// FetchAllWithRetry runs FetchAll under the Executor's configured retry policy.
func (e *Executor) FetchAllWithRetry(ctx context.Context, q interface{}) ([]Row, error) {
	rows, _, err := e.ExecuteWithRetry(ctx, q)
	return rows, err
}

// FetchOneWithRetry runs FetchOne under the Executor's configured retry policy.
func (e *Executor) FetchOneWithRetry(ctx context.Context, q interface{}) (Row, error) {
	rows, err := e.FetchAllWithRetry(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// ExecuteManyWithRetry runs ExecuteMany under the Executor's configured
// retry policy.
func (e *Executor) ExecuteManyWithRetry(ctx context.Context, sqlText string, paramSets [][]ast.Value) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		return e.ExecuteMany(ctx, sqlText, paramSets)
	}, e.retryPolicy, e.retryHooks())
}

// ExecuteRawWithRetry runs ExecuteRaw under the Executor's configured retry
// policy.
func (e *Executor) ExecuteRawWithRetry(ctx context.Context, sqlText string, params ...ast.Value) ([]Row, int64, error) {
	var rows []Row
	var affected int64

	err := retry.Do(ctx, func(ctx context.Context) error {
		r, a, err := e.ExecuteRaw(ctx, sqlText, params...)
		rows, affected = r, a
		return err
	}, e.retryPolicy, e.retryHooks())

	return rows, affected, err
}

// retryHooks wires retry.Do's OnRetry callback to an OnQuery observation
// with Operation "retry" (see retryObservation) when an observer is configured.
func (e *Executor) retryHooks() retry.Hooks {
	return retry.Hooks{
		OnRetry: func(attempt uint64, delay time.Duration, err error) {
			if e.observer == nil {
				return
			}
			e.observer.OnQuery(retryObservation(e.dialect.Name(), attempt, delay, err))
		},
	}
}

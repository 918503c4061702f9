package executor

import (
	"context"
	"database/sql"
	"time"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/compiler"
	"github.com/AnirudhB3000/buildaquery/observability"
	"github.com/AnirudhB3000/buildaquery/types"
)

// Row is one result row, column name to driver-scanned value.
type Row map[string]interface{}

func scanRows(rows *sql.Rows) ([]Row, error) {
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// Execute runs q (a compiler.CompiledQuery or an ast.Statement, auto-compiled
// via the Executor's dialect), returning any rows for SELECT/RETURNING
// statements and the affected-row count for plain DML.
func (e *Executor) Execute(ctx context.Context, q interface{}) ([]Row, int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeLocked(ctx, q)
}

func (e *Executor) executeLocked(ctx context.Context, q interface{}) (rows []Row, affected int64, err error) {
	if cErr := e.checkOpen(); cErr != nil {
		return nil, 0, cErr
	}

	cq, rowsReturning, err := e.compile(q)
	if err != nil {
		return nil, 0, err
	}

	conn, _, releaseConn, err := e.boundConn(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer releaseConn()

	started := time.Now()
	operation := "execute"
	queryID := newUUID()

	defer func() {
		e.observeQuery(observability.ExecutionEvent{
			QueryID:       queryID,
			Dialect:       e.dialect.Name(),
			Operation:     operation,
			SQL:           cq.SQL,
			ParamsLen:     len(cq.Params),
			StartedAt:     started,
			Duration:      time.Since(started),
			RowsAffected:  affected,
			Err:           err,
			ConnectionID:  queryID,
			TransactionID: e.currentTxID(),
		})
	}()

	args := bindArgs(cq.Params)

	if rowsReturning {
		r, qErr := conn.QueryContext(ctx, cq.SQL, args...)
		if qErr != nil {
			err = e.normalize(operation, qErr)
			return nil, 0, err
		}
		rows, err = scanRows(r)
		if err != nil {
			err = e.normalize(operation, err)
			return nil, 0, err
		}
		affected = int64(len(rows))

		if err2 := e.autoCommitIfNeeded(ctx); err2 != nil {
			err = err2
			return rows, affected, err
		}
		return rows, affected, nil
	}

	result, execErr := conn.ExecContext(ctx, cq.SQL, args...)
	if execErr != nil {
		err = e.normalize(operation, execErr)
		return nil, 0, err
	}
	affected, _ = result.RowsAffected()

	if err2 := e.autoCommitIfNeeded(ctx); err2 != nil {
		err = err2
		return nil, affected, err
	}

	return nil, affected, nil
}

// FetchAll runs q and returns every resulting row.
func (e *Executor) FetchAll(ctx context.Context, q interface{}) ([]Row, error) {
	rows, _, err := e.Execute(ctx, q)
	return rows, err
}

// FetchOne runs q and returns its first row, or nil if it produced none.
func (e *Executor) FetchOne(ctx context.Context, q interface{}) (Row, error) {
	rows, _, err := e.Execute(ctx, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// ExecuteMany runs sql once per entry in paramSets, in order, within whatever
// connection/transaction context is currently bound. No rows are returned.
func (e *Executor) ExecuteMany(ctx context.Context, sqlText string, paramSets [][]ast.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}

	conn, _, releaseConn, err := e.boundConn(ctx)
	if err != nil {
		return err
	}
	defer releaseConn()

	started := time.Now()
	queryID := newUUID()
	var lastErr error
	var totalAffected int64

	defer func() {
		e.observeQuery(observability.ExecutionEvent{
			QueryID:       queryID,
			Dialect:       e.dialect.Name(),
			Operation:     "execute_many",
			SQL:           sqlText,
			ParamsLen:     len(paramSets),
			StartedAt:     started,
			Duration:      time.Since(started),
			RowsAffected:  totalAffected,
			Err:           lastErr,
			ConnectionID:  queryID,
			TransactionID: e.currentTxID(),
		})
	}()

	for _, params := range paramSets {
		result, execErr := conn.ExecContext(ctx, sqlText, bindArgs(params)...)
		if execErr != nil {
			lastErr = e.normalize("execute_many", execErr)
			return lastErr
		}
		if n, rErr := result.RowsAffected(); rErr == nil {
			totalAffected += n
		}
	}

	return e.autoCommitIfNeeded(ctx)
}

// ExecuteRaw runs sqlText verbatim with the given (already dialect-encoded)
// params, bypassing the compiler entirely.
func (e *Executor) ExecuteRaw(ctx context.Context, sqlText string, params ...ast.Value) ([]Row, int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executeLocked(ctx, compiler.CompiledQuery{SQL: sqlText, Params: params})
}

func (e *Executor) currentTxID() *types.UUID {
	if e.activeTx == nil {
		return nil
	}
	id := e.activeTx.txID
	return &id
}

func (e *Executor) observeQuery(ev observability.ExecutionEvent) {
	if e.observer == nil {
		return
	}
	e.observer.OnQuery(observability.QueryObservation{
		ExecutionEvent: ev,
		TotalAttempts:  1,
		Succeeded:      ev.Err == nil,
	})
}

// autoCommitIfNeeded implements the auto-commit semantics at the statement
// boundary described for close/release connection-sourcing modes: outside
// an explicit transaction, every non-transactional operation is already
// committed by the driver's own autocommit default, so this is a no-op
// placeholder for drivers that need an explicit commit call. Kept as its
// own method so a future driver adapter that disables autocommit at the
// connection level has a single seam to hook into.
func (e *Executor) autoCommitIfNeeded(ctx context.Context) error {
	return nil
}

package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AnirudhB3000/buildaquery/types"
	"github.com/pkg/errors"
)

// Begin starts a transaction, pinning whatever connection the sourcing
// rules resolve to for the transaction's lifetime — a begin never uses
// close mode, since the transaction itself owns the connection until
// commit or rollback finalizes it.
func (e *Executor) Begin(ctx context.Context, isolation string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	if e.activeTx != nil {
		return ErrTransactionActive
	}

	conn, mode, releaseConn, err := e.boundConn(ctx)
	if err != nil {
		return err
	}

	// A connection that can itself start a transaction (*sql.DB, *sql.Conn)
	// is the common case; a connection that already is one (nested savepoint
	// territory reached through some other wrapping) is the fallback.
	var tx TxConn

	if beginner, ok := conn.(interface {
		BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	}); ok {
		opts := &sql.TxOptions{}
		if isolation != "" {
			opts.Isolation = isolationFromName(isolation)
		}
		started, beginErr := beginner.BeginTx(ctx, opts)
		if beginErr != nil {
			releaseConn()
			return errors.Wrap(beginErr, "begin transaction")
		}
		tx = started
	} else if existing, ok := conn.(TxConn); ok {
		tx = existing
	} else {
		releaseConn()
		return errors.New("executor: bound connection does not support transactions")
	}

	e.activeTx = &transaction{
		conn:      tx,
		mode:      mode,
		txID:      newUUID(),
		startedAt: time.Now(),
	}
	e.txRelease = releaseConn

	e.observeTxBegin(e.activeTx.txID)

	return nil
}

func isolationFromName(name string) sql.IsolationLevel {
	switch name {
	case "read_uncommitted":
		return sql.LevelReadUncommitted
	case "read_committed":
		return sql.LevelReadCommitted
	case "repeatable_read":
		return sql.LevelRepeatableRead
	case "serializable":
		return sql.LevelSerializable
	default:
		return sql.LevelDefault
	}
}

// Commit commits the active transaction, restores the release mode and
// transitions back to Idle.
func (e *Executor) Commit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	if e.activeTx == nil {
		return ErrNoTransaction
	}

	txID := e.activeTx.txID
	err := e.activeTx.conn.Commit()
	e.finalizeTx()
	e.observeTxEnd(txID, err == nil)

	if err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Rollback rolls back the active transaction and transitions back to Idle.
func (e *Executor) Rollback(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	if e.activeTx == nil {
		return ErrNoTransaction
	}

	txID := e.activeTx.txID
	err := e.activeTx.conn.Rollback()
	e.finalizeTx()
	e.observeTxEnd(txID, false)

	if err != nil {
		return errors.Wrap(err, "rollback transaction")
	}
	return nil
}

func (e *Executor) finalizeTx() {
	if e.txRelease != nil {
		e.txRelease()
		e.txRelease = nil
	}
	e.activeTx = nil
}

// Savepoint issues a SAVEPOINT statement for name; valid only within an
// active transaction.
func (e *Executor) Savepoint(ctx context.Context, name string) error {
	return e.txStatement(ctx, fmt.Sprintf("SAVEPOINT %s", name))
}

// RollbackToSavepoint issues a ROLLBACK TO SAVEPOINT statement for name.
func (e *Executor) RollbackToSavepoint(ctx context.Context, name string) error {
	return e.txStatement(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT %s", name))
}

// ReleaseSavepoint issues a RELEASE SAVEPOINT statement for name.
func (e *Executor) ReleaseSavepoint(ctx context.Context, name string) error {
	return e.txStatement(ctx, fmt.Sprintf("RELEASE SAVEPOINT %s", name))
}

func (e *Executor) txStatement(ctx context.Context, sqlText string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen(); err != nil {
		return err
	}
	if e.activeTx == nil {
		return ErrNoTransaction
	}

	_, err := e.activeTx.conn.ExecContext(ctx, sqlText)
	if err != nil {
		return e.normalize("savepoint", err)
	}
	return nil
}

// Close idempotently closes the Executor. If a transaction is active it is
// rolled back first, swallowing any rollback error, before the Executor is
// marked closed.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	if e.activeTx != nil {
		txID := e.activeTx.txID
		_ = e.activeTx.conn.Rollback()
		e.finalizeTx()
		e.observeTxEnd(txID, false)
	}

	e.closed = true
	return nil
}

func (e *Executor) observeTxBegin(txID types.UUID) {
	if e.observer != nil {
		e.observer.OnTransactionBegin(txID)
	}
}

func (e *Executor) observeTxEnd(txID types.UUID, committed bool) {
	if e.observer != nil {
		e.observer.OnTransactionEnd(txID, committed)
	}
}

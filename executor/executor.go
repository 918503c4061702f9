// Package executor runs CompiledQuery values against a real connection,
// owning the connection/transaction lifecycle, auto-commit semantics and
// error normalization that the compiler itself stays free of. Grounded on
// the teacher's database.DB: a thin wrapper adding retry, logging and
// transaction helpers around a stdlib-compatible connection, generalized
// here from one sqlx.DB per process to one Executor per logical unit of
// work, with connection sourcing pluggable instead of always being
// db.DB itself.
package executor

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/compiler"
	"github.com/AnirudhB3000/buildaquery/dberrors"
	"github.com/AnirudhB3000/buildaquery/observability"
	"github.com/AnirudhB3000/buildaquery/retry"
	"github.com/AnirudhB3000/buildaquery/types"
	"github.com/pkg/errors"
	"github.com/google/uuid"
)

// Conn is the subset of *sql.DB / *sql.Tx / *sql.Conn the executor needs.
// database/sql's own types already satisfy it, so callers never have to
// write an adapter.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// TxConn is a Conn that can also begin nested savepoints and be committed
// or rolled back. *sql.Tx satisfies it.
type TxConn interface {
	Conn
	Commit() error
	Rollback() error
}

// releaseMode mirrors spec.md's connection-sourcing priority order: how the
// connection backing the current operation (or transaction) must be
// released once the operation (or transaction) is done.
type releaseMode int

const (
	modeBorrow releaseMode = iota
	modeRelease
	modeClose
)

// AcquireFunc opens or checks out a connection for one operation (or for
// the lifetime of a transaction). ReleaseFunc returns it.
type AcquireFunc func(ctx context.Context) (Conn, error)
type ReleaseFunc func(conn Conn)

// Opener opens a brand-new driver connection, used only when neither an
// owned connection nor an acquire hook is configured.
type Opener func(ctx context.Context) (Conn, error)

// transaction is the executor's "active transaction" record. BeginTx already
// takes the connection out of autocommit for the lifetime of the *sql.Tx, so
// there is no separate autocommit flag to save and restore here.
type transaction struct {
	conn      TxConn
	mode      releaseMode
	txID      types.UUID
	startedAt time.Time
}

// Executor is the runtime side of the query pipeline: it owns connection
// lifecycle, transaction state, and error normalization, and hands every
// driver call through the configured retry policy and observers.
type Executor struct {
	name    string
	dialect compiler.Dialect

	mu sync.Mutex

	ownedConn Conn
	acquire   AcquireFunc
	release   ReleaseFunc
	opener    Opener

	activeTx  *transaction
	txRelease func()
	closed    bool

	retryPolicy retry.Policy
	observer    observability.Observer
}

// Option configures an Executor at construction time.
type Option func(*Executor)

// WithOwnedConn binds a single connection the Executor borrows for every
// operation and never releases or closes itself.
func WithOwnedConn(conn Conn) Option {
	return func(e *Executor) { e.ownedConn = conn }
}

// WithAcquireHook configures a pool-style acquire/release pair; the
// Executor calls acquire before each non-transactional operation and
// release right after (or, while a transaction is active, once at commit
// or rollback).
func WithAcquireHook(acquire AcquireFunc, release ReleaseFunc) Option {
	return func(e *Executor) {
		e.acquire = acquire
		e.release = release
	}
}

// WithOpener configures a connection factory used as the last-resort
// sourcing step: a brand-new connection is opened per operation (or per
// transaction) and closed when done.
func WithOpener(opener Opener) Option {
	return func(e *Executor) { e.opener = opener }
}

// WithRetryPolicy sets the policy applied by every *_with_retry operation.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(e *Executor) { e.retryPolicy = policy }
}

// WithObserver attaches an observability.Observer; use observability.Compose
// to attach more than one.
func WithObserver(observer observability.Observer) Option {
	return func(e *Executor) { e.observer = observer }
}

// New returns a closed-until-used Executor for dialect, identified by name
// in observability events.
func New(name string, dialect compiler.Dialect, opts ...Option) *Executor {
	e := &Executor{name: name, dialect: dialect}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ErrClosed is returned by every operation but Close once the Executor has
// been closed.
var ErrClosed = errors.New("executor: closed")

// ErrNoConnectionSource is returned when no owned connection, acquire hook
// or opener is configured.
var ErrNoConnectionSource = errors.New("executor: no connection source configured")

// ErrTransactionActive is returned by Begin when a transaction is already
// active.
var ErrTransactionActive = errors.New("executor: transaction already active")

// ErrNoTransaction is returned by Commit/Rollback/savepoint operations when
// no transaction is active.
var ErrNoTransaction = errors.New("executor: no active transaction")

func (e *Executor) checkOpen() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

// boundConn resolves the connection backing the next operation, per the
// sourcing priority order: active transaction, then owned connection, then
// acquire hook, then opener. It returns the resolved Conn, the release mode
// governing how to release it, and a release func to call once the caller
// is done (a no-op for modeBorrow).
func (e *Executor) boundConn(ctx context.Context) (Conn, releaseMode, func(), error) {
	if e.activeTx != nil {
		return e.activeTx.conn, modeBorrow, func() {}, nil
	}
	if e.ownedConn != nil {
		return e.ownedConn, modeBorrow, func() {}, nil
	}
	if e.acquire != nil {
		conn, err := e.acquire(ctx)
		if err != nil {
			return nil, modeRelease, func() {}, errors.Wrap(err, "acquire connection")
		}
		return conn, modeRelease, func() { e.release(conn) }, nil
	}
	if e.opener != nil {
		conn, err := e.opener(ctx)
		if err != nil {
			return nil, modeClose, func() {}, errors.Wrap(err, "open connection")
		}
		closer, _ := conn.(interface{ Close() error })
		return conn, modeClose, func() {
			if closer != nil {
				_ = closer.Close()
			}
		}, nil
	}
	return nil, modeBorrow, func() {}, ErrNoConnectionSource
}

func (e *Executor) normalize(operation string, err error) error {
	if err == nil {
		return nil
	}
	return dberrors.Normalize(e.dialect.Name(), operation, err)
}

// compile lowers q to a CompiledQuery and reports whether executing it
// returns rows. The rows-returning decision is made from the ast.Statement
// itself, before compilation, so a Subquery expression embedded in a DML
// statement's WHERE clause can never be mistaken for the statement's own
// result set. CompiledQuery values (ExecuteRaw/ExecuteMany callers, who have
// no AST to inspect) fall back to checking the statement's leading keyword.
func (e *Executor) compile(q interface{}) (compiler.CompiledQuery, bool, error) {
	switch v := q.(type) {
	case compiler.CompiledQuery:
		return v, rowsReturningPrefix(v.SQL), nil
	case ast.Statement:
		cq, err := e.dialect.Compile(v)
		if err != nil {
			return compiler.CompiledQuery{}, false, err
		}
		return cq, statementRowsReturning(v), nil
	default:
		return compiler.CompiledQuery{}, false, errors.Errorf("executor: %T is neither a CompiledQuery nor an ast.Statement", q)
	}
}

func bindArgs(params []ast.Value) []interface{} {
	args := make([]interface{}, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}

func newUUID() types.UUID {
	return types.UUID{UUID: uuid.New()}
}

// statementRowsReturning reports whether executing stmt produces a result
// set: every Select or set operation does, and an Insert/Update/Delete does
// only when it carries a Returning clause. It switches on stmt's concrete
// type rather than inspecting compiled SQL text, so a Subquery nested in a
// DML statement's WHERE clause never flips the result.
func statementRowsReturning(stmt ast.Statement) bool {
	switch v := stmt.(type) {
	case *ast.Select:
		return true
	case *ast.SetOp:
		return true
	case *ast.Insert:
		return v.Returning != nil
	case *ast.Update:
		return v.Returning != nil
	case *ast.Delete:
		return v.Returning != nil
	default:
		return false
	}
}

// rowsReturningPrefix is the fallback for ExecuteRaw/ExecuteMany callers, who
// hand the executor bare SQL text with no AST to inspect. It looks only at
// the statement's leading keyword, never anywhere inside the text, so a
// subquery inside a hand-written DML statement's WHERE clause still can't
// trigger it.
func rowsReturningPrefix(sqlText string) bool {
	trimmed := strings.TrimLeft(sqlText, " \t\r\n(")
	return hasFoldPrefix(trimmed, "select") || hasFoldPrefix(trimmed, "with")
}

func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

package executor_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/compiler/sqlite"
	"github.com/AnirudhB3000/buildaquery/executor"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE widgets (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)

	return db
}

func newTestExecutor(t *testing.T, db *sql.DB) *executor.Executor {
	t.Helper()
	return executor.New("test", sqlite.New(), executor.WithOwnedConn(db))
}

func TestExecutor_ExecuteInsertAndSelect(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	insert := ast.NewInsert(ast.NewTable("widgets")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("gizmo")))

	_, affected, err := ex.Execute(ctx, insert.Build())
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	sel := ast.NewSelect(ast.NewColumn("name")).From(ast.NewTable("widgets"))
	rows, err := ex.FetchAll(ctx, sel.Build())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "gizmo", rows[0]["name"])
}

func TestExecutor_UpdateWithSubqueryInWhereReportsRealRowCount(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	for i, name := range []string{"gizmo", "gadget"} {
		insert := ast.NewInsert(ast.NewTable("widgets")).
			Columns("id", "name").
			Values(ast.NewLiteral(ast.Int64(int64(i+1))), ast.NewLiteral(ast.Text(name)))
		_, _, err := ex.Execute(ctx, insert.Build())
		require.NoError(t, err)
	}

	flagged := ast.NewSelect(ast.NewColumn("id")).
		From(ast.NewTable("widgets")).
		Where(ast.In{Expr: ast.NewColumn("name"), Values: []ast.Expression{ast.NewLiteral(ast.Text("gizmo"))}}).
		Build()

	update := ast.NewUpdate(ast.NewTable("widgets")).
		Set("name", ast.NewLiteral(ast.Text("renamed"))).
		Where(ast.In{Expr: ast.NewColumn("id"), Values: []ast.Expression{ast.Subquery{Select: flagged}}}).
		Build()

	rows, affected, err := ex.Execute(ctx, update)
	require.NoError(t, err)
	require.Nil(t, rows)
	require.EqualValues(t, 1, affected)
}

func TestExecutor_TransactionCommit(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	require.NoError(t, ex.Begin(ctx, ""))

	insert := ast.NewInsert(ast.NewTable("widgets")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(2)), ast.NewLiteral(ast.Text("sprocket")))
	_, _, err := ex.Execute(ctx, insert.Build())
	require.NoError(t, err)

	require.NoError(t, ex.Commit(ctx))

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM widgets WHERE id = 2`).Scan(&name))
	require.Equal(t, "sprocket", name)
}

func TestExecutor_TransactionRollback(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	require.NoError(t, ex.Begin(ctx, ""))

	insert := ast.NewInsert(ast.NewTable("widgets")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(3)), ast.NewLiteral(ast.Text("cog")))
	_, _, err := ex.Execute(ctx, insert.Build())
	require.NoError(t, err)

	require.NoError(t, ex.Rollback(ctx))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM widgets WHERE id = 3`).Scan(&count))
	require.Equal(t, 0, count)
}

func TestExecutor_DoubleBeginFails(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	require.NoError(t, ex.Begin(ctx, ""))
	require.ErrorIs(t, ex.Begin(ctx, ""), executor.ErrTransactionActive)
	require.NoError(t, ex.Rollback(ctx))
}

func TestExecutor_CommitWithoutTransactionFails(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	require.ErrorIs(t, ex.Commit(context.Background()), executor.ErrNoTransaction)
}

func TestExecutor_CloseIsIdempotentAndRollsBackOpenTransaction(t *testing.T) {
	db := openTestDB(t)
	ex := newTestExecutor(t, db)
	ctx := context.Background()

	require.NoError(t, ex.Begin(ctx, ""))
	require.NoError(t, ex.Close(ctx))
	require.NoError(t, ex.Close(ctx))

	require.ErrorIs(t, ex.Commit(ctx), executor.ErrClosed)
}

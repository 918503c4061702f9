package cockroachdb

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileStringLiteralWrappedInCast(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("name")).
		From(ast.NewTable("users")).
		Where(ast.BinaryOp{Left: ast.NewColumn("name"), Op: "=", Right: ast.NewLiteral(ast.Text("ann"))}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM users WHERE (name = CAST(%s AS STRING))", q.SQL)
	assert.Equal(t, []ast.Value{ast.Text("ann")}, q.Params)
}

func TestCompileIntLiteralNotWrapped(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("id")).
		From(ast.NewTable("users")).
		Where(ast.BinaryOp{Left: ast.NewColumn("age"), Op: ">", Right: ast.NewLiteral(ast.Int64(18))}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM users WHERE (age > %s)", q.SQL)
}

func TestCompileUpsertUppercaseExcluded(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("ann"))).
		OnConflict(&ast.Upsert{
			ConflictTarget: &ast.ConflictTarget{Columns: []string{"id"}},
			UpdateColumns:  []string{"name"},
		}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO users (id, name) VALUES (%s, CAST(%s AS STRING)) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name",
		q.SQL)
}

func TestCompileDropTableCascade(t *testing.T) {
	stmt := &ast.DropTable{Table: ast.NewTable("users"), Cascade: true}
	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE users CASCADE", q.SQL)
}

package oracle

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileColonPlaceholders(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("name")).
		From(ast.NewTable("users")).
		Where(ast.BinaryOp{Left: ast.NewColumn("age"), Op: ">", Right: ast.NewLiteral(ast.Int64(18))}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT name FROM users WHERE (age > :1)", q.SQL)
}

func TestCompileFetchFirst(t *testing.T) {
	stmt := ast.NewSelect(ast.Star{}).
		From(ast.NewTable("users")).
		OrderBy(ast.NewColumn("score"), ast.Desc).
		LimitOffset(10, 0).
		Build()
	stmt.Offset = nil

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users ORDER BY score DESC FETCH FIRST 10 ROWS ONLY", q.SQL)
}

func TestCompileSetOpMinus(t *testing.T) {
	left := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("a")).Build()
	right := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("b")).Build()
	stmt := &ast.SetOp{Left: left, Right: right, Op: ast.SetOpExcept}

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM a MINUS SELECT id FROM b", q.SQL)
}

func TestCompileMergeUpsert(t *testing.T) {
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
		"MERGE INTO users USING (SELECT :1 AS id, :2 AS name FROM dual) src ON (users.id = src.id) "+
			"WHEN MATCHED THEN UPDATE SET name = src.name "+
			"WHEN NOT MATCHED THEN INSERT (id, name) VALUES (src.id, src.name)",
		q.SQL)
}

func TestCompileInsertAllMultiRow(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Rows(
			[]ast.Expression{ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("ann"))},
			[]ast.Expression{ast.NewLiteral(ast.Int64(2)), ast.NewLiteral(ast.Text("bo"))},
		).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT ALL INTO users (id, name) VALUES (:1, :2) INTO users (id, name) VALUES (:3, :4) SELECT 1 FROM dual",
		q.SQL)
}

package mssql

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileNativeTop(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("name")).
		From(ast.NewTable("users")).
		Top(10, nil, ast.Asc).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 10 name FROM users", q.SQL)
}

func TestCompileLockRejected(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("name")).
		From(ast.NewTable("users")).
		LockRows(ast.LockForUpdate).
		Build()

	_, err := New().Compile(stmt)
	assert.Error(t, err)
}

func TestCompileOutputInserted(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("ann"))).
		Returning(ast.NewColumn("id")).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO users (id, name) OUTPUT INSERTED.id VALUES (?, ?)", q.SQL)
}

func TestCompileOutputDeleted(t *testing.T) {
	stmt := ast.NewDelete(ast.NewTable("users")).
		Where(ast.BinaryOp{Left: ast.NewColumn("id"), Op: "=", Right: ast.NewLiteral(ast.Int64(1))}).
		Returning(ast.Star{}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users OUTPUT DELETED.* WHERE (id = ?)", q.SQL)
}

func TestCompileIntersectAllRejected(t *testing.T) {
	left := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("a")).Build()
	right := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("b")).Build()
	stmt := &ast.SetOp{Left: left, Right: right, Op: ast.SetOpIntersect, All: true}

	_, err := New().Compile(stmt)
	assert.Error(t, err)
}

func TestCompileDropIndexRequiresTable(t *testing.T) {
	stmt := &ast.DropIndex{Name: "idx_users_name"}
	_, err := New().Compile(stmt)
	assert.Error(t, err)
}

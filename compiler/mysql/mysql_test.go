package mysql

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileOnDuplicateKeyUpdate(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("ann"))).
		OnConflict(&ast.Upsert{UpdateColumns: []string{"name"}}).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO users (id, name) VALUES (%s, %s) ON DUPLICATE KEY UPDATE name = VALUES(name)",
		q.SQL)
}

func TestCompileSetOpIntersectRejected(t *testing.T) {
	left := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("a")).Build()
	right := ast.NewSelect(ast.NewColumn("id")).From(ast.NewTable("b")).Build()
	stmt := &ast.SetOp{Left: left, Right: right, Op: ast.SetOpIntersect}

	_, err := New().Compile(stmt)
	assert.Error(t, err)
}

func TestCompileDropIndexRequiresTable(t *testing.T) {
	stmt := &ast.DropIndex{Name: "idx_users_name"}
	_, err := New().Compile(stmt)
	assert.Error(t, err)
}

func TestCompileDropIndexOnTable(t *testing.T) {
	stmt := &ast.DropIndex{Name: "idx_users_name", Table: ast.NewTable("users")}
	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "DROP INDEX idx_users_name ON users", q.SQL)
}

package mariadb

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileOnDuplicateKeyUpdateWithReturning(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Values(ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("ann"))).
		OnConflict(&ast.Upsert{UpdateColumns: []string{"name"}}).
		Returning(ast.NewColumn("id")).
		Build()

	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO users (id, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name) RETURNING id",
		q.SQL)
}

func TestCompileDropTableCascade(t *testing.T) {
	stmt := &ast.DropTable{Table: ast.NewTable("users"), Cascade: true}
	q, err := New().Compile(stmt)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE users CASCADE", q.SQL)
}

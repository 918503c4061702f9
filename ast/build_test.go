package ast_test

import (
	"testing"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	stmt := ast.NewSelect(ast.NewColumn("name")).
		From(ast.NewTable("users")).
		Where(ast.BinaryOp{Left: ast.NewColumn("age"), Op: ">", Right: ast.NewLiteral(ast.Int64(25))}).
		Build()

	require.NotNil(t, stmt.Where)
	assert.Equal(t, ast.KindSelect, stmt.Kind())
	assert.Equal(t, "users", stmt.From.(*ast.Table).Name)
	assert.Len(t, stmt.Columns, 1)
}

func TestInsertBuilderRows(t *testing.T) {
	stmt := ast.NewInsert(ast.NewTable("users")).
		Columns("id", "name").
		Rows(
			[]ast.Expression{ast.NewLiteral(ast.Int64(1)), ast.NewLiteral(ast.Text("a"))},
			[]ast.Expression{ast.NewLiteral(ast.Int64(2)), ast.NewLiteral(ast.Text("b"))},
		).
		Build()

	assert.Nil(t, stmt.Values)
	assert.Len(t, stmt.Rows, 2)
	assert.Equal(t, ast.KindInsert, stmt.Kind())
}

func TestUpsertMutualExclusionIsCallerResponsibility(t *testing.T) {
	// The AST itself does not reject an invalid Upsert; §3.1's mutual
	// exclusion invariant is enforced by the compiler (see compiler package
	// tests), since the rule is structural-per-dialect, not structural-always.
	up := &ast.Upsert{DoNothing: true, UpdateColumns: []string{"email"}}
	assert.True(t, up.DoNothing)
	assert.NotEmpty(t, up.UpdateColumns)
}

// Package visitor defines the dispatch-by-kind traversal shared by every
// dialect compiler: one switch per node family, a result type parameter,
// and a generic fallback that always errors rather than silently matching
// nothing.
package visitor

import (
	"fmt"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// UnsupportedKindError is returned by the generic fallback of a Visitor
// dispatch when a node's Kind has no registered handler. It is the Go
// re-expression of the source visitor pattern's generic_visit, which always
// raised rather than falling through.
type UnsupportedKindError struct {
	Kind ast.Kind
	Node ast.Node
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported node kind %d (%T)", e.Kind, e.Node)
}

// UnsupportedKind builds the error a Visitor implementation's default case
// must return.
func UnsupportedKind(n ast.Node) error {
	return &UnsupportedKindError{Kind: n.Kind(), Node: n}
}

// ExprVisitor dispatches over Expression nodes.
type ExprVisitor[R any] interface {
	VisitLiteral(ast.Literal) (R, error)
	VisitColumn(ast.Column) (R, error)
	VisitStar(ast.Star) (R, error)
	VisitBinaryOp(ast.BinaryOp) (R, error)
	VisitUnaryOp(ast.UnaryOp) (R, error)
	VisitFunctionCall(ast.FunctionCall) (R, error)
	VisitCast(ast.Cast) (R, error)
	VisitAlias(ast.Alias) (R, error)
	VisitCase(ast.Case) (R, error)
	VisitIn(ast.In) (R, error)
	VisitBetween(ast.Between) (R, error)
	VisitSubquery(ast.Subquery) (R, error)
}

// WalkExpr dispatches expr to the matching ExprVisitor method. The default
// case (reached only for a Kind that isn't one of the twelve Expression
// variants) returns UnsupportedKind — it is unreachable for any Expression
// produced by the ast package's own constructors, but guards against a
// caller-defined Expression that doesn't exist.
func WalkExpr[R any](v ExprVisitor[R], expr ast.Expression) (R, error) {
	switch n := expr.(type) {
	case ast.Literal:
		return v.VisitLiteral(n)
	case ast.Column:
		return v.VisitColumn(n)
	case ast.Star:
		return v.VisitStar(n)
	case ast.BinaryOp:
		return v.VisitBinaryOp(n)
	case ast.UnaryOp:
		return v.VisitUnaryOp(n)
	case ast.FunctionCall:
		return v.VisitFunctionCall(n)
	case ast.Cast:
		return v.VisitCast(n)
	case ast.Alias:
		return v.VisitAlias(n)
	case ast.Case:
		return v.VisitCase(n)
	case ast.In:
		return v.VisitIn(n)
	case ast.Between:
		return v.VisitBetween(n)
	case ast.Subquery:
		return v.VisitSubquery(n)
	default:
		var zero R
		return zero, UnsupportedKind(expr)
	}
}

// StatementVisitor dispatches over Statement nodes.
type StatementVisitor[R any] interface {
	VisitSelect(*ast.Select) (R, error)
	VisitInsert(*ast.Insert) (R, error)
	VisitUpdate(*ast.Update) (R, error)
	VisitDelete(*ast.Delete) (R, error)
	VisitSetOp(*ast.SetOp) (R, error)
	VisitCreateTable(*ast.CreateTable) (R, error)
	VisitDropTable(*ast.DropTable) (R, error)
	VisitCreateIndex(*ast.CreateIndex) (R, error)
	VisitDropIndex(*ast.DropIndex) (R, error)
	VisitAlterTable(*ast.AlterTable) (R, error)
}

// WalkStatement dispatches stmt to the matching StatementVisitor method.
func WalkStatement[R any](v StatementVisitor[R], stmt ast.Statement) (R, error) {
	switch n := stmt.(type) {
	case *ast.Select:
		return v.VisitSelect(n)
	case *ast.Insert:
		return v.VisitInsert(n)
	case *ast.Update:
		return v.VisitUpdate(n)
	case *ast.Delete:
		return v.VisitDelete(n)
	case *ast.SetOp:
		return v.VisitSetOp(n)
	case *ast.CreateTable:
		return v.VisitCreateTable(n)
	case *ast.DropTable:
		return v.VisitDropTable(n)
	case *ast.CreateIndex:
		return v.VisitCreateIndex(n)
	case *ast.DropIndex:
		return v.VisitDropIndex(n)
	case *ast.AlterTable:
		return v.VisitAlterTable(n)
	default:
		var zero R
		return zero, UnsupportedKind(stmt)
	}
}

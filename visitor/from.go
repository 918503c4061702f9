package visitor

import "github.com/AnirudhB3000/buildaquery/ast"

// FromVisitor dispatches over the FROM-position clause chain, which is
// either a single Table or a left-recursive Join of Tables.
type FromVisitor[R any] interface {
	VisitTable(ast.Table) (R, error)
	VisitJoin(ast.Join) (R, error)
}

// WalkFrom dispatches a FROM-clause node (ast.Select.From) to the matching
// FromVisitor method.
func WalkFrom[R any](v FromVisitor[R], from ast.Clause) (R, error) {
	switch n := from.(type) {
	case *ast.Table:
		return v.VisitTable(*n)
	case ast.Table:
		return v.VisitTable(n)
	case *ast.Join:
		return v.VisitJoin(*n)
	case ast.Join:
		return v.VisitJoin(n)
	default:
		var zero R
		return zero, UnsupportedKind(from)
	}
}

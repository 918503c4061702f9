package compiler

import (
	"fmt"
	"strings"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// Base is the shared machinery every dialect compiler embeds: the
// per-call parameter accumulator, placeholder rendering, and the
// expression/FROM-chain emission that does not vary across dialects.
// Everything that does vary (TOP/LIMIT, upsert strategy, set-op support,
// RETURNING vs OUTPUT, DDL CASCADE) stays in each dialect package.
type Base struct {
	DialectName string
	Style       PlaceholderStyle

	// WrapStringLiteral, if true, renders a Text literal's placeholder as
	// CAST(<placeholder> AS STRING) instead of the bare placeholder —
	// CockroachDB's type-inference disambiguation (spec.md §4.2).
	WrapStringLiteral bool

	// ExcludedIdent is the identifier an ON CONFLICT DO UPDATE clause uses
	// to reference the proposed row. Postgres/CockroachDB use "EXCLUDED";
	// SQLite uses lowercase "excluded".
	ExcludedIdent string

	// SelectFn compiles a nested *ast.Select (used for Subquery and CTEs).
	// Each dialect sets this to its own compileSelect method so that a
	// subquery is emitted with the same TOP/LIMIT/lock rules as a
	// top-level SELECT.
	SelectFn func(*ast.Select) (string, error)

	params []ast.Value
}

// Reset clears the parameter accumulator. Every Dialect.Compile call must
// call Reset before walking the root, per spec.md §4.2.
func (b *Base) Reset() { b.params = nil }

// Params returns the accumulated, ordered parameter list.
func (b *Base) Params() []ast.Value { return b.params }

// Bind appends v to the parameter list and returns the placeholder text
// for its position — wrapped per WrapStringLiteral if v is a Text value.
func (b *Base) Bind(v ast.Value) string {
	b.params = append(b.params, v)
	ph := RenderPlaceholder(b.Style, len(b.params))

	if b.WrapStringLiteral {
		if _, isText := v.(ast.Text); isText {
			return fmt.Sprintf("CAST(%s AS STRING)", ph)
		}
	}

	return ph
}

func (b *Base) excludedIdent() string {
	if b.ExcludedIdent != "" {
		return b.ExcludedIdent
	}
	return "EXCLUDED"
}

// CompileExpr emits expr as a SQL fragment, binding any Literal it
// encounters. It never inlines a literal value into the returned text.
func (b *Base) CompileExpr(expr ast.Expression) (string, error) {
	switch n := expr.(type) {
	case ast.Literal:
		return b.Bind(n.V), nil
	case ast.Column:
		if n.Table != "" {
			return n.Table + "." + n.Name, nil
		}
		return n.Name, nil
	case ast.Star:
		if n.Table != "" {
			return n.Table + ".*", nil
		}
		return "*", nil
	case ast.BinaryOp:
		left, err := b.CompileExpr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := b.CompileExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, n.Op, right), nil
	case ast.UnaryOp:
		operand, err := b.CompileExpr(n.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", n.Op, operand), nil
	case ast.FunctionCall:
		return b.compileFunctionCall(n)
	case ast.Cast:
		inner, err := b.CompileExpr(n.Expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(%s AS %s)", inner, n.Type), nil
	case ast.Alias:
		inner, err := b.CompileExpr(n.Expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s AS %s", inner, n.Name), nil
	case ast.Case:
		return b.compileCase(n)
	case ast.In:
		return b.compileIn(n)
	case ast.Between:
		return b.compileBetween(n)
	case ast.Subquery:
		return b.compileSubquery(n)
	default:
		return "", NewCompileError(b.DialectName, fmt.Sprintf("%T", expr), "unsupported expression node kind")
	}
}

func (b *Base) compileFunctionCall(n ast.FunctionCall) (string, error) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		s, err := b.CompileExpr(a)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	call := fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	if n.Over == nil {
		return call, nil
	}

	over, err := b.compileOver(*n.Over)
	if err != nil {
		return "", err
	}
	return call + " OVER (" + over + ")", nil
}

func (b *Base) compileOver(over ast.Over) (string, error) {
	var parts []string

	if len(over.PartitionBy) > 0 {
		exprs := make([]string, len(over.PartitionBy))
		for i, e := range over.PartitionBy {
			s, err := b.CompileExpr(e)
			if err != nil {
				return "", err
			}
			exprs[i] = s
		}
		parts = append(parts, "PARTITION BY "+strings.Join(exprs, ", "))
	}

	if len(over.OrderBy) > 0 {
		s, err := b.compileOrderByList(over.OrderBy)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ORDER BY "+s)
	}

	return strings.Join(parts, " "), nil
}

func (b *Base) compileCase(n ast.Case) (string, error) {
	var sb strings.Builder
	sb.WriteString("CASE")

	for _, wt := range n.Whens {
		cond, err := b.CompileExpr(wt.Cond)
		if err != nil {
			return "", err
		}
		result, err := b.CompileExpr(wt.Result)
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf(" WHEN %s THEN %s", cond, result))
	}

	if n.Else != nil {
		elseExpr, err := b.CompileExpr(n.Else)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ELSE " + elseExpr)
	}

	sb.WriteString(" END")
	return sb.String(), nil
}

func (b *Base) compileIn(n ast.In) (string, error) {
	expr, err := b.CompileExpr(n.Expr)
	if err != nil {
		return "", err
	}

	values := make([]string, len(n.Values))
	for i, v := range n.Values {
		s, err := b.CompileExpr(v)
		if err != nil {
			return "", err
		}
		values[i] = s
	}

	op := "IN"
	if n.Negated {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", expr, op, strings.Join(values, ", ")), nil
}

func (b *Base) compileBetween(n ast.Between) (string, error) {
	expr, err := b.CompileExpr(n.Expr)
	if err != nil {
		return "", err
	}
	low, err := b.CompileExpr(n.Low)
	if err != nil {
		return "", err
	}
	high, err := b.CompileExpr(n.High)
	if err != nil {
		return "", err
	}

	op := "BETWEEN"
	if n.Negated {
		op = "NOT BETWEEN"
	}
	return fmt.Sprintf("%s %s %s AND %s", expr, op, low, high), nil
}

func (b *Base) compileSubquery(n ast.Subquery) (string, error) {
	if b.SelectFn == nil {
		return "", NewCompileError(b.DialectName, "Subquery", "dialect compiler did not wire SelectFn")
	}

	inner, err := b.SelectFn(n.Select)
	if err != nil {
		return "", err
	}

	sql := "(" + inner + ")"
	if n.Alias != "" {
		sql += " AS " + n.Alias
	}
	return sql, nil
}

// CompileOrderByList is the exported form of compileOrderByList, used by
// dialect packages when emitting a top-level ORDER BY clause.
func (b *Base) CompileOrderByList(list []ast.OrderBy) (string, error) {
	return b.compileOrderByList(list)
}

func (b *Base) compileOrderByList(list []ast.OrderBy) (string, error) {
	parts := make([]string, len(list))
	for i, ob := range list {
		s, err := b.CompileExpr(ob.Expr)
		if err != nil {
			return "", err
		}
		if ob.Dir == ast.Desc {
			s += " DESC"
		} else {
			s += " ASC"
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

// CompileFrom emits a FROM-position clause chain (*ast.Table or *ast.Join,
// recursively).
func (b *Base) CompileFrom(from ast.Clause) (string, error) {
	switch n := from.(type) {
	case *ast.Table:
		return b.compileTable(*n), nil
	case *ast.Join:
		left, err := b.CompileFrom(n.Left)
		if err != nil {
			return "", err
		}
		right := b.compileTable(*n.Right)
		on, err := b.CompileExpr(n.On)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s ON %s", left, joinKeyword(n.Type), right, on), nil
	default:
		return "", NewCompileError(b.DialectName, fmt.Sprintf("%T", from), "unsupported FROM clause node kind")
	}
}

func (b *Base) compileTable(t ast.Table) string {
	name := t.Name
	if t.Schema != "" {
		name = t.Schema + "." + name
	}
	if t.Alias != "" {
		name += " AS " + t.Alias
	}
	return name
}

func joinKeyword(t ast.JoinType) string {
	switch t {
	case ast.JoinLeft:
		return "LEFT JOIN"
	case ast.JoinRight:
		return "RIGHT JOIN"
	case ast.JoinFull:
		return "FULL JOIN"
	default:
		return "JOIN"
	}
}

// CompileWhere emits a trailing "WHERE <cond>" fragment, or "" if w is nil.
func (b *Base) CompileWhere(w *ast.Where) (string, error) {
	if w == nil {
		return "", nil
	}
	cond, err := b.CompileExpr(w.Cond)
	if err != nil {
		return "", err
	}
	return " WHERE " + cond, nil
}

// SetOpKeyword renders the SQL keyword for a set operation, honoring the
// Oracle MINUS spelling of EXCEPT.
func SetOpKeyword(op ast.SetOpKind, useMinus bool) string {
	switch op {
	case ast.SetOpIntersect:
		return "INTERSECT"
	case ast.SetOpExcept:
		if useMinus {
			return "MINUS"
		}
		return "EXCEPT"
	default:
		return "UNION"
	}
}

package compiler

import (
	"fmt"
	"strings"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// SelectOptions captures the per-dialect SELECT emission deltas described
// in spec.md §4.2's dialect feature matrix. Everything else about SELECT
// emission (clause order, WHERE/GROUP BY/HAVING/ORDER BY, set-op shape) is
// identical across dialects and lives in CompileSelectCore itself.
type SelectOptions struct {
	// NativeTop renders "SELECT TOP n" inline (SQL Server) instead of
	// translating top.count to a trailing LIMIT.
	NativeTop bool

	// UseFetchFirst renders the row cap as a trailing
	// "FETCH FIRST n ROWS ONLY" (Oracle) instead of "LIMIT n [OFFSET m]".
	UseFetchFirst bool

	// RejectLock fails compilation if the statement carries a Lock clause
	// (SQL Server does not support trailing FOR UPDATE/FOR SHARE).
	RejectLock bool
}

// CompileSelectCore emits the SELECT statement described by spec.md §4.2's
// strict emission order:
//
//	WITH ctes -> SELECT [DISTINCT] [TOP n] select_list -> FROM -> JOIN ... ->
//	WHERE -> GROUP BY -> HAVING -> ORDER BY -> LIMIT/OFFSET or
//	fetch-first -> lock_clause
func (b *Base) CompileSelectCore(sel *ast.Select, opts SelectOptions) (string, error) {
	if err := ValidateSelectTopLimit(b.DialectName, sel); err != nil {
		return "", err
	}
	if err := ValidateLock(b.DialectName, sel.Lock); err != nil {
		return "", err
	}
	if opts.RejectLock && sel.Lock != nil {
		return "", NewCompileError(b.DialectName, "Lock", "dialect does not support a trailing lock clause")
	}

	orderBy := sel.OrderBy
	if sel.Top != nil && sel.Top.OnExpr != nil && len(orderBy) == 0 {
		orderBy = []ast.OrderBy{{Expr: sel.Top.OnExpr, Dir: sel.Top.Dir}}
	}

	var sb strings.Builder

	if len(sel.Ctes) > 0 {
		withSQL, err := b.compileCtes(sel.Ctes)
		if err != nil {
			return "", err
		}
		sb.WriteString(withSQL)
	}

	sb.WriteString("SELECT ")
	if sel.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if opts.NativeTop && sel.Top != nil {
		sb.WriteString(fmt.Sprintf("TOP %d ", sel.Top.Count))
	}

	cols, err := b.compileExprList(sel.Columns)
	if err != nil {
		return "", err
	}
	sb.WriteString(cols)

	if sel.From != nil {
		from, err := b.CompileFrom(sel.From)
		if err != nil {
			return "", err
		}
		sb.WriteString(" FROM " + from)
	}

	where, err := b.CompileWhere(sel.Where)
	if err != nil {
		return "", err
	}
	sb.WriteString(where)

	if sel.GroupBy != nil {
		gb, err := b.compileExprList(sel.GroupBy.Exprs)
		if err != nil {
			return "", err
		}
		sb.WriteString(" GROUP BY " + gb)
	}

	if sel.Having != nil {
		h, err := b.CompileExpr(sel.Having.Cond)
		if err != nil {
			return "", err
		}
		sb.WriteString(" HAVING " + h)
	}

	if len(orderBy) > 0 {
		ob, err := b.CompileOrderByList(orderBy)
		if err != nil {
			return "", err
		}
		sb.WriteString(" ORDER BY " + ob)
	}

	if !opts.NativeTop {
		count := sel.Limit
		offset := sel.Offset
		if sel.Top != nil {
			c := sel.Top.Count
			count = &c
		}

		if count != nil {
			if opts.UseFetchFirst {
				if offset != nil && *offset > 0 {
					sb.WriteString(fmt.Sprintf(" OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", *offset, *count))
				} else {
					sb.WriteString(fmt.Sprintf(" FETCH FIRST %d ROWS ONLY", *count))
				}
			} else {
				sb.WriteString(fmt.Sprintf(" LIMIT %d", *count))
				if offset != nil {
					sb.WriteString(fmt.Sprintf(" OFFSET %d", *offset))
				}
			}
		} else if offset != nil {
			sb.WriteString(fmt.Sprintf(" OFFSET %d", *offset))
		}
	}

	if sel.Lock != nil {
		sb.WriteString(" " + b.compileLock(*sel.Lock))
	}

	return sb.String(), nil
}

func (b *Base) compileLock(l ast.Lock) string {
	var s string
	if l.Mode == ast.LockForShare {
		s = "FOR SHARE"
	} else {
		s = "FOR UPDATE"
	}
	if l.NoWait {
		s += " NOWAIT"
	} else if l.SkipLocked {
		s += " SKIP LOCKED"
	}
	return s
}

func (b *Base) compileExprList(exprs []ast.Expression) (string, error) {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		s, err := b.CompileExpr(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}

func (b *Base) compileCtes(ctes []ast.Cte) (string, error) {
	parts := make([]string, len(ctes))
	for i, cte := range ctes {
		if b.SelectFn == nil {
			return "", NewCompileError(b.DialectName, "Cte", "dialect compiler did not wire SelectFn")
		}
		inner, err := b.SelectFn(cte.Select)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("%s AS (%s)", cte.Name, inner)
	}
	return "WITH " + strings.Join(parts, ", ") + " ", nil
}

// CompileSetOp emits a UNION/INTERSECT/EXCEPT statement. Per spec.md §9's
// resolved open question, output is unparenthesized for every dialect.
func (b *Base) CompileSetOp(op *ast.SetOp, compileStatement func(ast.Statement) (string, error), useMinus bool) (string, error) {
	left, err := compileStatement(op.Left)
	if err != nil {
		return "", err
	}
	right, err := compileStatement(op.Right)
	if err != nil {
		return "", err
	}

	kw := SetOpKeyword(op.Op, useMinus)
	if op.All {
		kw += " ALL"
	}

	return fmt.Sprintf("%s %s %s", left, kw, right), nil
}

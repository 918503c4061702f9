package compiler

import (
	"fmt"
	"strings"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// CompileValuesRow emits one "(v1, v2, ...)" VALUES tuple.
func (b *Base) CompileValuesRow(row []ast.Expression) (string, error) {
	parts := make([]string, len(row))
	for i, e := range row {
		s, err := b.CompileExpr(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// CompileAssignments emits a comma-separated "col = expr" list for an
// UPDATE SET clause or an upsert's DO UPDATE SET clause.
func (b *Base) CompileAssignments(sets []ast.Assignment) (string, error) {
	parts := make([]string, len(sets))
	for i, s := range sets {
		v, err := b.CompileExpr(s.Value)
		if err != nil {
			return "", err
		}
		parts[i] = fmt.Sprintf("%s = %s", s.Column, v)
	}
	return strings.Join(parts, ", "), nil
}

// CompileReturning emits a trailing " RETURNING e1, e2" fragment, or "" if
// r is nil.
func (b *Base) CompileReturning(r *ast.Returning) (string, error) {
	if r == nil {
		return "", nil
	}

	parts := make([]string, len(r.Exprs))
	for i, e := range r.Exprs {
		s, err := b.CompileExpr(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return " RETURNING " + strings.Join(parts, ", "), nil
}

// UpsertOnConflictSetClause emits "c1 = EXCLUDED.c1, c2 = EXCLUDED.c2, ..."
// for dialects using the ON CONFLICT / ON CONFLICT ... DO UPDATE strategy.
func (b *Base) UpsertOnConflictSetClause(columns []string) string {
	parts := make([]string, len(columns))
	excluded := b.excludedIdent()
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = %s.%s", c, excluded, c)
	}
	return strings.Join(parts, ", ")
}

// UpsertOnDuplicateKeySetClause emits "c1 = VALUES(c1), c2 = VALUES(c2)"
// for the MySQL/MariaDB ON DUPLICATE KEY UPDATE strategy.
func (b *Base) UpsertOnDuplicateKeySetClause(columns []string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	return strings.Join(parts, ", ")
}

// ValidateUpsert enforces spec.md §3.1's upsert strategy-discipline
// invariant: do_nothing and a nonempty update-columns list are mutually
// exclusive.
func ValidateUpsert(dialect string, up *ast.Upsert) error {
	if up == nil {
		return nil
	}
	if up.DoNothing && len(up.UpdateColumns) > 0 {
		return NewCompileError(dialect, "Upsert", "do_nothing and update_columns are mutually exclusive")
	}
	return nil
}

// ValidateInsertRows enforces spec.md §3.1's "Insert carries exactly one of
// values or rows" invariant, plus row-width consistency against columns.
func ValidateInsertRows(dialect string, ins *ast.Insert) error {
	hasValues := len(ins.Values) > 0
	hasRows := len(ins.Rows) > 0

	if hasValues == hasRows {
		return NewCompileError(dialect, "Insert", "must provide exactly one of values or rows")
	}

	if hasRows && len(ins.Columns) > 0 {
		for _, row := range ins.Rows {
			if len(row) != len(ins.Columns) {
				return NewCompileError(dialect, "Insert", "row width must match columns width")
			}
		}
	}

	return nil
}

// ValidateSelectTopLimit enforces spec.md §3.1's "Select.top and
// Select.limit/offset are mutually exclusive" invariant.
func ValidateSelectTopLimit(dialect string, sel *ast.Select) error {
	if sel.Top != nil && (sel.Limit != nil || sel.Offset != nil) {
		return NewCompileError(dialect, "Select", "top and limit/offset are mutually exclusive")
	}
	return nil
}

// ValidateLock enforces spec.md §3.1's "Lock.nowait and Lock.skip_locked
// are mutually exclusive" invariant.
func ValidateLock(dialect string, lock *ast.Lock) error {
	if lock == nil {
		return nil
	}
	if lock.NoWait && lock.SkipLocked {
		return NewCompileError(dialect, "Lock", "nowait and skip_locked are mutually exclusive")
	}
	return nil
}

// ValidateForeignKey enforces spec.md §3.1's foreign-key column-arity
// invariant.
func ValidateForeignKey(dialect string, fk *ast.ForeignKey) error {
	if len(fk.Columns) == 0 || len(fk.ReferenceColumns) == 0 {
		return NewCompileError(dialect, "ForeignKey", "columns and reference_columns must be nonempty")
	}
	if len(fk.Columns) != len(fk.ReferenceColumns) {
		return NewCompileError(dialect, "ForeignKey", "columns and reference_columns must be equal length")
	}
	return nil
}

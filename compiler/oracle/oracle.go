// Package oracle compiles the query AST into Oracle-flavored SQL.
package oracle

import (
	"fmt"
	"strings"

	"github.com/AnirudhB3000/buildaquery/ast"
	"github.com/AnirudhB3000/buildaquery/compiler"
	"github.com/AnirudhB3000/buildaquery/visitor"
)

type dialect struct {
	*compiler.Base
}

// New returns an Oracle dialect compiler.
func New() compiler.Dialect {
	d := &dialect{Base: &compiler.Base{
		DialectName: "oracle",
		Style:       compiler.PlaceholderColonN,
	}}
	d.SelectFn = d.compileSelect
	return d
}

func (d *dialect) Name() string { return "oracle" }

func (d *dialect) Compile(stmt ast.Statement) (compiler.CompiledQuery, error) {
	d.Reset()
	sql, err := visitor.WalkStatement[string](d, stmt)
	if err != nil {
		return compiler.CompiledQuery{}, err
	}
	return compiler.CompiledQuery{SQL: sql, Params: d.Params()}, nil
}

func (d *dialect) VisitSelect(s *ast.Select) (string, error) { return d.compileSelect(s) }
func (d *dialect) VisitInsert(s *ast.Insert) (string, error) { return d.compileInsert(s) }
func (d *dialect) VisitUpdate(s *ast.Update) (string, error) { return d.compileUpdate(s) }
func (d *dialect) VisitDelete(s *ast.Delete) (string, error) { return d.compileDelete(s) }
func (d *dialect) VisitSetOp(s *ast.SetOp) (string, error)   { return d.compileSetOp(s) }
func (d *dialect) VisitCreateTable(s *ast.CreateTable) (string, error) {
	return d.compileCreateTable(s)
}
func (d *dialect) VisitDropTable(s *ast.DropTable) (string, error) { return d.compileDropTable(s) }
func (d *dialect) VisitCreateIndex(s *ast.CreateIndex) (string, error) {
	return d.compileCreateIndex(s)
}
func (d *dialect) VisitDropIndex(s *ast.DropIndex) (string, error)   { return d.compileDropIndex(s) }
func (d *dialect) VisitAlterTable(s *ast.AlterTable) (string, error) { return d.compileAlterTable(s) }

// compileSelect uses FETCH FIRST n ROWS ONLY (Oracle 12c+) for the row cap
// instead of rewriting to a ROWNUM-filtered subquery: it composes cleanly
// with ORDER BY and OFFSET without an extra nesting level.
func (d *dialect) compileSelect(s *ast.Select) (string, error) {
	return d.CompileSelectCore(s, compiler.SelectOptions{UseFetchFirst: true})
}

func (d *dialect) compileInsert(ins *ast.Insert) (string, error) {
	if err := compiler.ValidateInsertRows(d.DialectName, ins); err != nil {
		return "", err
	}
	if err := compiler.ValidateUpsert(d.DialectName, ins.Upsert); err != nil {
		return "", err
	}

	rows := ins.Rows
	if len(ins.Values) > 0 {
		rows = [][]ast.Expression{ins.Values}
	}

	if ins.Upsert != nil {
		return d.compileMerge(ins, rows)
	}

	var sb strings.Builder
	if len(rows) > 1 {
		sb.WriteString("INSERT ALL ")
		for _, row := range rows {
			cols, vals, err := d.compileInsertColumnsAndRow(ins, row)
			if err != nil {
				return "", err
			}
			sb.WriteString(fmt.Sprintf("INTO %s%s VALUES %s ", ins.Table.Name, cols, vals))
		}
		sb.WriteString("SELECT 1 FROM dual")
		return sb.String(), nil
	}

	cols, vals, err := d.compileInsertColumnsAndRow(ins, rows[0])
	if err != nil {
		return "", err
	}
	sb.WriteString(fmt.Sprintf("INSERT INTO %s%s VALUES %s", ins.Table.Name, cols, vals))

	ret, err := d.CompileReturning(ins.Returning)
	if err != nil {
		return "", err
	}
	sb.WriteString(ret)

	return sb.String(), nil
}

func (d *dialect) compileInsertColumnsAndRow(ins *ast.Insert, row []ast.Expression) (cols, vals string, err error) {
	if len(ins.Columns) > 0 {
		cols = " (" + strings.Join(ins.Columns, ", ") + ")"
	}
	vals, err = d.CompileValuesRow(row)
	return cols, vals, err
}

// compileMerge emits a MERGE INTO ... USING dual ... WHEN MATCHED / WHEN NOT
// MATCHED statement for an upsert insert, Oracle's idiom for ON CONFLICT.
func (d *dialect) compileMerge(ins *ast.Insert, rows [][]ast.Expression) (string, error) {
	if len(rows) != 1 {
		return "", compiler.NewCompileError(d.DialectName, "Insert", "MERGE upsert supports exactly one row")
	}
	row := rows[0]
	if len(ins.Columns) != len(row) {
		return "", compiler.NewCompileError(d.DialectName, "Insert", "columns and row width must match for upsert")
	}

	target := ins.Table.Name
	up := ins.Upsert

	selectParts := make([]string, len(ins.Columns))
	for i, c := range ins.Columns {
		v, err := d.CompileExpr(row[i])
		if err != nil {
			return "", err
		}
		selectParts[i] = fmt.Sprintf("%s AS %s", v, c)
	}

	conflictCols := up.UpdateColumns
	if up.ConflictTarget != nil {
		conflictCols = up.ConflictTarget.Columns
	}
	onParts := make([]string, len(conflictCols))
	for i, c := range conflictCols {
		onParts[i] = fmt.Sprintf("%s.%s = src.%s", target, c, c)
	}

	sql := fmt.Sprintf("MERGE INTO %s USING (SELECT %s FROM dual) src ON (%s)",
		target, strings.Join(selectParts, ", "), strings.Join(onParts, " AND "))

	if !up.DoNothing {
		sets := make([]string, len(up.UpdateColumns))
		for i, c := range up.UpdateColumns {
			sets[i] = fmt.Sprintf("%s = src.%s", c, c)
		}
		sql += " WHEN MATCHED THEN UPDATE SET " + strings.Join(sets, ", ")
	}

	insCols := make([]string, len(ins.Columns))
	insVals := make([]string, len(ins.Columns))
	for i, c := range ins.Columns {
		insCols[i] = c
		insVals[i] = "src." + c
	}
	sql += fmt.Sprintf(" WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		strings.Join(insCols, ", "), strings.Join(insVals, ", "))

	return sql, nil
}

func (d *dialect) compileUpdate(u *ast.Update) (string, error) {
	sets, err := d.CompileAssignments(u.Sets)
	if err != nil {
		return "", err
	}
	where, err := d.CompileWhere(u.Where)
	if err != nil {
		return "", err
	}
	ret, err := d.CompileReturning(u.Returning)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("UPDATE %s SET %s%s%s", u.Table.Name, sets, where, ret), nil
}

func (d *dialect) compileDelete(del *ast.Delete) (string, error) {
	where, err := d.CompileWhere(del.Where)
	if err != nil {
		return "", err
	}
	ret, err := d.CompileReturning(del.Returning)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s%s%s", del.Table.Name, where, ret), nil
}

func (d *dialect) compileSetOp(op *ast.SetOp) (string, error) {
	return d.CompileSetOp(op, d.compileStatementString, true)
}

func (d *dialect) compileStatementString(stmt ast.Statement) (string, error) {
	return visitor.WalkStatement[string](d, stmt)
}

// compileCreateTable never emits IF NOT EXISTS: Oracle's DDL has no such
// clause; callers needing idempotent creation query USER_TABLES first.
func (d *dialect) compileCreateTable(ct *ast.CreateTable) (string, error) {
	body, err := d.CompileCreateTableBody(ct)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE TABLE %s %s", ct.Table.Name, body), nil
}

// compileDropTable never emits CASCADE; Oracle's equivalent is
// "DROP TABLE t CASCADE CONSTRAINTS", applied only when the caller knows
// dependent constraints exist, so it is out of scope for a generic flag.
func (d *dialect) compileDropTable(dt *ast.DropTable) (string, error) {
	return fmt.Sprintf("DROP TABLE %s", dt.Table.Name), nil
}

func (d *dialect) compileCreateIndex(ci *ast.CreateIndex) (string, error) {
	unique := ""
	if ci.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, ci.Name, ci.Table.Name, strings.Join(ci.Columns, ", ")), nil
}

func (d *dialect) compileDropIndex(di *ast.DropIndex) (string, error) {
	return fmt.Sprintf("DROP INDEX %s", di.Name), nil
}

func (d *dialect) compileAlterTable(at *ast.AlterTable) (string, error) {
	actions := make([]string, len(at.Actions))
	for i, a := range at.Actions {
		s, err := d.CompileAlterAction(a)
		if err != nil {
			return "", err
		}
		actions[i] = s
	}
	return fmt.Sprintf("ALTER TABLE %s %s", at.Table.Name, strings.Join(actions, ", ")), nil
}

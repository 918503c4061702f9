// Package mssql compiles the query AST into SQL Server-flavored SQL.
package mssql

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

// New returns a SQL Server dialect compiler.
func New() compiler.Dialect {
	d := &dialect{Base: &compiler.Base{
		DialectName: "mssql",
		Style:       compiler.PlaceholderQuestion,
	}}
	d.SelectFn = d.compileSelect
	return d
}

func (d *dialect) Name() string { return "mssql" }

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

func (d *dialect) compileSelect(s *ast.Select) (string, error) {
	return d.CompileSelectCore(s, compiler.SelectOptions{NativeTop: true, RejectLock: true})
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
	sb.WriteString("INSERT INTO ")
	sb.WriteString(ins.Table.Name)
	if len(ins.Columns) > 0 {
		sb.WriteString(" (" + strings.Join(ins.Columns, ", ") + ")")
	}

	if ins.Returning != nil {
		sb.WriteString(" " + outputClause("INSERTED", ins.Returning))
	}

	sb.WriteString(" VALUES ")
	rowParts := make([]string, len(rows))
	for i, row := range rows {
		s, err := d.CompileValuesRow(row)
		if err != nil {
			return "", err
		}
		rowParts[i] = s
	}
	sb.WriteString(strings.Join(rowParts, ", "))

	return sb.String(), nil
}

// compileMerge emits a MERGE INTO ... USING (VALUES ...) AS src statement,
// SQL Server's idiom for an upsert insert.
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

	values, err := d.CompileValuesRow(row)
	if err != nil {
		return "", err
	}

	conflictCols := up.UpdateColumns
	if up.ConflictTarget != nil {
		conflictCols = up.ConflictTarget.Columns
	}
	onParts := make([]string, len(conflictCols))
	for i, c := range conflictCols {
		onParts[i] = fmt.Sprintf("%s.%s = src.%s", target, c, c)
	}

	sql := fmt.Sprintf("MERGE INTO %s USING (VALUES %s) AS src (%s) ON (%s)",
		target, values, strings.Join(ins.Columns, ", "), strings.Join(onParts, " AND "))

	if !up.DoNothing {
		sets := make([]string, len(up.UpdateColumns))
		for i, c := range up.UpdateColumns {
			sets[i] = fmt.Sprintf("%s = src.%s", c, c)
		}
		sql += " WHEN MATCHED THEN UPDATE SET " + strings.Join(sets, ", ")
	}

	insVals := make([]string, len(ins.Columns))
	for i, c := range ins.Columns {
		insVals[i] = "src." + c
	}
	sql += fmt.Sprintf(" WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		strings.Join(ins.Columns, ", "), strings.Join(insVals, ", "))

	return sql, nil
}

func (d *dialect) compileUpdate(u *ast.Update) (string, error) {
	sets, err := d.CompileAssignments(u.Sets)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("UPDATE %s SET %s", u.Table.Name, sets))
	if u.Returning != nil {
		sb.WriteString(" " + outputClause("INSERTED", u.Returning))
	}

	where, err := d.CompileWhere(u.Where)
	if err != nil {
		return "", err
	}
	sb.WriteString(where)

	return sb.String(), nil
}

func (d *dialect) compileDelete(del *ast.Delete) (string, error) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM " + del.Table.Name)
	if del.Returning != nil {
		sb.WriteString(" " + outputClause("DELETED", del.Returning))
	}

	where, err := d.CompileWhere(del.Where)
	if err != nil {
		return "", err
	}
	sb.WriteString(where)

	return sb.String(), nil
}

func outputClause(prefix string, r *ast.Returning) string {
	parts := make([]string, len(r.Exprs))
	for i, e := range r.Exprs {
		if s, ok := e.(ast.Star); ok && s.Table == "" {
			parts[i] = prefix + ".*"
			continue
		}
		if c, ok := e.(ast.Column); ok {
			parts[i] = prefix + "." + c.Name
			continue
		}
		parts[i] = prefix + ".*"
	}
	return "OUTPUT " + strings.Join(parts, ", ")
}

func (d *dialect) compileSetOp(op *ast.SetOp) (string, error) {
	if op.All && op.Op != ast.SetOpUnion {
		return "", compiler.NewCompileError(d.DialectName, "SetOp", "SQL Server does not support INTERSECT ALL / EXCEPT ALL")
	}
	return d.CompileSetOp(op, d.compileStatementString, false)
}

func (d *dialect) compileStatementString(stmt ast.Statement) (string, error) {
	return visitor.WalkStatement[string](d, stmt)
}

// compileCreateTable guards against re-creation with an existence check
// against sys.tables, since SQL Server's CREATE TABLE has no IF NOT EXISTS
// clause of its own.
func (d *dialect) compileCreateTable(ct *ast.CreateTable) (string, error) {
	body, err := d.CompileCreateTableBody(ct)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf("CREATE TABLE %s %s", ct.Table.Name, body)
	if !ct.IfNotExists {
		return stmt, nil
	}
	return fmt.Sprintf("IF NOT EXISTS (SELECT * FROM sys.tables WHERE name = '%s') %s", ct.Table.Name, stmt), nil
}

// compileDropTable never emits CASCADE: SQL Server has no DROP TABLE
// CASCADE; dependent constraints must be dropped explicitly beforehand.
func (d *dialect) compileDropTable(dt *ast.DropTable) (string, error) {
	ife := ""
	if dt.IfExists {
		ife = "IF EXISTS "
	}
	return fmt.Sprintf("DROP TABLE %s%s", ife, dt.Table.Name), nil
}

func (d *dialect) compileCreateIndex(ci *ast.CreateIndex) (string, error) {
	unique := ""
	if ci.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)", unique, ci.Name, ci.Table.Name, strings.Join(ci.Columns, ", ")), nil
}

// compileDropIndex requires Table: SQL Server's DROP INDEX syntax is
// "DROP INDEX table.index_name".
func (d *dialect) compileDropIndex(di *ast.DropIndex) (string, error) {
	if di.Table == nil {
		return "", compiler.NewCompileError(d.DialectName, "DropIndex", "SQL Server requires a table for DROP INDEX")
	}
	return fmt.Sprintf("DROP INDEX %s.%s", di.Table.Name, di.Name), nil
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

// Package mysql compiles the query AST into MySQL-flavored SQL.
package mysql

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

// New returns a MySQL dialect compiler.
func New() compiler.Dialect {
	d := &dialect{Base: &compiler.Base{
		DialectName: "mysql",
		Style:       compiler.PlaceholderPercentS,
	}}
	d.SelectFn = d.compileSelect
	return d
}

func (d *dialect) Name() string { return "mysql" }

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
	return d.CompileSelectCore(s, compiler.SelectOptions{})
}

func (d *dialect) compileInsert(ins *ast.Insert) (string, error) {
	if err := compiler.ValidateInsertRows(d.DialectName, ins); err != nil {
		return "", err
	}
	if ins.Upsert != nil && ins.Upsert.ConflictTarget != nil {
		return "", compiler.NewCompileError(d.DialectName, "Upsert", "ON DUPLICATE KEY UPDATE has no conflict target clause")
	}
	if ins.Upsert != nil && ins.Upsert.DoNothing {
		return "", compiler.NewCompileError(d.DialectName, "Upsert", "ON DUPLICATE KEY UPDATE has no do-nothing form")
	}
	if ins.Returning != nil {
		return "", compiler.NewCompileError(d.DialectName, "Returning", "MySQL does not support RETURNING")
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(ins.Table.Name)
	if len(ins.Columns) > 0 {
		sb.WriteString(" (" + strings.Join(ins.Columns, ", ") + ")")
	}

	sb.WriteString(" VALUES ")
	rows := ins.Rows
	if len(ins.Values) > 0 {
		rows = [][]ast.Expression{ins.Values}
	}
	rowParts := make([]string, len(rows))
	for i, row := range rows {
		s, err := d.CompileValuesRow(row)
		if err != nil {
			return "", err
		}
		rowParts[i] = s
	}
	sb.WriteString(strings.Join(rowParts, ", "))

	if ins.Upsert != nil {
		sb.WriteString(" ON DUPLICATE KEY UPDATE " + d.UpsertOnDuplicateKeySetClause(ins.Upsert.UpdateColumns))
	}

	return sb.String(), nil
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
	if u.Returning != nil {
		return "", compiler.NewCompileError(d.DialectName, "Returning", "MySQL does not support RETURNING")
	}
	return fmt.Sprintf("UPDATE %s SET %s%s", u.Table.Name, sets, where), nil
}

func (d *dialect) compileDelete(del *ast.Delete) (string, error) {
	where, err := d.CompileWhere(del.Where)
	if err != nil {
		return "", err
	}
	if del.Returning != nil {
		return "", compiler.NewCompileError(d.DialectName, "Returning", "MySQL does not support RETURNING")
	}
	return fmt.Sprintf("DELETE FROM %s%s", del.Table.Name, where), nil
}

func (d *dialect) compileSetOp(op *ast.SetOp) (string, error) {
	if op.Op != ast.SetOpUnion {
		return "", compiler.NewCompileError(d.DialectName, "SetOp", "MySQL supports only UNION, not INTERSECT/EXCEPT")
	}
	return d.CompileSetOp(op, d.compileStatementString, false)
}

func (d *dialect) compileStatementString(stmt ast.Statement) (string, error) {
	return visitor.WalkStatement[string](d, stmt)
}

func (d *dialect) compileCreateTable(ct *ast.CreateTable) (string, error) {
	body, err := d.CompileCreateTableBody(ct)
	if err != nil {
		return "", err
	}
	ifne := ""
	if ct.IfNotExists {
		ifne = "IF NOT EXISTS "
	}
	return fmt.Sprintf("CREATE TABLE %s%s %s", ifne, ct.Table.Name, body), nil
}

// compileDropTable never emits CASCADE: MySQL's storage engines enforce FK
// actions declared on the table, not a DROP TABLE modifier.
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

// compileDropIndex requires Table: MySQL's DROP INDEX syntax is
// "DROP INDEX name ON table", unlike the schema-scoped form other dialects
// accept.
func (d *dialect) compileDropIndex(di *ast.DropIndex) (string, error) {
	if di.Table == nil {
		return "", compiler.NewCompileError(d.DialectName, "DropIndex", "MySQL requires ON table for DROP INDEX")
	}
	return fmt.Sprintf("DROP INDEX %s ON %s", di.Name, di.Table.Name), nil
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

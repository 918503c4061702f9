package compiler

import (
	"fmt"
	"strings"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// CompileColumnDef emits one CREATE TABLE column definition.
func (b *Base) CompileColumnDef(c ast.ColumnDef) (string, error) {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteString(" ")
	sb.WriteString(c.Type)

	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		d, err := b.CompileExpr(c.Default)
		if err != nil {
			return "", err
		}
		sb.WriteString(" DEFAULT " + d)
	}

	return sb.String(), nil
}

// CompileConstraint emits one table-level constraint definition.
func (b *Base) CompileConstraint(c ast.Clause) (string, error) {
	switch n := c.(type) {
	case ast.PrimaryKey:
		return fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(n.Columns, ", ")), nil
	case ast.Unique:
		return fmt.Sprintf("UNIQUE (%s)", strings.Join(n.Columns, ", ")), nil
	case ast.ForeignKey:
		if err := ValidateForeignKey(b.DialectName, &n); err != nil {
			return "", err
		}
		s := fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			strings.Join(n.Columns, ", "), n.ReferenceTable, strings.Join(n.ReferenceColumns, ", "))
		if a := referentialActionSQL(n.OnDelete); a != "" {
			s += " ON DELETE " + a
		}
		if a := referentialActionSQL(n.OnUpdate); a != "" {
			s += " ON UPDATE " + a
		}
		return s, nil
	case ast.Check:
		cond, err := b.CompileExpr(n.Cond)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CHECK (%s)", cond), nil
	default:
		return "", NewCompileError(b.DialectName, fmt.Sprintf("%T", c), "unsupported constraint node kind")
	}
}

func referentialActionSQL(a ast.ReferentialAction) string {
	switch a {
	case ast.ActionCascade:
		return "CASCADE"
	case ast.ActionSetNull:
		return "SET NULL"
	case ast.ActionRestrict:
		return "RESTRICT"
	default:
		return ""
	}
}

// CompileCreateTableBody emits the "(col1 type, ..., constraint, ...)" body
// shared by every dialect's CREATE TABLE (only the IF NOT EXISTS support
// and statement prefix differ per dialect).
func (b *Base) CompileCreateTableBody(stmt *ast.CreateTable) (string, error) {
	var parts []string
	for _, c := range stmt.Columns {
		s, err := b.CompileColumnDef(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	for _, c := range stmt.Constraints {
		s, err := b.CompileConstraint(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// CompileAlterAction emits one ALTER TABLE action.
func (b *Base) CompileAlterAction(a ast.Clause) (string, error) {
	switch n := a.(type) {
	case ast.AddColumn:
		col, err := b.CompileColumnDef(n.Column)
		if err != nil {
			return "", err
		}
		return "ADD COLUMN " + col, nil
	case ast.DropColumn:
		return "DROP COLUMN " + n.Name, nil
	case ast.AddConstraint:
		c, err := b.CompileConstraint(n.Constraint)
		if err != nil {
			return "", err
		}
		return "ADD " + c, nil
	case ast.DropConstraint:
		return "DROP CONSTRAINT " + n.Name, nil
	default:
		return "", NewCompileError(b.DialectName, fmt.Sprintf("%T", a), "unsupported alter action node kind")
	}
}

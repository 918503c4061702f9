package ast

// SelectBuilder assembles a *Select fluently, mirroring the chained
// builder style of the statement interfaces it is modeled on: each method
// mutates and returns the same builder so calls can be chained.
type SelectBuilder struct{ stmt *Select }

// NewSelect starts a SELECT statement over the given columns.
func NewSelect(columns ...Expression) *SelectBuilder {
	return &SelectBuilder{stmt: &Select{Columns: columns}}
}

func (b *SelectBuilder) From(from Clause) *SelectBuilder {
	b.stmt.From = from
	return b
}

func (b *SelectBuilder) Where(cond Expression) *SelectBuilder {
	b.stmt.Where = &Where{Cond: cond}
	return b
}

func (b *SelectBuilder) GroupBy(exprs ...Expression) *SelectBuilder {
	b.stmt.GroupBy = &GroupBy{Exprs: exprs}
	return b
}

func (b *SelectBuilder) Having(cond Expression) *SelectBuilder {
	b.stmt.Having = &Having{Cond: cond}
	return b
}

func (b *SelectBuilder) OrderBy(expr Expression, dir Direction) *SelectBuilder {
	b.stmt.OrderBy = append(b.stmt.OrderBy, OrderBy{Expr: expr, Dir: dir})
	return b
}

func (b *SelectBuilder) LimitOffset(limit, offset int) *SelectBuilder {
	b.stmt.Limit = &limit
	b.stmt.Offset = &offset
	return b
}

func (b *SelectBuilder) Top(count int, onExpr Expression, dir Direction) *SelectBuilder {
	b.stmt.Top = &Top{Count: count, OnExpr: onExpr, Dir: dir}
	return b
}

func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.stmt.Distinct = true
	return b
}

func (b *SelectBuilder) With(name string, sub *Select) *SelectBuilder {
	b.stmt.Ctes = append(b.stmt.Ctes, Cte{Name: name, Select: sub})
	return b
}

func (b *SelectBuilder) LockRows(mode LockMode) *SelectBuilder {
	b.stmt.Lock = &Lock{Mode: mode}
	return b
}

// Build returns the assembled statement.
func (b *SelectBuilder) Build() *Select { return b.stmt }

// InsertBuilder assembles a *Insert fluently.
type InsertBuilder struct{ stmt *Insert }

// NewInsert starts an INSERT statement into the given table.
func NewInsert(table *Table) *InsertBuilder {
	return &InsertBuilder{stmt: &Insert{Table: table}}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.stmt.Columns = columns
	return b
}

func (b *InsertBuilder) Values(values ...Expression) *InsertBuilder {
	b.stmt.Values = values
	return b
}

func (b *InsertBuilder) Rows(rows ...[]Expression) *InsertBuilder {
	b.stmt.Rows = rows
	return b
}

func (b *InsertBuilder) OnConflict(up *Upsert) *InsertBuilder {
	b.stmt.Upsert = up
	return b
}

func (b *InsertBuilder) Returning(exprs ...Expression) *InsertBuilder {
	b.stmt.Returning = &Returning{Exprs: exprs}
	return b
}

func (b *InsertBuilder) Build() *Insert { return b.stmt }

// UpdateBuilder assembles a *Update fluently.
type UpdateBuilder struct{ stmt *Update }

// NewUpdate starts an UPDATE statement against the given table.
func NewUpdate(table *Table) *UpdateBuilder {
	return &UpdateBuilder{stmt: &Update{Table: table}}
}

func (b *UpdateBuilder) Set(column string, value Expression) *UpdateBuilder {
	b.stmt.Sets = append(b.stmt.Sets, Assignment{Column: column, Value: value})
	return b
}

func (b *UpdateBuilder) Where(cond Expression) *UpdateBuilder {
	b.stmt.Where = &Where{Cond: cond}
	return b
}

func (b *UpdateBuilder) Returning(exprs ...Expression) *UpdateBuilder {
	b.stmt.Returning = &Returning{Exprs: exprs}
	return b
}

func (b *UpdateBuilder) Build() *Update { return b.stmt }

// DeleteBuilder assembles a *Delete fluently.
type DeleteBuilder struct{ stmt *Delete }

// NewDelete starts a DELETE statement against the given table.
func NewDelete(table *Table) *DeleteBuilder {
	return &DeleteBuilder{stmt: &Delete{Table: table}}
}

func (b *DeleteBuilder) Where(cond Expression) *DeleteBuilder {
	b.stmt.Where = &Where{Cond: cond}
	return b
}

func (b *DeleteBuilder) Returning(exprs ...Expression) *DeleteBuilder {
	b.stmt.Returning = &Returning{Exprs: exprs}
	return b
}

func (b *DeleteBuilder) Build() *Delete { return b.stmt }

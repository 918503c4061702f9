// Package ast defines the query model: a closed set of expression, clause,
// and statement node kinds that a caller assembles into a strict tree and
// hands to a dialect compiler.
package ast

// Kind identifies the concrete variant of a Node. Every compiler visitor
// switches exhaustively over Kind; an unrecognized Kind is a programming
// error, never a silent no-op.
type Kind int

const (
	KindLiteral Kind = iota
	KindColumn
	KindStar
	KindBinaryOp
	KindUnaryOp
	KindFunctionCall
	KindCast
	KindAlias
	KindCase
	KindIn
	KindBetween
	KindSubquery

	KindWhere
	KindGroupBy
	KindHaving
	KindOrderBy
	KindTop
	KindLock
	KindOver
	KindJoin
	KindTable
	KindCte
	KindWhenThen
	KindConflictTarget
	KindUpsert
	KindReturning
	KindColumnDef
	KindPrimaryKey
	KindUnique
	KindForeignKey
	KindCheck
	KindAddColumn
	KindDropColumn
	KindAddConstraint
	KindDropConstraint

	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindSetOp
	KindCreateTable
	KindDropTable
	KindCreateIndex
	KindDropIndex
	KindAlterTable
)

// Node is the identity shared by every member of the three node families
// (Expression, Clause, Statement). It exposes nothing but Kind: visitors
// recover the concrete type via a type switch on the Kind-tagged value,
// never via reflection.
type Node interface {
	Kind() Kind
}

// Expression is a node that produces a value when evaluated by the database.
type Expression interface {
	Node
	expressionNode()
}

// Clause is a node that modifies a statement without itself producing rows.
type Clause interface {
	Node
	clauseNode()
}

// Statement is an executable root node.
type Statement interface {
	Node
	statementNode()
}

// Direction is an ORDER BY / TOP sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// LockMode is a row-locking clause mode.
type LockMode int

const (
	LockForUpdate LockMode = iota
	LockForShare
)

// SetOpKind distinguishes UNION/INTERSECT/EXCEPT statements.
type SetOpKind int

const (
	SetOpUnion SetOpKind = iota
	SetOpIntersect
	SetOpExcept
)

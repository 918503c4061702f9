// Package compiler defines the shared contract every dialect compiler
// implements: compile(ast) -> CompiledQuery, pure given the AST, stateful
// only in its own per-call parameter accumulator.
package compiler

import (
	"strconv"

	"github.com/AnirudhB3000/buildaquery/ast"
)

// CompiledQuery is the (sql, params) pair a dialect compiler produces.
// params is ordered by first textual appearance of its placeholder; sql
// never contains an inlined literal value.
type CompiledQuery struct {
	SQL    string
	Params []ast.Value
}

// Dialect is the SQL variant targeted by one compiler.
type Dialect interface {
	// Name is the dialect's canonical lowercase identifier, e.g. "postgres".
	Name() string

	// Compile lowers root to a CompiledQuery. It resets the compiler's
	// internal parameter accumulator, walks root, and returns the result.
	// Compile does no I/O and touches no global state. The accumulator
	// belongs to the Dialect value, so concurrent calls on the same value
	// are not safe.
	Compile(root ast.Statement) (CompiledQuery, error)
}

// PlaceholderStyle is how a dialect renders the N-th bound parameter.
type PlaceholderStyle int

const (
	// PlaceholderQuestion renders every placeholder as a literal `?`.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderPercentS renders every placeholder as a literal `%s`.
	PlaceholderPercentS
	// PlaceholderColonN renders the n-th placeholder as `:n` (1-based).
	PlaceholderColonN
)

// RenderPlaceholder renders the n-th (1-based) placeholder for style.
func RenderPlaceholder(style PlaceholderStyle, n int) string {
	switch style {
	case PlaceholderPercentS:
		return "%s"
	case PlaceholderColonN:
		return ":" + strconv.Itoa(n)
	default:
		return "?"
	}
}

package compiler

import "fmt"

// CompileError is a structural compile-time violation (spec.md §4.2's
// "Errors during compilation are structural"). It is always a programming
// error — never retryable — and names the offending node and rule so
// callers can pattern-match or log without parsing the message.
type CompileError struct {
	Dialect string
	Node    string
	Rule    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Dialect, e.Node, e.Rule)
}

// NewCompileError builds a CompileError.
func NewCompileError(dialect, node, rule string) error {
	return &CompileError{Dialect: dialect, Node: node, Rule: rule}
}

package codegen

import "fmt"

// InternalError marks a compiler-bug invariant violation discovered while
// lowering an AST that has already passed sema's checks — e.g. an
// identifier with no stack slot.  It is never expected to surface outside
// of a programming mistake in this package, which is why genFunc/genExpr
// panic with it rather than threading an error return through every
// lowering function.
type InternalError struct {
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Reason)
}

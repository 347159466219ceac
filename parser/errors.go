package parser

import (
	"fmt"

	"github.com/skx/math-compiler/token"
)

// Error reports a single parse violation.  There is no recovery: parsing
// aborts on the first Error encountered.
type Error struct {
	Expected string
	Found    token.Token
	Pos      token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: expected %s, found %s %q",
		e.Pos.Line, e.Pos.Column, e.Expected, e.Found.Kind, e.Found.Lexeme)
}

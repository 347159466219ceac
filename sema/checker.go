// Package sema validates a parsed Program before it reaches the code
// generator: every function name is unique and exactly one is the
// mandatory entry point, every call resolves to a known function with
// matching arity, and every identifier/assignment target resolves to a
// variable in scope.
package sema

import (
	"fmt"

	"github.com/skx/math-compiler/ast"
	"github.com/skx/math-compiler/token"
)

// ErrorKind is the closed set of semantic-error payload shapes.
type ErrorKind int

const (
	UndefinedVariable ErrorKind = iota
	UndefinedFunction
	ArityMismatch
	DuplicateFunction
	MissingMain
	TooManyParameters
)

func (k ErrorKind) String() string {
	switch k {
	case UndefinedVariable:
		return "UndefinedVariable"
	case UndefinedFunction:
		return "UndefinedFunction"
	case ArityMismatch:
		return "ArityMismatch"
	case DuplicateFunction:
		return "DuplicateFunction"
	case MissingMain:
		return "MissingMain"
	case TooManyParameters:
		return "TooManyParameters"
	default:
		return "UnknownSemanticErrorKind"
	}
}

// Error reports a single semantic violation.  Checking aborts on the
// first Error; there is no recovery.
type Error struct {
	Kind ErrorKind
	Name string
	Pos  token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("semantic error at line %d, column %d: %s: %s",
		e.Pos.Line, e.Pos.Column, e.Kind, e.Name)
}

// funcSig records a function's arity for call-site validation.
type funcSig struct {
	paramCount int
	pos        token.Position
}

// maxIntegerParams is the number of System V AMD64 integer argument
// registers (%rdi, %rsi, %rdx, %rcx, %r8, %r9); the generator does not
// implement stack-passed arguments, so arity beyond this is rejected
// here instead of miscompiled there.
const maxIntegerParams = 6

// Checker walks a Program once, validating it against the rules in
// SPEC_FULL.md §4.3.
type Checker struct {
	funcs map[string]funcSig
	scope *scopeStack
}

// Check validates prog and returns the first violation found, if any.
func Check(prog *ast.Program) error {
	c := &Checker{funcs: make(map[string]funcSig), scope: newScopeStack()}
	return c.checkProgram(prog)
}

func (c *Checker) checkProgram(prog *ast.Program) error {
	sawMain := false

	for _, fn := range prog.Funcs {
		if _, exists := c.funcs[fn.Name]; exists {
			return &Error{Kind: DuplicateFunction, Name: fn.Name, Pos: fn.Pos}
		}
		if len(fn.Params) > maxIntegerParams {
			return &Error{Kind: TooManyParameters, Name: fn.Name, Pos: fn.Pos}
		}
		if fn.Name == token.MainFunction {
			sawMain = true
			if len(fn.Params) != 0 {
				return &Error{Kind: ArityMismatch, Name: fn.Name, Pos: fn.Pos}
			}
		}
		c.funcs[fn.Name] = funcSig{paramCount: len(fn.Params), pos: fn.Pos}
	}

	if !sawMain {
		return &Error{Kind: MissingMain, Name: token.MainFunction}
	}

	for _, fn := range prog.Funcs {
		if err := c.checkFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkFunc(fn *ast.FuncDef) error {
	c.scope.push()
	defer c.scope.pop()

	for _, p := range fn.Params {
		c.scope.declare(p)
	}

	return c.checkBlock(fn.Body)
}

func (c *Checker) checkBlock(block *ast.Block) error {
	c.scope.push()
	defer c.scope.pop()

	for _, stmt := range block.Stmts {
		if err := c.checkStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(stmt *ast.Stmt) error {
	switch stmt.Kind {
	case ast.VarDecl:
		if err := c.checkExpr(stmt.Expr); err != nil {
			return err
		}
		c.scope.declare(stmt.Name)
		return nil

	case ast.Assign:
		if !c.scope.resolve(stmt.Name) {
			return &Error{Kind: UndefinedVariable, Name: stmt.Name, Pos: stmt.Pos}
		}
		return c.checkExpr(stmt.Expr)

	case ast.If:
		if err := c.checkExpr(stmt.Cond); err != nil {
			return err
		}
		if err := c.checkBlock(stmt.Then); err != nil {
			return err
		}
		if stmt.Else != nil {
			return c.checkBlock(stmt.Else)
		}
		return nil

	case ast.While:
		if err := c.checkExpr(stmt.Cond); err != nil {
			return err
		}
		return c.checkBlock(stmt.Then)

	case ast.Return:
		if stmt.Expr == nil {
			return nil
		}
		return c.checkExpr(stmt.Expr)

	case ast.Print:
		return c.checkExpr(stmt.Expr)

	case ast.ExprStmt:
		return c.checkExpr(stmt.Expr)
	}
	return nil
}

func (c *Checker) checkExpr(expr *ast.Expr) error {
	switch expr.Kind {
	case ast.IntLiteral:
		return nil

	case ast.Identifier:
		if !c.scope.resolve(expr.Name) {
			return &Error{Kind: UndefinedVariable, Name: expr.Name, Pos: expr.Pos}
		}
		return nil

	case ast.BinaryOp:
		if err := c.checkExpr(expr.Left); err != nil {
			return err
		}
		return c.checkExpr(expr.Right)

	case ast.UnaryMinus:
		return c.checkExpr(expr.Left)

	case ast.Call:
		sig, ok := c.funcs[expr.Name]
		if !ok {
			return &Error{Kind: UndefinedFunction, Name: expr.Name, Pos: expr.Pos}
		}
		if sig.paramCount != len(expr.Args) {
			return &Error{Kind: ArityMismatch, Name: expr.Name, Pos: expr.Pos}
		}
		for _, arg := range expr.Args {
			if err := c.checkExpr(arg); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

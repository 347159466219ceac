// Package ast defines the tagged-variant Abstract Syntax Tree produced by
// the parser.  Each node is a single struct carrying a Kind tag and only
// the fields relevant to that kind; there are no interfaces and no
// visitor indirection, so every phase that walks the tree does so with an
// exhaustive switch over Kind.
package ast

import "github.com/skx/math-compiler/token"

// ExprKind is the closed set of expression shapes.
type ExprKind int

const (
	IntLiteral ExprKind = iota
	Identifier
	BinaryOp
	UnaryMinus
	Call
)

// BinOp is the closed set of binary operators an Expr of kind BinaryOp may
// carry.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
)

// Expr is an expression node.  Fields are populated according to Kind:
//
//	IntLiteral: IntValue
//	Identifier: Name
//	BinaryOp:   Op, Left, Right
//	UnaryMinus: Left (the operand)
//	Call:       Name (callee), Args
type Expr struct {
	Kind ExprKind
	Pos  token.Position

	IntValue int64
	Name     string
	Op       BinOp
	Left     *Expr
	Right    *Expr
	Args     []*Expr
}

// StmtKind is the closed set of statement shapes.
type StmtKind int

const (
	VarDecl StmtKind = iota
	Assign
	If
	While
	Return
	Print
	ExprStmt
)

// Stmt is a statement node.  Fields are populated according to Kind:
//
//	VarDecl:  Name, Expr (initializer)
//	Assign:   Name, Expr (rhs)
//	If:       Cond, Then, Else (Else may be nil)
//	While:    Cond, Then (loop body)
//	Return:   Expr (may be nil for a bare "return")
//	Print:    Expr (argument)
//	ExprStmt: Expr
type Stmt struct {
	Kind StmtKind
	Pos  token.Position

	Name string
	Expr *Expr
	Cond *Expr
	Then *Block
	Else *Block
}

// Block is an ordered sequence of statements sharing one lexical scope.
type Block struct {
	Stmts []*Stmt
}

// FuncDef is a top-level function definition.
type FuncDef struct {
	Name   string
	Params []string
	Body   *Block
	Pos    token.Position
}

// Program is the root node: an ordered sequence of function definitions.
type Program struct {
	Funcs []*FuncDef
}

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/skx/math-compiler/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := New(src)
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	return prog
}

func TestParseLiteralReturn(t *testing.T) {
	prog := mustParse(t, "دالة رئيسية() { ارجع 42؛ }")
	require.Len(t, prog.Funcs, 1)

	fn := prog.Funcs[0]
	require.Equal(t, "رئيسية", fn.Name)
	require.Empty(t, fn.Params)
	require.Len(t, fn.Body.Stmts, 1)

	want := &ast.Stmt{
		Kind: ast.Return,
		Expr: &ast.Expr{Kind: ast.IntLiteral, IntValue: 42},
	}
	got := zeroStmtPos(fn.Body.Stmts[0])
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("return statement mismatch (-want +got):\n%s", diff)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	prog := mustParse(t, "دالة رئيسية() { متغير ن = 15 + 7 * 2؛ ارجع ن؛ }")
	decl := prog.Funcs[0].Body.Stmts[0]
	require.Equal(t, ast.VarDecl, decl.Kind)

	// 15 + (7 * 2)
	top := decl.Expr
	require.Equal(t, ast.BinaryOp, top.Kind)
	require.Equal(t, ast.OpAdd, top.Op)
	require.Equal(t, ast.IntLiteral, top.Left.Kind)
	require.Equal(t, int64(15), top.Left.IntValue)
	require.Equal(t, ast.BinaryOp, top.Right.Kind)
	require.Equal(t, ast.OpMul, top.Right.Op)
}

// Comparison operators chain left-associatively: a < b < c parses as
// (a < b) < c, matching the source language and not a redesign target.
func TestChainedComparisonIsLeftAssociative(t *testing.T) {
	prog := mustParse(t, "دالة رئيسية() { ارجع 1 < 2 < 3؛ }")
	top := prog.Funcs[0].Body.Stmts[0].Expr

	require.Equal(t, ast.BinaryOp, top.Kind)
	require.Equal(t, ast.OpLt, top.Op)
	require.Equal(t, ast.IntLiteral, top.Right.Kind)
	require.Equal(t, int64(3), top.Right.IntValue)

	inner := top.Left
	require.Equal(t, ast.BinaryOp, inner.Kind)
	require.Equal(t, ast.OpLt, inner.Op)
	require.Equal(t, int64(1), inner.Left.IntValue)
	require.Equal(t, int64(2), inner.Right.IntValue)
}

func TestCallWithArguments(t *testing.T) {
	prog := mustParse(t, "دالة رئيسية() { اطبع(مضروب(5، 1))؛ }")
	printStmt := prog.Funcs[0].Body.Stmts[0]
	require.Equal(t, ast.Print, printStmt.Kind)

	call := printStmt.Expr
	require.Equal(t, ast.Call, call.Kind)
	require.Equal(t, "مضروب", call.Name)
	require.Len(t, call.Args, 2)
}

func TestIfElse(t *testing.T) {
	prog := mustParse(t, `دالة رئيسية() {
		اذا (1 == 1) { ارجع 1؛ } والا { ارجع 0؛ }
	}`)
	stmt := prog.Funcs[0].Body.Stmts[0]
	require.Equal(t, ast.If, stmt.Kind)
	require.NotNil(t, stmt.Then)
	require.NotNil(t, stmt.Else)
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	p, err := New("دالة رئيسية() { ارجع 1 }")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
}

func TestEmptyProgramIsParseError(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	_, err = p.ParseProgram()
	require.Error(t, err)
}

// zeroExprPos returns a copy of e with Pos (and every descendant's Pos)
// cleared, so structural comparisons via go-cmp can ignore source
// positions entirely.
func zeroExprPos(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Pos = ast.Expr{}.Pos
	cp.Left = zeroExprPos(e.Left)
	cp.Right = zeroExprPos(e.Right)
	if e.Args != nil {
		cp.Args = make([]*ast.Expr, len(e.Args))
		for i, a := range e.Args {
			cp.Args[i] = zeroExprPos(a)
		}
	}
	return &cp
}

func zeroStmtPos(s *ast.Stmt) *ast.Stmt {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Pos = ast.Stmt{}.Pos
	cp.Expr = zeroExprPos(s.Expr)
	cp.Cond = zeroExprPos(s.Cond)
	return &cp
}

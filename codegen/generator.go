// Package codegen lowers a semantically valid ast.Program into a single
// GNU-assembler (AT&T syntax) text buffer targeting x86-64 Linux.  It
// keeps the teacher's shape for doing this — one string-template emitter
// per AST construct, threaded through a single growable output buffer and
// a label counter constructed fresh per compilation — but generalizes it
// from the teacher's flat RPN instruction stream (which only ever touches
// a single global evaluation stack) to structured statements, real stack
// frames, and branches.
package codegen

import (
	"fmt"
	"strings"

	"github.com/skx/math-compiler/ast"
	"github.com/skx/math-compiler/token"
)

// argRegisters holds the System V AMD64 integer argument registers, in
// order.  Calls with more than len(argRegisters) arguments are rejected by
// sema before they ever reach the generator.
var argRegisters = []string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

const epilogue = "        movq %rbp, %rsp\n        popq %rbp\n        ret\n"

// Generator holds the state needed to lower one Program: the growable
// output buffer and the module-wide label counter.  A Generator is meant
// to be used for exactly one Generate call; the driver in package
// compiler constructs a fresh one per compilation so the label counter
// always starts at zero, which is what makes output deterministic.
type Generator struct {
	out        strings.Builder
	labelCount int
	debug      bool
}

// New creates a Generator ready to lower a single Program.
func New() *Generator {
	return &Generator{}
}

// SetDebug toggles emission of a debug breakpoint (`int3`) at the start of
// every function body, mirroring the teacher's -debug flag.
func (g *Generator) SetDebug(v bool) {
	g.debug = v
}

// Generate lowers prog to a complete assembly-language text buffer.  prog
// must already have passed package sema's checks; an internal
// inconsistency found here is a programmer bug and panics with an
// *InternalError rather than returning one, since by construction it
// should never happen to a validated AST.
func (g *Generator) Generate(prog *ast.Program) string {
	g.out.Reset()
	g.labelCount = 0

	g.emitModulePrologue()
	for _, fn := range prog.Funcs {
		g.genFunc(fn)
	}
	g.emitPrintIntHelper()

	return g.out.String()
}

// newLabel allocates the next module-unique branch-target label.
func (g *Generator) newLabel() string {
	label := fmt.Sprintf(".L%d", g.labelCount)
	g.labelCount++
	return label
}

// emitModulePrologue writes the `.text` directive, `.globl _start`, and
// the entry stub that calls the compiled رئيسية and exits with its return
// value.
func (g *Generator) emitModulePrologue() {
	g.out.WriteString(".text\n.globl _start\n\n_start:\n")
	fmt.Fprintf(&g.out, "        call %s\n", mangle(token.MainFunction))
	g.out.WriteString("        movq %rax, %rdi\n        movq $60, %rax\n        syscall\n")
}

// genFunc emits one function's label, prologue, body, and synthetic
// trailing epilogue.  The body is generated into a scratch buffer first
// so the final local-variable tally (and hence the `subq` frame size) is
// known before the prologue line is written — the "reserve-then-patch"
// approach SPEC_FULL.md allows in place of a true two-pass generator.
func (g *Generator) genFunc(fn *ast.FuncDef) {
	e := newEnv()
	e.push()

	var body strings.Builder

	if len(fn.Params) > len(argRegisters) {
		panic(&InternalError{Reason: fmt.Sprintf("function %q has more than %d parameters", fn.Name, len(argRegisters))})
	}
	for i, p := range fn.Params {
		offset := e.allocate(p)
		fmt.Fprintf(&body, "        movq %s, %d(%%rbp)\n", argRegisters[i], offset)
	}

	if g.debug {
		body.WriteString("        int3\n")
	}

	g.genBlock(fn.Body, e, &body)

	// Synthetic trailing epilogue: if control falls off the end of the
	// body without an explicit ارجع, the function returns 0.
	body.WriteString("        movq $0, %rax\n")
	body.WriteString(epilogue)

	fmt.Fprintf(&g.out, "\n%s:\n", mangle(fn.Name))
	g.out.WriteString("        pushq %rbp\n        movq %rsp, %rbp\n")
	fmt.Fprintf(&g.out, "        subq $%d, %%rsp\n", e.frameSize())
	g.out.WriteString(body.String())

	e.pop()
}

func (g *Generator) genBlock(block *ast.Block, e *env, out *strings.Builder) {
	e.push()
	for _, stmt := range block.Stmts {
		g.genStmt(stmt, e, out)
	}
	e.pop()
}

func (g *Generator) genStmt(stmt *ast.Stmt, e *env, out *strings.Builder) {
	switch stmt.Kind {
	case ast.VarDecl:
		g.genExpr(stmt.Expr, e, out)
		offset := e.allocate(stmt.Name)
		fmt.Fprintf(out, "        movq %%rax, %d(%%rbp)\n", offset)

	case ast.Assign:
		g.genExpr(stmt.Expr, e, out)
		offset, ok := e.lookup(stmt.Name)
		if !ok {
			panic(&InternalError{Reason: fmt.Sprintf("assignment target %q has no stack slot", stmt.Name)})
		}
		fmt.Fprintf(out, "        movq %%rax, %d(%%rbp)\n", offset)

	case ast.If:
		g.genIf(stmt, e, out)

	case ast.While:
		g.genWhile(stmt, e, out)

	case ast.Return:
		if stmt.Expr != nil {
			g.genExpr(stmt.Expr, e, out)
		} else {
			out.WriteString("        movq $0, %rax\n")
		}
		out.WriteString(epilogue)

	case ast.Print:
		g.genExpr(stmt.Expr, e, out)
		out.WriteString("        movq %rax, %rdi\n        call print_int\n")

	case ast.ExprStmt:
		g.genExpr(stmt.Expr, e, out)

	default:
		panic(&InternalError{Reason: "unhandled statement kind in codegen"})
	}
}

func (g *Generator) genIf(stmt *ast.Stmt, e *env, out *strings.Builder) {
	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	g.genExpr(stmt.Cond, e, out)
	fmt.Fprintf(out, "        cmpq $0, %%rax\n        je %s\n", elseLabel)
	g.genBlock(stmt.Then, e, out)
	fmt.Fprintf(out, "        jmp %s\n%s:\n", endLabel, elseLabel)
	if stmt.Else != nil {
		g.genBlock(stmt.Else, e, out)
	}
	fmt.Fprintf(out, "%s:\n", endLabel)
}

func (g *Generator) genWhile(stmt *ast.Stmt, e *env, out *strings.Builder) {
	headLabel := g.newLabel()
	endLabel := g.newLabel()

	fmt.Fprintf(out, "%s:\n", headLabel)
	g.genExpr(stmt.Cond, e, out)
	fmt.Fprintf(out, "        cmpq $0, %%rax\n        je %s\n", endLabel)
	g.genBlock(stmt.Then, e, out)
	fmt.Fprintf(out, "        jmp %s\n%s:\n", headLabel, endLabel)
}

// genExpr lowers expr so that its value ends up in %rax.  Binary operators
// use the stack purely as an evaluation buffer: the left operand is
// lowered and pushed, the right operand is lowered into %rax and moved
// aside to %rcx, the left operand is popped back into %rax, and the
// operator combines %rax and %rcx.  Every such push is matched by exactly
// one pop.  A call inside a right operand is emitted while the left
// operand's push is still on the stack, so %rsp is 16-byte aligned at a
// call site only when an even number of such pushes is outstanding;
// alignment is not tracked.
func (g *Generator) genExpr(expr *ast.Expr, e *env, out *strings.Builder) {
	switch expr.Kind {
	case ast.IntLiteral:
		fmt.Fprintf(out, "        movq $%d, %%rax\n", expr.IntValue)

	case ast.Identifier:
		offset, ok := e.lookup(expr.Name)
		if !ok {
			panic(&InternalError{Reason: fmt.Sprintf("identifier %q has no stack slot", expr.Name)})
		}
		fmt.Fprintf(out, "        movq %d(%%rbp), %%rax\n", offset)

	case ast.UnaryMinus:
		g.genExpr(expr.Left, e, out)
		out.WriteString("        negq %rax\n")

	case ast.BinaryOp:
		g.genExpr(expr.Left, e, out)
		out.WriteString("        pushq %rax\n")
		g.genExpr(expr.Right, e, out)
		out.WriteString("        movq %rax, %rcx\n        popq %rax\n")
		g.genBinOp(expr.Op, out)

	case ast.Call:
		g.genCall(expr, e, out)

	default:
		panic(&InternalError{Reason: "unhandled expression kind in codegen"})
	}
}

func (g *Generator) genBinOp(op ast.BinOp, out *strings.Builder) {
	switch op {
	case ast.OpAdd:
		out.WriteString("        addq %rcx, %rax\n")
	case ast.OpSub:
		out.WriteString("        subq %rcx, %rax\n")
	case ast.OpMul:
		out.WriteString("        imulq %rcx, %rax\n")
	case ast.OpDiv:
		out.WriteString("        cqto\n        idivq %rcx\n")
	case ast.OpEq:
		out.WriteString("        cmpq %rcx, %rax\n        sete %al\n        movzbq %al, %rax\n")
	case ast.OpNeq:
		out.WriteString("        cmpq %rcx, %rax\n        setne %al\n        movzbq %al, %rax\n")
	case ast.OpLt:
		out.WriteString("        cmpq %rcx, %rax\n        setl %al\n        movzbq %al, %rax\n")
	case ast.OpGt:
		out.WriteString("        cmpq %rcx, %rax\n        setg %al\n        movzbq %al, %rax\n")
	case ast.OpLe:
		out.WriteString("        cmpq %rcx, %rax\n        setle %al\n        movzbq %al, %rax\n")
	case ast.OpGe:
		out.WriteString("        cmpq %rcx, %rax\n        setge %al\n        movzbq %al, %rax\n")
	default:
		panic(&InternalError{Reason: "unhandled binary operator in codegen"})
	}
}

// genCall evaluates arguments left-to-right, each pushed onto the stack as
// soon as it is computed, then pops them into the correct argument
// registers in reverse order immediately before the `call` — so no extra
// stack depth survives past the call.  A call nested in a later argument
// is emitted while the earlier arguments are still pushed; as in genExpr,
// %rsp at such an inner call is 16-byte aligned only when an even number
// of values is outstanding.
func (g *Generator) genCall(expr *ast.Expr, e *env, out *strings.Builder) {
	for _, arg := range expr.Args {
		g.genExpr(arg, e, out)
		out.WriteString("        pushq %rax\n")
	}
	for i := len(expr.Args) - 1; i >= 0; i-- {
		fmt.Fprintf(out, "        popq %s\n", argRegisters[i])
	}
	fmt.Fprintf(out, "        call %s\n", mangle(expr.Name))
}

// The compiler-package contains the core of our compiler.
//
// In brief we go through a four-step process:
//
//  1.  Lex the source text into a stream of tokens.
//
//  2.  Parse the tokens into an abstract syntax tree.
//
//  3.  Check the tree for semantic errors: undefined names, arity
//      mismatches, a missing or malformed entry point.
//
//  4.  Walk the validated tree, generating AT&T-syntax x86-64 assembly.
//
// Each step only ever reads the output of the step before it; none of
// them mutate data that belongs to an earlier phase.  The first error
// encountered at any step aborts the whole compilation - there is no
// recovery, and no partial output is ever produced.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skx/math-compiler/codegen"
	"github.com/skx/math-compiler/parser"
	"github.com/skx/math-compiler/sema"
)

// Compiler holds our object-state.
type Compiler struct {

	// debug holds a flag to decide if debugging "stuff" is generated
	// in the output assembly.
	debug bool

	// source holds the program text we're compiling.
	source string
}

//
// Our public API consists of the functions:
//  New
//  SetDebug
//  Compile
//  CompileFile
//
// The rest of the code is an implementation detail.
//

// New creates a new compiler, given the source text in the constructor.
func New(input string) *Compiler {
	return &Compiler{source: input}
}

// SetDebug changes the debug-flag for our output.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
}

// Compile converts the input program into a string of AMD64-assembly
// language, or returns the first error discovered while doing so.  The
// returned error is always one of *lexer.Error, *parser.Error,
// *sema.Error, or a *codegen.InternalError recovered from a panic -
// never a bare fmt.Errorf, so callers can type-switch on it.
func (c *Compiler) Compile() (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ierr, ok := r.(*codegen.InternalError); ok {
				err = ierr
				return
			}
			panic(r)
		}
	}()

	p, err := parser.New(c.source)
	if err != nil {
		return "", err
	}

	prog, err := p.ParseProgram()
	if err != nil {
		return "", err
	}

	if err = sema.Check(prog); err != nil {
		return "", err
	}

	gen := codegen.New()
	gen.SetDebug(c.debug)
	return gen.Generate(prog), nil
}

// CompileFile reads the source file at path, compiles it, and writes the
// resulting assembly to outPath.  If outPath is empty it defaults to
// path with its extension replaced by ".s".  No output file is written
// if compilation fails.
func CompileFile(path string, outPath string, debug bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	c := New(string(data))
	c.SetDebug(debug)

	asm, err := c.Compile()
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = defaultOutputPath(path)
	}

	if err := os.WriteFile(outPath, []byte(asm), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}

	return outPath, nil
}

// defaultOutputPath replaces path's extension with ".s", or appends ".s"
// if path has none.
func defaultOutputPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path + ".s"
	}
	return strings.TrimSuffix(path, ext) + ".s"
}

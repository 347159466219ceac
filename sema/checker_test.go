package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/math-compiler/ast"
	"github.com/skx/math-compiler/parser"
)

func parseOrFail(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.New(src)
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	return prog
}

func TestValidProgramPasses(t *testing.T) {
	prog := parseOrFail(t, `
		دالة مضروب(ن) {
			اذا (ن < 2) { ارجع 1؛ }
			ارجع ن * مضروب(ن - 1)؛
		}
		دالة رئيسية() {
			متغير م = مضروب(5)؛
			اطبع(م)؛
			ارجع 0؛
		}
	`)
	assert.NoError(t, Check(prog))
}

func TestUndefinedVariable(t *testing.T) {
	prog := parseOrFail(t, "دالة رئيسية() { اطبع(ن)؛ ارجع 0؛ }")
	err := Check(prog)
	require.Error(t, err)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, UndefinedVariable, semErr.Kind)
	assert.Equal(t, "ن", semErr.Name)
}

func TestUndefinedFunction(t *testing.T) {
	prog := parseOrFail(t, "دالة رئيسية() { اطبع(غير_موجودة(1))؛ ارجع 0؛ }")
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, UndefinedFunction, semErr.Kind)
}

func TestArityMismatch(t *testing.T) {
	prog := parseOrFail(t, `
		دالة جمع(أ، ب) { ارجع أ + ب؛ }
		دالة رئيسية() { اطبع(جمع(1))؛ ارجع 0؛ }
	`)
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, ArityMismatch, semErr.Kind)
}

func TestDuplicateFunction(t *testing.T) {
	prog := parseOrFail(t, `
		دالة رئيسية() { ارجع 0؛ }
		دالة رئيسية() { ارجع 1؛ }
	`)
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, DuplicateFunction, semErr.Kind)
}

func TestMissingMain(t *testing.T) {
	prog := parseOrFail(t, "دالة جمع() { ارجع 0؛ }")
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, MissingMain, semErr.Kind)
}

func TestTooManyParameters(t *testing.T) {
	prog := parseOrFail(t, `
		دالة س(أ، ب، ج، د، ه، و، ز) { ارجع أ؛ }
		دالة رئيسية() { ارجع 0؛ }
	`)
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, TooManyParameters, semErr.Kind)
}

func TestShadowingInInnerBlock(t *testing.T) {
	prog := parseOrFail(t, `
		دالة رئيسية() {
			متغير ن = 1؛
			اذا (ن == 1) {
				متغير ن = 2؛
				اطبع(ن)؛
			}
			اطبع(ن)؛
			ارجع 0؛
		}
	`)
	assert.NoError(t, Check(prog))
}

func TestVarDeclOnlyVisibleAfterItself(t *testing.T) {
	prog := parseOrFail(t, "دالة رئيسية() { اطبع(ن)؛ متغير ن = 1؛ ارجع 0؛ }")
	err := Check(prog)
	var semErr *Error
	require.ErrorAs(t, err, &semErr)
	assert.Equal(t, UndefinedVariable, semErr.Kind)
}

package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/math-compiler/parser"
	"github.com/skx/math-compiler/sema"
)

func mustGenerate(t *testing.T, src string) string {
	t.Helper()
	p, err := parser.New(src)
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	require.NoError(t, sema.Check(prog))
	return New().Generate(prog)
}

func TestModulePrologueCallsMangledMain(t *testing.T) {
	asm := mustGenerate(t, "دالة رئيسية() { ارجع 0؛ }")
	assert.True(t, strings.HasPrefix(asm, ".text\n.globl _start\n"))
	assert.Contains(t, asm, "call "+mangle("رئيسية"))
	assert.Contains(t, asm, "movq $60, %rax")
}

func TestFunctionHasFrameAndEpilogue(t *testing.T) {
	asm := mustGenerate(t, `
		دالة رئيسية() {
			متغير ن = 1؛
			ارجع ن؛
		}
	`)
	assert.Contains(t, asm, mangle("رئيسية")+":")
	assert.Contains(t, asm, "subq $16, %rsp")
	assert.Contains(t, asm, "popq %rbp")
	assert.Contains(t, asm, "ret")
}

func TestNoLocalsFrameSizeIsZero(t *testing.T) {
	asm := mustGenerate(t, "دالة رئيسية() { ارجع 0؛ }")
	assert.Contains(t, asm, "subq $0, %rsp")
}

func TestPrintCallsHelperOnce(t *testing.T) {
	asm := mustGenerate(t, `
		دالة رئيسية() {
			اطبع(1)؛
			اطبع(2)؛
			ارجع 0؛
		}
	`)
	assert.Equal(t, 2, strings.Count(asm, "call print_int"))
	assert.Equal(t, 1, strings.Count(asm, "print_int:"))
}

func TestLabelsAreUniquePerCompilation(t *testing.T) {
	asm := mustGenerate(t, `
		دالة رئيسية() {
			اذا (1 < 2) { اطبع(1)؛ } والا { اطبع(2)؛ }
			بينما (0) { اطبع(3)؛ }
			ارجع 0؛
		}
	`)
	seen := map[string]bool{}
	for _, line := range strings.Split(asm, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, ".L") && strings.HasSuffix(line, ":") {
			assert.False(t, seen[line], "label %q defined more than once", line)
			seen[line] = true
		}
	}
	assert.NotEmpty(t, seen)
}

func TestCallArgumentsPassedInOrder(t *testing.T) {
	asm := mustGenerate(t, `
		دالة جمع(أ، ب) { ارجع أ + ب؛ }
		دالة رئيسية() { اطبع(جمع(1، 2))؛ ارجع 0؛ }
	`)
	assert.Contains(t, asm, "popq %rdi")
	assert.Contains(t, asm, "popq %rsi")
	assert.Contains(t, asm, "call "+mangle("جمع"))
}

func TestGenerateIsDeterministic(t *testing.T) {
	src := `
		دالة مضروب(ن) {
			اذا (ن < 2) { ارجع 1؛ }
			ارجع ن * مضروب(ن - 1)؛
		}
		دالة رئيسية() {
			متغير م = مضروب(5)؛
			اطبع(م)؛
			ارجع 0؛
		}
	`
	first := mustGenerate(t, src)
	second := mustGenerate(t, src)
	assert.Equal(t, first, second)
}

func TestChainedComparisonLowersLeftAssociatively(t *testing.T) {
	asm := mustGenerate(t, `
		دالة رئيسية() {
			اذا (1 < 2 < 0) { اطبع(1)؛ }
			ارجع 0؛
		}
	`)
	assert.Contains(t, asm, "setl %al")
}

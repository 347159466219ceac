package codegen

import (
	"fmt"
	"strings"
)

// mangle turns an Arabic (or otherwise non-ASCII-identifier) function name
// into a valid GNU assembler symbol: every scalar outside
// [A-Za-z0-9_] becomes `_u<hex>`, and the whole thing is prefixed with
// `fn_` so it can never collide with a directive or register name.
func mangle(name string) string {
	var b strings.Builder
	b.WriteString("fn_")
	for _, r := range name {
		if isPlainASCII(r) {
			b.WriteRune(r)
		} else {
			fmt.Fprintf(&b, "_u%x", r)
		}
	}
	return b.String()
}

func isPlainASCII(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

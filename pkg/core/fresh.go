package core

import (
	"strconv"
	"strings"
)

var subscripts = []rune("₀₁₂₃₄₅₆₇₈₉")

func subscript(n int) string {
	var sb strings.Builder
	for _, d := range strconv.Itoa(n) {
		sb.WriteRune(subscripts[d-'0'])
	}
	return sb.String()
}

func trimSubscript(name string) string {
	return strings.TrimRightFunc(name, func(r rune) bool {
		return r >= subscripts[0] && r <= subscripts[9]
	})
}

// Fresh returns name, or name with the smallest subscript that is not bound
// in ctx.
func Fresh(ctx Context, name string) string {
	return FreshAvoiding(ctx, name, nil)
}

// FreshAvoiding is Fresh that also avoids the names in used.
func FreshAvoiding(ctx Context, name string, used map[string]bool) string {
	if name == "" || name == "_" {
		name = "x"
	}
	taken := func(n string) bool { return used[n] || ctx.Has(n) }
	if !taken(name) {
		return name
	}
	base := trimSubscript(name)
	if base == "" {
		base = "x"
	}
	for i := 1; ; i++ {
		candidate := base + subscript(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

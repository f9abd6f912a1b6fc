package check

import (
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// Show reads a type back for display.
func Show(ctx core.Context, t core.Value) string {
	return core.ReadBackType(ctx, t).String()
}

// ShowValue reads a value back at type t for display.
func ShowValue(ctx core.Context, t, v core.Value) string {
	return core.ReadBack(ctx, t, v).String()
}

// SameType fails unless the two types have α-equivalent normal forms.
func SameType(ctx core.Context, loc syntax.Location, given, expected core.Value) error {
	g := core.ReadBackType(ctx, given)
	e := core.ReadBackType(ctx, expected)
	if !core.AlphaEquiv(g, e) {
		return syntax.Errorf(loc, "expected %s, but the type is %s", e, g)
	}
	return nil
}

// Convert fails unless a and b have α-equivalent normal forms at type t.
func Convert(ctx core.Context, loc syntax.Location, t, a, b core.Value) error {
	ac := core.ReadBack(ctx, t, a)
	bc := core.ReadBack(ctx, t, b)
	if !core.AlphaEquiv(ac, bc) {
		return syntax.Errorf(loc, "the %s %s is not the same as %s", core.ReadBackType(ctx, t), ac, bc)
	}
	return nil
}

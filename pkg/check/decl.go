package check

import (
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// AddClaim checks that t is a type and records name as claimed at it.
func AddClaim(ctx core.Context, name string, loc syntax.Location, t syntax.Source) (core.Context, error) {
	if ctx.Has(name) {
		return ctx, syntax.Errorf(loc, "the name %s is already in use", name)
	}
	tc, err := IsType(ctx, nil, t)
	if err != nil {
		return ctx, err
	}
	return ctx.BindClaim(name, Eval(ctx, tc))
}

// AddDefine elaborates expr and binds name to its value. A claimed name is
// checked against its claim, which the definition then replaces; an
// unclaimed one must synthesize.
func AddDefine(ctx core.Context, name string, loc syntax.Location, expr syntax.Source) (core.Context, error) {
	b, found := ctx.Lookup(name)
	if !found {
		c, t, err := Synth(ctx, nil, expr)
		if err != nil {
			return ctx, err
		}
		return ctx.BindVal(name, t, Eval(ctx, c))
	}
	claim, ok := b.(*core.Claim)
	if !ok {
		return ctx, syntax.Errorf(loc, "the name %s is already defined", name)
	}
	c, err := Check(ctx, nil, expr, claim.T)
	if err != nil {
		return ctx, err
	}
	return BindDefinition(ctx, name, claim.T, Eval(ctx, c))
}

// BindDefinition replaces the claim for name with its definition.
func BindDefinition(ctx core.Context, name string, t, v core.Value) (core.Context, error) {
	return ctx.RemoveClaim(name).BindVal(name, t, v)
}

// CheckSame elaborates t, checks both sides against it, and requires them to
// be the same.
func CheckSame(ctx core.Context, loc syntax.Location, t, left, right syntax.Source) error {
	tc, err := IsType(ctx, nil, t)
	if err != nil {
		return err
	}
	tv := Eval(ctx, tc)
	l, err := Check(ctx, nil, left, tv)
	if err != nil {
		return err
	}
	rc, err := Check(ctx, nil, right, tv)
	if err != nil {
		return err
	}
	return Convert(ctx, loc, tv, Eval(ctx, l), Eval(ctx, rc))
}

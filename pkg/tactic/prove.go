package tactic

import (
	"log/slog"

	"github.com/vito/pie/pkg/check"
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// Prove runs a define-tactically declaration. The name must be claimed; the
// extracted proof replaces the claim.
func Prove(ctx core.Context, d *syntax.DefineTactically) (core.Context, *ProofState, error) {
	b, found := ctx.Lookup(d.Name)
	claim, ok := b.(*core.Claim)
	if !found || !ok {
		return ctx, nil, syntax.Errorf(d.Location, "%s must be claimed before it can be defined tactically", d.Name)
	}
	ps := NewProofState(ctx, claim.T)
	for _, tac := range d.Tactics {
		if err := ps.Run(tac); err != nil {
			return ctx, ps, err
		}
	}
	if ps.pendingBranches > 0 {
		return ctx, ps, syntax.Errorf(d.Location, "missing then for %s of %s", pluralize(ps.pendingBranches, "branch", "branches"), d.Name)
	}
	if !ps.Complete() {
		return ctx, ps, syntax.Errorf(d.Location, "the proof of %s is incomplete; the next goal is\n%s", d.Name, ps.Goals()[0])
	}
	term, err := ps.Extract()
	if err != nil {
		return ctx, ps, err
	}
	slog.Debug("extracted proof", "name", d.Name, "term", term)
	out, err := check.BindDefinition(ctx, d.Name, claim.T, check.Eval(ctx, term))
	if err != nil {
		return ctx, ps, syntax.Errorf(d.Location, "%s", err)
	}
	return out, ps, nil
}

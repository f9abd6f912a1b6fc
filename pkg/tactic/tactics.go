package tactic

import (
	"fmt"
	"log/slog"

	"github.com/vito/pie/pkg/check"
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// Run applies one tactic to the proof state.
func (ps *ProofState) Run(tac syntax.Tactic) error {
	if then, ok := tac.(*syntax.Then); ok {
		return ps.runThen(then)
	}
	if ps.pendingBranches > 0 {
		return syntax.Errorf(tac.Loc(), "%s cannot be used while %s waiting; use then to work on each one",
			tac.Name(), pluralize(ps.pendingBranches, "branch is", "branches are"))
	}
	id, ok := ps.Current()
	if !ok {
		return syntax.Errorf(tac.Loc(), "%s has nothing to do: no goals remain", tac.Name())
	}
	slog.Debug("applying tactic", "tactic", tac.Name(), "goal", ps.nodes[id].Goal.ID)
	branches, err := ps.apply(id, tac)
	if err != nil {
		return err
	}
	ps.pendingBranches = branches
	return nil
}

// runThen works on the current goal alone. Every tactic in the block applies
// inside it, and the block must finish it.
func (ps *ProofState) runThen(then *syntax.Then) error {
	id, ok := ps.Current()
	if !ok {
		return syntax.Errorf(then.Loc(), "then has nothing to do: no goals remain")
	}
	outerPending, outerBranches := ps.pending, ps.pendingBranches
	ps.pending, ps.pendingBranches = []NodeID{id}, 0
	for _, tac := range then.Tactics {
		if err := ps.Run(tac); err != nil {
			return err
		}
	}
	if ps.pendingBranches > 0 {
		return syntax.Errorf(then.Loc(), "missing then for %s in this block", pluralize(ps.pendingBranches, "branch", "branches"))
	}
	if !ps.IsComplete(id) {
		return syntax.Errorf(then.Loc(), "%s is not finished; the remaining goal is\n%s", ps.branchName(id), ps.Goals()[0])
	}
	ps.pending = outerPending[1:]
	ps.pendingBranches = max(outerBranches-1, 0)
	return nil
}

// branchName describes goal id by the tactic that opened it.
func (ps *ProofState) branchName(id NodeID) string {
	parent := ps.nodes[id].Parent
	if parent == noParent {
		return "the proof"
	}
	p := &ps.nodes[parent]
	for i, c := range p.Children {
		if c == id && len(p.Children) > 1 {
			return fmt.Sprintf("branch %d of %s", i+1, p.Tactic.Name())
		}
	}
	return fmt.Sprintf("the goal left by %s", p.Tactic.Name())
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// apply refines goal id with tac and returns how many then blocks the new
// children need.
func (ps *ProofState) apply(id NodeID, tac syntax.Tactic) (int, error) {
	g := ps.nodes[id].Goal
	switch tac := tac.(type) {
	case *syntax.Intro:
		return 0, ps.intro(id, g, tac)
	case *syntax.Exact:
		c, err := check.Check(g.Ctx, g.Renaming, tac.Expr, g.Type)
		if err != nil {
			return 0, err
		}
		ps.solve(id, c)
		return 0, nil
	case *syntax.Exists:
		return 0, ps.exists(id, g, tac)
	case *syntax.GoLeft:
		either, ok := core.Now(g.Type).(*core.VEither)
		if !ok {
			return 0, goalMismatch(tac, g, "an Either")
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core { return &core.Left{Value: cs[0]} },
			childGoal{g.Ctx, g.Renaming, either.Left})
		return 0, nil
	case *syntax.GoRight:
		either, ok := core.Now(g.Type).(*core.VEither)
		if !ok {
			return 0, goalMismatch(tac, g, "an Either")
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core { return &core.Right{Value: cs[0]} },
			childGoal{g.Ctx, g.Renaming, either.Right})
		return 0, nil
	case *syntax.SplitPair:
		return 2, ps.splitPair(id, g, tac)
	case *syntax.Apply:
		return 0, ps.applyFun(id, g, tac)
	case *syntax.Elim:
		return ps.elim(id, g, tac)
	}
	return 0, syntax.Errorf(tac.Loc(), "unknown tactic %s", tac.Name())
}

func goalMismatch(tac syntax.Tactic, g Goal, want string) error {
	return syntax.Errorf(tac.Loc(), "%s needs the goal to be %s, but it is %s", tac.Name(), want, check.Show(g.Ctx, g.Type))
}

func (ps *ProofState) intro(id NodeID, g Goal, tac *syntax.Intro) error {
	pi, ok := core.Now(g.Type).(*core.VPi)
	if !ok {
		return goalMismatch(tac, g, "a function type")
	}
	ctx, r, x, err := check.Bind(g.Ctx, g.Renaming, tac.Location, tac.Var, pi.Domain)
	if err != nil {
		return err
	}
	ps.refine(id, tac, func(cs []core.Core) core.Core { return &core.Lambda{Name: x, Body: cs[0]} },
		childGoal{ctx, r, pi.Range.Apply(core.VarValue(x, pi.Domain))})
	return nil
}

// exists picks the first component of a Σ goal. The witness is defined in
// the remaining goal, so the proof of the second component is wrapped in a λ
// applied to it.
func (ps *ProofState) exists(id NodeID, g Goal, tac *syntax.Exists) error {
	sigma, ok := core.Now(g.Type).(*core.VSigma)
	if !ok {
		return goalMismatch(tac, g, "a pair type")
	}
	w, err := check.Check(g.Ctx, g.Renaming, tac.Value, sigma.CarType)
	if err != nil {
		return err
	}
	wv := check.Eval(g.Ctx, w)
	name := tac.Var
	if name == "" {
		name = sigma.Name
	}
	x := core.Fresh(g.Ctx, name)
	ctx, err := g.Ctx.BindVal(x, sigma.CarType, wv)
	if err != nil {
		return syntax.Errorf(tac.Location, "%s", err)
	}
	ps.refine(id, tac, func(cs []core.Core) core.Core {
		return &core.Cons{Car: w, Cdr: &core.App{Fun: &core.Lambda{Name: x, Body: cs[0]}, Arg: w}}
	}, childGoal{ctx, g.Renaming.Extend(name, x), sigma.CdrType.Apply(wv)})
	return nil
}

// splitPair proves a non-dependent pair one side at a time.
func (ps *ProofState) splitPair(id NodeID, g Goal, tac *syntax.SplitPair) error {
	sigma, ok := core.Now(g.Type).(*core.VSigma)
	if !ok {
		return goalMismatch(tac, g, "a pair type")
	}
	// Instantiate the second component at two distinct variables; the
	// results agree only when neither variable occurs.
	a := core.Fresh(g.Ctx, sigma.Name)
	b := core.FreshAvoiding(g.Ctx, sigma.Name, map[string]bool{a: true})
	actx, err := g.Ctx.BindFree(a, sigma.CarType)
	if err != nil {
		return syntax.Errorf(tac.Location, "%s", err)
	}
	bctx, err := actx.BindFree(b, sigma.CarType)
	if err != nil {
		return syntax.Errorf(tac.Location, "%s", err)
	}
	cdrA := core.ReadBackType(bctx, sigma.CdrType.Apply(core.VarValue(a, sigma.CarType)))
	cdrB := core.ReadBackType(bctx, sigma.CdrType.Apply(core.VarValue(b, sigma.CarType)))
	if !core.AlphaEquiv(cdrA, cdrB) {
		return syntax.Errorf(tac.Location, "split-Pair cannot split %s because its second component depends on the first; use exists",
			check.Show(g.Ctx, g.Type))
	}
	ps.refine(id, tac, func(cs []core.Core) core.Core { return &core.Cons{Car: cs[0], Cdr: cs[1]} },
		childGoal{g.Ctx, g.Renaming, sigma.CarType},
		childGoal{g.Ctx, g.Renaming, check.Eval(g.Ctx, cdrA)})
	return nil
}

// applyFun works backwards from a function whose result is the goal.
func (ps *ProofState) applyFun(id NodeID, g Goal, tac *syntax.Apply) error {
	f, ft, err := check.Synth(g.Ctx, g.Renaming, tac.Fun)
	if err != nil {
		return err
	}
	pi, ok := core.Now(ft).(*core.VPi)
	if !ok {
		return syntax.Errorf(tac.Fun.Loc(), "apply needs a function, but the type is %s", check.Show(g.Ctx, ft))
	}
	x := core.Fresh(g.Ctx, pi.Name)
	xctx, err := g.Ctx.BindFree(x, pi.Domain)
	if err != nil {
		return syntax.Errorf(tac.Location, "%s", err)
	}
	if err := check.SameType(xctx, tac.Fun.Loc(), pi.Range.Apply(core.VarValue(x, pi.Domain)), g.Type); err != nil {
		return err
	}
	ps.refine(id, tac, func(cs []core.Core) core.Core { return &core.App{Fun: f, Arg: cs[0]} },
		childGoal{g.Ctx, g.Renaming, pi.Domain})
	return nil
}

// target resolves the variable an elimination tactic works on.
func target(g Goal, tac *syntax.Elim) (string, core.Value, error) {
	x, b, found := check.Lookup(g.Ctx, g.Renaming, tac.Target)
	if !found {
		return "", nil, syntax.Errorf(tac.TargetLoc, "unknown variable %s", tac.Target)
	}
	if _, ok := b.(*core.Free); !ok {
		return "", nil, syntax.Errorf(tac.TargetLoc, "%s can only eliminate a variable bound in the goal, not %s", tac.Name(), tac.Target)
	}
	return x, b.Type(), nil
}

// variableName returns the name of v when it is a bare variable.
func variableName(v core.Value) (string, bool) {
	ne, ok := core.Now(v).(*core.VNeutral)
	if !ok {
		return "", false
	}
	x, ok := ne.Neutral.(*core.NVar)
	if !ok {
		return "", false
	}
	return x.Name, true
}

// motive elaborates the tactic's motive, or abstracts one from the goal over
// the given variables. Abstraction needs the indices to be distinct
// variables, which is checked by the caller passing them in.
func motive(g Goal, tac *syntax.Elim, motiveType core.Value, over []string) (core.Core, core.Value, error) {
	if tac.Motive != nil {
		c, err := check.Check(g.Ctx, g.Renaming, tac.Motive, motiveType)
		if err != nil {
			return nil, nil, err
		}
		return c, check.Eval(g.Ctx, c), nil
	}
	var c core.Core = core.ReadBackType(g.Ctx, g.Type)
	for i := len(over) - 1; i >= 0; i-- {
		c = &core.Lambda{Name: over[i], Body: c}
	}
	return c, check.Eval(g.Ctx, c), nil
}

// indexVariables returns the names of indices when they are distinct
// variables other than the target, which lets a motive be abstracted from
// the goal.
func indexVariables(g Goal, tac *syntax.Elim, x string, indices ...core.Value) ([]string, error) {
	seen := map[string]bool{x: true}
	names := make([]string, len(indices))
	for i, idx := range indices {
		name, ok := variableName(idx)
		if !ok || seen[name] {
			if tac.Motive == nil {
				return nil, syntax.Errorf(tac.Location, "%s needs an explicit motive because index %d in the type of %s is not a distinct variable",
					tac.Name(), i+1, tac.Target)
			}
			return nil, nil
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

func (ps *ProofState) elim(id NodeID, g Goal, tac *syntax.Elim) (int, error) {
	x, tt, err := target(g, tac)
	if err != nil {
		return 0, err
	}
	tv := core.VarValue(x, tt)
	tc := &core.Var{Name: x}
	wrongType := func(want string) error {
		return syntax.Errorf(tac.TargetLoc, "%s needs %s to be %s, but its type is %s", tac.Name(), tac.Target, want, check.Show(g.Ctx, tt))
	}
	child := func(t core.Value) childGoal { return childGoal{g.Ctx, g.Renaming, t} }

	// The motive applied to the target must be the goal. Abstracted motives
	// have this by construction; explicit ones are checked.
	fits := func(result core.Value) error {
		if tac.Motive == nil {
			return nil
		}
		return check.SameType(g.Ctx, tac.Motive.Loc(), result, g.Type)
	}

	switch tac.Kind {
	case syntax.ElimNat:
		if _, ok := core.Now(tt).(*core.VNat); !ok {
			return 0, wrongType("a Nat")
		}
		mc, mv, err := motive(g, tac, core.IndNatMotiveType(), []string{x})
		if err != nil {
			return 0, err
		}
		if err := fits(core.DoApp(mv, tv)); err != nil {
			return 0, err
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.IndNat{Target: tc, Motive: mc, Base: cs[0], Step: cs[1]}
		},
			child(core.DoApp(mv, &core.VZero{})),
			child(core.IndNatStepType(mv)))
		return 2, nil

	case syntax.ElimList:
		list, ok := core.Now(tt).(*core.VList)
		if !ok {
			return 0, wrongType("a List")
		}
		mc, mv, err := motive(g, tac, core.Arrow(list, &core.VUniverse{}), []string{x})
		if err != nil {
			return 0, err
		}
		if err := fits(core.DoApp(mv, tv)); err != nil {
			return 0, err
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.IndList{Target: tc, Motive: mc, Base: cs[0], Step: cs[1]}
		},
			child(core.DoApp(mv, &core.VNil{})),
			child(core.IndListStepType(list.Elem, mv)))
		return 2, nil

	case syntax.ElimVec:
		vec, ok := core.Now(tt).(*core.VVec)
		if !ok {
			return 0, wrongType("a Vec")
		}
		over, err := indexVariables(g, tac, x, vec.Len)
		if err != nil {
			return 0, err
		}
		mc, mv, err := motive(g, tac, core.IndVecMotiveType(vec.Elem), append(over, x))
		if err != nil {
			return 0, err
		}
		if err := fits(core.DoApp(core.DoApp(mv, vec.Len), tv)); err != nil {
			return 0, err
		}
		lc := core.ReadBack(g.Ctx, &core.VNat{}, vec.Len)
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.IndVec{Len: lc, Target: tc, Motive: mc, Base: cs[0], Step: cs[1]}
		},
			child(core.DoApp(core.DoApp(mv, &core.VZero{}), &core.VVecNil{})),
			child(core.IndVecStepType(vec.Elem, mv)))
		return 2, nil

	case syntax.ElimEither:
		either, ok := core.Now(tt).(*core.VEither)
		if !ok {
			return 0, wrongType("an Either")
		}
		mc, mv, err := motive(g, tac, core.Arrow(either, &core.VUniverse{}), []string{x})
		if err != nil {
			return 0, err
		}
		if err := fits(core.DoApp(mv, tv)); err != nil {
			return 0, err
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.IndEither{Target: tc, Motive: mc, BaseLeft: cs[0], BaseRight: cs[1]}
		},
			child(core.IndEitherBaseType(either.Left, mv, func(v core.Value) core.Value { return &core.VLeft{Value: v} })),
			child(core.IndEitherBaseType(either.Right, mv, func(v core.Value) core.Value { return &core.VRight{Value: v} })))
		return 2, nil

	case syntax.ElimEqual:
		eq, ok := core.Now(tt).(*core.VEqual)
		if !ok {
			return 0, wrongType("an equality")
		}
		over, err := indexVariables(g, tac, x, eq.To)
		if err != nil {
			return 0, err
		}
		mc, mv, err := motive(g, tac, core.IndEqualMotiveType(eq.Type, eq.From), append(over, x))
		if err != nil {
			return 0, err
		}
		if err := fits(core.DoApp(core.DoApp(mv, eq.To), tv)); err != nil {
			return 0, err
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.IndEqual{Target: tc, Motive: mc, Base: cs[0]}
		},
			child(core.DoApp(core.DoApp(mv, eq.From), &core.VSame{Value: eq.From})))
		return 1, nil

	case syntax.ElimAbsurd:
		if _, ok := core.Now(tt).(*core.VAbsurd); !ok {
			return 0, wrongType("Absurd")
		}
		mc, mv, err := motive(g, tac, &core.VUniverse{}, nil)
		if err != nil {
			return 0, err
		}
		if err := fits(mv); err != nil {
			return 0, err
		}
		ps.solve(id, &core.IndAbsurd{Target: tc, Motive: mc})
		return 0, nil

	case syntax.ElimData:
		it, ok := core.Now(tt).(*core.VInductiveType)
		if !ok {
			return 0, wrongType("an inductive datatype")
		}
		dt := it.Datatype
		over, err := indexVariables(g, tac, x, it.Indices...)
		if err != nil {
			return 0, err
		}
		mc, mv, err := motive(g, tac, dt.MotiveType(it.Params), append(over, x))
		if err != nil {
			return 0, err
		}
		if err := fits(core.ApplyMotive(mv, it.Indices, tv)); err != nil {
			return 0, err
		}
		methods := make([]childGoal, len(dt.Constructors))
		for i, c := range dt.Constructors {
			methods[i] = child(c.MethodType(it.Params, mv))
		}
		ps.refine(id, tac, func(cs []core.Core) core.Core {
			return &core.Eliminator{Datatype: dt, Target: tc, Motive: mc, Methods: cs}
		}, methods...)
		if len(methods) == 0 {
			// No constructors: the proof is done.
			return 0, nil
		}
		return len(methods), nil
	}
	return 0, fmt.Errorf("unknown elimination %s", tac.Kind)
}

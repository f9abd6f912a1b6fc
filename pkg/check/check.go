// Package check elaborates surface syntax into Core terms with a
// bidirectional type checker.
//
// Synth infers the type of self-evident syntax (variables, applications,
// eliminators, annotations). Check handles syntax that needs an expected type
// (λ, cons, same, left/right, nil, vecnil, vec::, constructors) and falls
// back to Synth followed by SameType. Both consult the evaluator for
// definitional equality, which is decided by reading values back to normal
// form and comparing them up to α-equivalence.
package check

import (
	"unicode"

	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// Eval evaluates an elaborated term in ctx.
func Eval(ctx core.Context, c core.Core) core.Value {
	return core.Eval(ctx.Env(), c)
}

// Bind introduces a fresh variable for the user's name and records the
// renaming.
func Bind(ctx core.Context, r *Renaming, loc syntax.Location, name string, t core.Value) (core.Context, *Renaming, string, error) {
	x := core.Fresh(ctx, name)
	next, err := ctx.BindFree(x, t)
	if err != nil {
		return ctx, r, "", syntax.Errorf(loc, "%s", err)
	}
	if name != "" {
		r = r.Extend(name, x)
	}
	return next, r, x, nil
}

// Lookup resolves a user name through r.
func Lookup(ctx core.Context, r *Renaming, name string) (string, core.Binder, bool) {
	x := r.Rename(name)
	b, found := ctx.Lookup(x)
	return x, b, found
}

type teleEntry struct {
	loc  syntax.Location
	name string
	typ  syntax.Source
}

type elaborator func(core.Context, *Renaming, syntax.Source) (core.Core, error)

// telescope elaborates nested single-binder forms, each binder freshened
// and in scope for the ones after it.
func telescope(ctx core.Context, r *Renaming, entries []teleEntry, body syntax.Source, elab elaborator, mk func(string, core.Core, core.Core) core.Core) (core.Core, error) {
	if len(entries) == 0 {
		return elab(ctx, r, body)
	}
	e := entries[0]
	dom, err := elab(ctx, r, e.typ)
	if err != nil {
		return nil, err
	}
	inner, ir, x, err := Bind(ctx, r, e.loc, e.name, Eval(ctx, dom))
	if err != nil {
		return nil, err
	}
	rest, err := telescope(inner, ir, entries[1:], body, elab, mk)
	if err != nil {
		return nil, err
	}
	return mk(x, dom, rest), nil
}

func binderEntries(bs []syntax.Binder) []teleEntry {
	entries := make([]teleEntry, len(bs))
	for i, b := range bs {
		entries[i] = teleEntry{loc: b.Loc, name: b.Name, typ: b.Type}
	}
	return entries
}

func arrowEntries(args []syntax.Source) []teleEntry {
	entries := make([]teleEntry, len(args))
	for i, a := range args {
		entries[i] = teleEntry{loc: a.Loc(), typ: a}
	}
	return entries
}

func mkPi(x string, dom, rng core.Core) core.Core {
	return &core.Pi{Name: x, Domain: dom, Range: rng}
}

func mkSigma(x string, car, cdr core.Core) core.Core {
	return &core.Sigma{Name: x, CarType: car, CdrType: cdr}
}

// IsType elaborates e as a type. Unlike checking against U, it accepts U
// itself and function or pair types mentioning U.
func IsType(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, error) {
	switch e := e.(type) {
	case *syntax.U:
		return &core.Universe{}, nil
	case *syntax.Pi:
		return telescope(ctx, r, binderEntries(e.Binders), e.Range, IsType, mkPi)
	case *syntax.Arrow:
		return telescope(ctx, r, arrowEntries(e.Args), e.Range, IsType, mkPi)
	case *syntax.Sigma:
		return telescope(ctx, r, binderEntries(e.Binders), e.Body, IsType, mkSigma)
	case *syntax.Pair:
		return telescope(ctx, r, arrowEntries([]syntax.Source{e.Car}), e.Cdr, IsType, mkSigma)
	}
	return Check(ctx, r, e, &core.VUniverse{})
}

func checkU(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, error) {
	return Check(ctx, r, e, &core.VUniverse{})
}

func numeral(n int) core.Core {
	var c core.Core = &core.Zero{}
	for range n {
		c = &core.Add1{N: c}
	}
	return c
}

func validAtom(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && c != '-' {
			return false
		}
	}
	return true
}

// Synth infers the type of e, returning its elaboration and its type.
func Synth(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, core.Value, error) {
	switch e := e.(type) {
	case *syntax.The:
		t, err := IsType(ctx, r, e.Type)
		if err != nil {
			return nil, nil, err
		}
		tv := Eval(ctx, t)
		v, err := Check(ctx, r, e.Value, tv)
		if err != nil {
			return nil, nil, err
		}
		return &core.The{Type: t, Value: v}, tv, nil

	case *syntax.Var:
		return synthVar(ctx, r, e)

	case *syntax.U:
		return nil, nil, syntax.Errorf(e.Loc(), "U is a type, but it does not have a type")

	case *syntax.Nat:
		return &core.Nat{}, &core.VUniverse{}, nil
	case *syntax.Atom:
		return &core.Atom{}, &core.VUniverse{}, nil
	case *syntax.Trivial:
		return &core.Trivial{}, &core.VUniverse{}, nil
	case *syntax.Absurd:
		return &core.Absurd{}, &core.VUniverse{}, nil

	case *syntax.Zero:
		return &core.Zero{}, &core.VNat{}, nil
	case *syntax.NatLit:
		if e.N < 0 {
			return nil, nil, syntax.Errorf(e.Loc(), "natural numbers cannot be negative")
		}
		return numeral(e.N), &core.VNat{}, nil
	case *syntax.Add1:
		n, err := Check(ctx, r, e.N, &core.VNat{})
		if err != nil {
			return nil, nil, err
		}
		return &core.Add1{N: n}, &core.VNat{}, nil

	case *syntax.Quote:
		if !validAtom(e.Name) {
			return nil, nil, syntax.Errorf(e.Loc(), "invalid atom '%s: atoms consist of letters and hyphens", e.Name)
		}
		return &core.Quote{Name: e.Name}, &core.VAtom{}, nil
	case *syntax.Sole:
		return &core.Sole{}, &core.VTrivial{}, nil

	case *syntax.Pi:
		t, err := telescope(ctx, r, binderEntries(e.Binders), e.Range, checkU, mkPi)
		return t, &core.VUniverse{}, err
	case *syntax.Arrow:
		t, err := telescope(ctx, r, arrowEntries(e.Args), e.Range, checkU, mkPi)
		return t, &core.VUniverse{}, err
	case *syntax.Sigma:
		t, err := telescope(ctx, r, binderEntries(e.Binders), e.Body, checkU, mkSigma)
		return t, &core.VUniverse{}, err
	case *syntax.Pair:
		t, err := telescope(ctx, r, arrowEntries([]syntax.Source{e.Car}), e.Cdr, checkU, mkSigma)
		return t, &core.VUniverse{}, err

	case *syntax.App:
		return synthApp(ctx, r, e)

	case *syntax.Car:
		p, pt, err := Synth(ctx, r, e.Pair)
		if err != nil {
			return nil, nil, err
		}
		sigma, ok := core.Now(pt).(*core.VSigma)
		if !ok {
			return nil, nil, syntax.Errorf(e.Pair.Loc(), "expected a pair, but the type is %s", Show(ctx, pt))
		}
		return &core.Car{Pair: p}, sigma.CarType, nil
	case *syntax.Cdr:
		p, pt, err := Synth(ctx, r, e.Pair)
		if err != nil {
			return nil, nil, err
		}
		sigma, ok := core.Now(pt).(*core.VSigma)
		if !ok {
			return nil, nil, syntax.Errorf(e.Pair.Loc(), "expected a pair, but the type is %s", Show(ctx, pt))
		}
		return &core.Cdr{Pair: p}, sigma.CdrType.Apply(core.DoCar(Eval(ctx, p))), nil

	case *syntax.WhichNat, *syntax.IterNat, *syntax.RecNat:
		return synthNatRecursor(ctx, r, e)
	case *syntax.IndNat:
		return synthIndNat(ctx, r, e)

	case *syntax.List:
		elem, err := checkU(ctx, r, e.Elem)
		if err != nil {
			return nil, nil, err
		}
		return &core.List{Elem: elem}, &core.VUniverse{}, nil
	case *syntax.ListCons:
		h, ht, err := Synth(ctx, r, e.Head)
		if err != nil {
			return nil, nil, err
		}
		lt := &core.VList{Elem: ht}
		t, err := Check(ctx, r, e.Tail, lt)
		if err != nil {
			return nil, nil, err
		}
		return &core.ListCons{Head: h, Tail: t}, lt, nil
	case *syntax.RecList:
		return synthRecList(ctx, r, e)
	case *syntax.IndList:
		return synthIndList(ctx, r, e)

	case *syntax.Vec:
		elem, err := checkU(ctx, r, e.Elem)
		if err != nil {
			return nil, nil, err
		}
		n, err := Check(ctx, r, e.Len, &core.VNat{})
		if err != nil {
			return nil, nil, err
		}
		return &core.Vec{Elem: elem, Len: n}, &core.VUniverse{}, nil
	case *syntax.Head:
		v, vt, err := synthNonEmptyVec(ctx, r, e.Vec)
		if err != nil {
			return nil, nil, err
		}
		return &core.Head{Vec: v}, vt.Elem, nil
	case *syntax.Tail:
		v, vt, err := synthNonEmptyVec(ctx, r, e.Vec)
		if err != nil {
			return nil, nil, err
		}
		smaller := core.Now(vt.Len).(*core.VAdd1).Smaller
		return &core.Tail{Vec: v}, &core.VVec{Elem: vt.Elem, Len: smaller}, nil
	case *syntax.IndVec:
		return synthIndVec(ctx, r, e)

	case *syntax.Equal:
		t, err := checkU(ctx, r, e.Type)
		if err != nil {
			return nil, nil, err
		}
		tv := Eval(ctx, t)
		from, err := Check(ctx, r, e.From, tv)
		if err != nil {
			return nil, nil, err
		}
		to, err := Check(ctx, r, e.To, tv)
		if err != nil {
			return nil, nil, err
		}
		return &core.Equal{Type: t, From: from, To: to}, &core.VUniverse{}, nil
	case *syntax.Replace:
		return synthReplace(ctx, r, e)
	case *syntax.Trans:
		return synthTrans(ctx, r, e)
	case *syntax.Cong:
		return synthCong(ctx, r, e)
	case *syntax.Symm:
		p, eq, err := synthEqual(ctx, r, e.Target)
		if err != nil {
			return nil, nil, err
		}
		return &core.Symm{Target: p}, &core.VEqual{Type: eq.Type, From: eq.To, To: eq.From}, nil
	case *syntax.IndEqual:
		return synthIndEqual(ctx, r, e)

	case *syntax.Either:
		left, err := checkU(ctx, r, e.Left)
		if err != nil {
			return nil, nil, err
		}
		right, err := checkU(ctx, r, e.Right)
		if err != nil {
			return nil, nil, err
		}
		return &core.Either{Left: left, Right: right}, &core.VUniverse{}, nil
	case *syntax.IndEither:
		return synthIndEither(ctx, r, e)

	case *syntax.IndAbsurd:
		target, err := Check(ctx, r, e.Target, &core.VAbsurd{})
		if err != nil {
			return nil, nil, err
		}
		motive, err := checkU(ctx, r, e.Motive)
		if err != nil {
			return nil, nil, err
		}
		return &core.IndAbsurd{Target: target, Motive: motive}, Eval(ctx, motive), nil

	case *syntax.Lambda:
		return nil, nil, syntax.Errorf(e.Loc(), "cannot determine the type of a λ expression; annotate it with the")
	case *syntax.TODO:
		return nil, nil, syntax.Errorf(e.Loc(), "cannot determine the type of TODO; annotate it with the")
	}
	return nil, nil, syntax.Errorf(e.Loc(), "cannot determine the type of this expression; annotate it with the")
}

func synthVar(ctx core.Context, r *Renaming, e *syntax.Var) (core.Core, core.Value, error) {
	name, b, found := Lookup(ctx, r, e.Name)
	if !found {
		return nil, nil, syntax.Errorf(e.Loc(), "unknown variable %s", e.Name)
	}
	switch b := b.(type) {
	case *core.Free, *core.Define:
		return &core.Var{Name: name}, b.Type(), nil
	case *core.Claim:
		return nil, nil, syntax.Errorf(e.Loc(), "%s is claimed but not yet defined", e.Name)
	case *core.DataBinder:
		dt := b.Datatype
		if len(dt.Params)+len(dt.Indices) > 0 {
			return nil, nil, syntax.Errorf(e.Loc(), "%s expects %d arguments", dt.Name, len(dt.Params)+len(dt.Indices))
		}
		return &core.InductiveType{Datatype: dt}, &core.VUniverse{}, nil
	case *core.CtorBinder:
		return synthConstructor(ctx, r, e.Loc(), b.Ctor, nil)
	case *core.ElimBinder:
		return nil, nil, syntax.Errorf(e.Loc(), "%s must be applied to a target, a motive and %d methods",
			e.Name, len(b.Datatype.Constructors))
	}
	return nil, nil, syntax.Errorf(e.Loc(), "cannot use %s here", e.Name)
}

func synthApp(ctx core.Context, r *Renaming, e *syntax.App) (core.Core, core.Value, error) {
	if head, ok := e.Fun.(*syntax.Var); ok {
		if _, b, found := Lookup(ctx, r, head.Name); found {
			switch b := b.(type) {
			case *core.DataBinder:
				return synthTypeFormer(ctx, r, e, b.Datatype)
			case *core.CtorBinder:
				return synthConstructor(ctx, r, e.Loc(), b.Ctor, e.Args)
			case *core.ElimBinder:
				return synthEliminator(ctx, r, e, b.Datatype)
			}
		}
	}

	fun, ft, err := Synth(ctx, r, e.Fun)
	if err != nil {
		return nil, nil, err
	}
	for _, arg := range e.Args {
		pi, ok := core.Now(ft).(*core.VPi)
		if !ok {
			return nil, nil, syntax.Errorf(e.Loc(), "%s is not a function type, so it cannot be applied to %d arguments",
				Show(ctx, ft), len(e.Args))
		}
		a, err := Check(ctx, r, arg, pi.Domain)
		if err != nil {
			return nil, nil, err
		}
		fun = &core.App{Fun: fun, Arg: a}
		ft = pi.Range.Apply(Eval(ctx, a))
	}
	return fun, ft, nil
}

// synthNatRecursor handles which-Nat, iter-Nat and rec-Nat, which differ
// only in the type of their step.
func synthNatRecursor(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, core.Value, error) {
	var target, base, step syntax.Source
	var stepType func(bt core.Value) core.Value
	var mk func(t, bt, b, s core.Core) core.Core
	switch e := e.(type) {
	case *syntax.WhichNat:
		target, base, step = e.Target, e.Base, e.Step
		stepType = func(bt core.Value) core.Value { return core.Arrow(&core.VNat{}, bt) }
		mk = func(t, bt, b, s core.Core) core.Core {
			return &core.WhichNat{Target: t, BaseType: bt, Base: b, Step: s}
		}
	case *syntax.IterNat:
		target, base, step = e.Target, e.Base, e.Step
		stepType = func(bt core.Value) core.Value { return core.Arrow(bt, bt) }
		mk = func(t, bt, b, s core.Core) core.Core {
			return &core.IterNat{Target: t, BaseType: bt, Base: b, Step: s}
		}
	case *syntax.RecNat:
		target, base, step = e.Target, e.Base, e.Step
		stepType = func(bt core.Value) core.Value { return core.Arrow(&core.VNat{}, core.Arrow(bt, bt)) }
		mk = func(t, bt, b, s core.Core) core.Core {
			return &core.RecNat{Target: t, BaseType: bt, Base: b, Step: s}
		}
	}

	t, err := Check(ctx, r, target, &core.VNat{})
	if err != nil {
		return nil, nil, err
	}
	b, bt, err := Synth(ctx, r, base)
	if err != nil {
		return nil, nil, err
	}
	s, err := Check(ctx, r, step, stepType(bt))
	if err != nil {
		return nil, nil, err
	}
	return mk(t, core.ReadBackType(ctx, bt), b, s), bt, nil
}

func synthIndNat(ctx core.Context, r *Renaming, e *syntax.IndNat) (core.Core, core.Value, error) {
	t, err := Check(ctx, r, e.Target, &core.VNat{})
	if err != nil {
		return nil, nil, err
	}
	m, err := Check(ctx, r, e.Motive, core.IndNatMotiveType())
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	b, err := Check(ctx, r, e.Base, core.DoApp(mv, &core.VZero{}))
	if err != nil {
		return nil, nil, err
	}
	s, err := Check(ctx, r, e.Step, core.IndNatStepType(mv))
	if err != nil {
		return nil, nil, err
	}
	return &core.IndNat{Target: t, Motive: m, Base: b, Step: s}, core.DoApp(mv, Eval(ctx, t)), nil
}

func synthList(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, *core.VList, error) {
	c, t, err := Synth(ctx, r, e)
	if err != nil {
		return nil, nil, err
	}
	l, ok := core.Now(t).(*core.VList)
	if !ok {
		return nil, nil, syntax.Errorf(e.Loc(), "expected a List, but the type is %s", Show(ctx, t))
	}
	return c, l, nil
}

func synthRecList(ctx core.Context, r *Renaming, e *syntax.RecList) (core.Core, core.Value, error) {
	t, lt, err := synthList(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	b, bt, err := Synth(ctx, r, e.Base)
	if err != nil {
		return nil, nil, err
	}
	stepType := core.Arrow(lt.Elem, core.Arrow(lt, core.Arrow(bt, bt)))
	s, err := Check(ctx, r, e.Step, stepType)
	if err != nil {
		return nil, nil, err
	}
	return &core.RecList{Target: t, BaseType: core.ReadBackType(ctx, bt), Base: b, Step: s}, bt, nil
}

func synthIndList(ctx core.Context, r *Renaming, e *syntax.IndList) (core.Core, core.Value, error) {
	t, lt, err := synthList(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	m, err := Check(ctx, r, e.Motive, core.Arrow(lt, &core.VUniverse{}))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	b, err := Check(ctx, r, e.Base, core.DoApp(mv, &core.VNil{}))
	if err != nil {
		return nil, nil, err
	}
	s, err := Check(ctx, r, e.Step, core.IndListStepType(lt.Elem, mv))
	if err != nil {
		return nil, nil, err
	}
	return &core.IndList{Target: t, Motive: m, Base: b, Step: s}, core.DoApp(mv, Eval(ctx, t)), nil
}

func synthVec(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, *core.VVec, error) {
	c, t, err := Synth(ctx, r, e)
	if err != nil {
		return nil, nil, err
	}
	v, ok := core.Now(t).(*core.VVec)
	if !ok {
		return nil, nil, syntax.Errorf(e.Loc(), "expected a Vec, but the type is %s", Show(ctx, t))
	}
	return c, v, nil
}

func synthNonEmptyVec(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, *core.VVec, error) {
	c, vt, err := synthVec(ctx, r, e)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := core.Now(vt.Len).(*core.VAdd1); !ok {
		return nil, nil, syntax.Errorf(e.Loc(), "expected a Vec with add1 at the top of its length, but the type is %s",
			Show(ctx, vt))
	}
	return c, vt, nil
}

func synthIndVec(ctx core.Context, r *Renaming, e *syntax.IndVec) (core.Core, core.Value, error) {
	n, err := Check(ctx, r, e.Len, &core.VNat{})
	if err != nil {
		return nil, nil, err
	}
	nv := Eval(ctx, n)
	t, vt, err := synthVec(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	if err := Convert(ctx, e.Len.Loc(), &core.VNat{}, vt.Len, nv); err != nil {
		return nil, nil, err
	}
	m, err := Check(ctx, r, e.Motive, core.IndVecMotiveType(vt.Elem))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	b, err := Check(ctx, r, e.Base, core.DoApp(core.DoApp(mv, &core.VZero{}), &core.VVecNil{}))
	if err != nil {
		return nil, nil, err
	}
	s, err := Check(ctx, r, e.Step, core.IndVecStepType(vt.Elem, mv))
	if err != nil {
		return nil, nil, err
	}
	return &core.IndVec{Len: n, Target: t, Motive: m, Base: b, Step: s},
		core.DoApp(core.DoApp(mv, nv), Eval(ctx, t)), nil
}

func synthEqual(ctx core.Context, r *Renaming, e syntax.Source) (core.Core, *core.VEqual, error) {
	c, t, err := Synth(ctx, r, e)
	if err != nil {
		return nil, nil, err
	}
	eq, ok := core.Now(t).(*core.VEqual)
	if !ok {
		return nil, nil, syntax.Errorf(e.Loc(), "expected an = type, but the type is %s", Show(ctx, t))
	}
	return c, eq, nil
}

func synthReplace(ctx core.Context, r *Renaming, e *syntax.Replace) (core.Core, core.Value, error) {
	t, eq, err := synthEqual(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	m, err := Check(ctx, r, e.Motive, core.Arrow(eq.Type, &core.VUniverse{}))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	b, err := Check(ctx, r, e.Base, core.DoApp(mv, eq.From))
	if err != nil {
		return nil, nil, err
	}
	return &core.Replace{Target: t, Motive: m, Base: b}, core.DoApp(mv, eq.To), nil
}

func synthTrans(ctx core.Context, r *Renaming, e *syntax.Trans) (core.Core, core.Value, error) {
	left, lt, err := synthEqual(ctx, r, e.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rt, err := synthEqual(ctx, r, e.Right)
	if err != nil {
		return nil, nil, err
	}
	if err := SameType(ctx, e.Right.Loc(), rt.Type, lt.Type); err != nil {
		return nil, nil, err
	}
	if err := Convert(ctx, e.Loc(), lt.Type, lt.To, rt.From); err != nil {
		return nil, nil, err
	}
	return &core.Trans{Left: left, Right: right}, &core.VEqual{Type: lt.Type, From: lt.From, To: rt.To}, nil
}

func synthCong(ctx core.Context, r *Renaming, e *syntax.Cong) (core.Core, core.Value, error) {
	t, eq, err := synthEqual(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	f, ft, err := Synth(ctx, r, e.Fun)
	if err != nil {
		return nil, nil, err
	}
	pi, ok := core.Now(ft).(*core.VPi)
	if !ok {
		return nil, nil, syntax.Errorf(e.Fun.Loc(), "expected a function, but the type is %s", Show(ctx, ft))
	}
	if err := SameType(ctx, e.Fun.Loc(), pi.Domain, eq.Type); err != nil {
		return nil, nil, err
	}
	rng := pi.Range.Apply(eq.From)
	fv := Eval(ctx, f)
	return &core.Cong{Target: t, BaseType: core.ReadBackType(ctx, rng), Fun: f},
		&core.VEqual{Type: rng, From: core.DoApp(fv, eq.From), To: core.DoApp(fv, eq.To)}, nil
}

func synthIndEqual(ctx core.Context, r *Renaming, e *syntax.IndEqual) (core.Core, core.Value, error) {
	t, eq, err := synthEqual(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	m, err := Check(ctx, r, e.Motive, core.IndEqualMotiveType(eq.Type, eq.From))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	b, err := Check(ctx, r, e.Base, core.DoApp(core.DoApp(mv, eq.From), &core.VSame{Value: eq.From}))
	if err != nil {
		return nil, nil, err
	}
	return &core.IndEqual{Target: t, Motive: m, Base: b}, core.DoApp(core.DoApp(mv, eq.To), Eval(ctx, t)), nil
}

func synthIndEither(ctx core.Context, r *Renaming, e *syntax.IndEither) (core.Core, core.Value, error) {
	t, tt, err := Synth(ctx, r, e.Target)
	if err != nil {
		return nil, nil, err
	}
	either, ok := core.Now(tt).(*core.VEither)
	if !ok {
		return nil, nil, syntax.Errorf(e.Target.Loc(), "expected an Either, but the type is %s", Show(ctx, tt))
	}
	m, err := Check(ctx, r, e.Motive, core.Arrow(either, &core.VUniverse{}))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, m)
	bl, err := Check(ctx, r, e.BaseLeft, core.IndEitherBaseType(either.Left, mv, func(x core.Value) core.Value {
		return &core.VLeft{Value: x}
	}))
	if err != nil {
		return nil, nil, err
	}
	br, err := Check(ctx, r, e.BaseRight, core.IndEitherBaseType(either.Right, mv, func(x core.Value) core.Value {
		return &core.VRight{Value: x}
	}))
	if err != nil {
		return nil, nil, err
	}
	return &core.IndEither{Target: t, Motive: m, BaseLeft: bl, BaseRight: br}, core.DoApp(mv, Eval(ctx, t)), nil
}

// Check elaborates e against the expected type tv.
func Check(ctx core.Context, r *Renaming, e syntax.Source, tv core.Value) (core.Core, error) {
	switch e := e.(type) {
	case *syntax.Lambda:
		return checkLambda(ctx, r, e, e.Params, tv)

	case *syntax.Cons:
		sigma, ok := core.Now(tv).(*core.VSigma)
		if !ok {
			return nil, mismatch(ctx, e, "cons", tv)
		}
		car, err := Check(ctx, r, e.Car, sigma.CarType)
		if err != nil {
			return nil, err
		}
		cdr, err := Check(ctx, r, e.Cdr, sigma.CdrType.Apply(Eval(ctx, car)))
		if err != nil {
			return nil, err
		}
		return &core.Cons{Car: car, Cdr: cdr}, nil

	case *syntax.Same:
		eq, ok := core.Now(tv).(*core.VEqual)
		if !ok {
			return nil, mismatch(ctx, e, "same", tv)
		}
		v, err := Check(ctx, r, e.Value, eq.Type)
		if err != nil {
			return nil, err
		}
		vv := Eval(ctx, v)
		if err := Convert(ctx, e.Loc(), eq.Type, eq.From, vv); err != nil {
			return nil, err
		}
		if err := Convert(ctx, e.Loc(), eq.Type, vv, eq.To); err != nil {
			return nil, err
		}
		return &core.Same{Value: v}, nil

	case *syntax.Left:
		either, ok := core.Now(tv).(*core.VEither)
		if !ok {
			return nil, mismatch(ctx, e, "left", tv)
		}
		v, err := Check(ctx, r, e.Value, either.Left)
		if err != nil {
			return nil, err
		}
		return &core.Left{Value: v}, nil
	case *syntax.Right:
		either, ok := core.Now(tv).(*core.VEither)
		if !ok {
			return nil, mismatch(ctx, e, "right", tv)
		}
		v, err := Check(ctx, r, e.Value, either.Right)
		if err != nil {
			return nil, err
		}
		return &core.Right{Value: v}, nil

	case *syntax.Nil:
		if _, ok := core.Now(tv).(*core.VList); !ok {
			return nil, mismatch(ctx, e, "nil", tv)
		}
		return &core.Nil{}, nil
	case *syntax.ListCons:
		lt, ok := core.Now(tv).(*core.VList)
		if !ok {
			return nil, mismatch(ctx, e, "::", tv)
		}
		h, err := Check(ctx, r, e.Head, lt.Elem)
		if err != nil {
			return nil, err
		}
		t, err := Check(ctx, r, e.Tail, lt)
		if err != nil {
			return nil, err
		}
		return &core.ListCons{Head: h, Tail: t}, nil

	case *syntax.VecNil:
		vt, ok := core.Now(tv).(*core.VVec)
		if !ok {
			return nil, mismatch(ctx, e, "vecnil", tv)
		}
		if _, ok := core.Now(vt.Len).(*core.VZero); !ok {
			return nil, syntax.Errorf(e.Loc(), "vecnil has length 0, but the expected length is %s",
				ShowValue(ctx, &core.VNat{}, vt.Len))
		}
		return &core.VecNil{}, nil
	case *syntax.VecCons:
		vt, ok := core.Now(tv).(*core.VVec)
		if !ok {
			return nil, mismatch(ctx, e, "vec::", tv)
		}
		add1, ok := core.Now(vt.Len).(*core.VAdd1)
		if !ok {
			return nil, syntax.Errorf(e.Loc(), "vec:: makes a non-empty Vec, but the expected length is %s",
				ShowValue(ctx, &core.VNat{}, vt.Len))
		}
		h, err := Check(ctx, r, e.Head, vt.Elem)
		if err != nil {
			return nil, err
		}
		t, err := Check(ctx, r, e.Tail, &core.VVec{Elem: vt.Elem, Len: add1.Smaller})
		if err != nil {
			return nil, err
		}
		return &core.VecCons{Head: h, Tail: t}, nil

	case *syntax.TODO:
		return &core.TODO{Loc: e.Loc(), Type: core.ReadBackType(ctx, tv)}, nil

	case *syntax.Var:
		if _, b, found := Lookup(ctx, r, e.Name); found {
			if cb, ok := b.(*core.CtorBinder); ok {
				return checkConstructor(ctx, r, e.Loc(), cb.Ctor, nil, tv)
			}
		}
	case *syntax.App:
		if head, ok := e.Fun.(*syntax.Var); ok {
			if _, b, found := Lookup(ctx, r, head.Name); found {
				if cb, ok := b.(*core.CtorBinder); ok {
					return checkConstructor(ctx, r, e.Loc(), cb.Ctor, e.Args, tv)
				}
			}
		}
	}

	c, t, err := Synth(ctx, r, e)
	if err != nil {
		return nil, err
	}
	if err := SameType(ctx, e.Loc(), t, tv); err != nil {
		return nil, err
	}
	return c, nil
}

func checkLambda(ctx core.Context, r *Renaming, e *syntax.Lambda, params []syntax.Param, tv core.Value) (core.Core, error) {
	if len(params) == 0 {
		return Check(ctx, r, e.Body, tv)
	}
	pi, ok := core.Now(tv).(*core.VPi)
	if !ok {
		return nil, mismatch(ctx, e, "a λ expression", tv)
	}
	p := params[0]
	inner, ir, x, err := Bind(ctx, r, p.Loc, p.Name, pi.Domain)
	if err != nil {
		return nil, err
	}
	body, err := checkLambda(inner, ir, e, params[1:], pi.Range.Apply(core.VarValue(x, pi.Domain)))
	if err != nil {
		return nil, err
	}
	return &core.Lambda{Name: x, Body: body}, nil
}

func mismatch(ctx core.Context, e syntax.Source, what string, tv core.Value) error {
	return syntax.Errorf(e.Loc(), "expected %s, but %s cannot have that type", Show(ctx, tv), what)
}

package core

// Eval computes the value of a Core term in env. It never fails on well-typed
// input; ill-typed input is a ContractViolation.
func Eval(env *Env, c Core) Value {
	switch e := c.(type) {
	case *Universe:
		return &VUniverse{}
	case *Nat:
		return &VNat{}
	case *Zero:
		return &VZero{}
	case *Add1:
		return &VAdd1{Smaller: Later(env, e.N)}
	case *WhichNat:
		return DoWhichNat(Later(env, e.Target), Eval(env, e.BaseType), Later(env, e.Base), Later(env, e.Step))
	case *IterNat:
		return DoIterNat(Later(env, e.Target), Eval(env, e.BaseType), Later(env, e.Base), Later(env, e.Step))
	case *RecNat:
		return DoRecNat(Later(env, e.Target), Eval(env, e.BaseType), Later(env, e.Base), Later(env, e.Step))
	case *IndNat:
		return DoIndNat(Later(env, e.Target), Eval(env, e.Motive), Later(env, e.Base), Later(env, e.Step))

	case *Atom:
		return &VAtom{}
	case *Quote:
		return &VQuote{Name: e.Name}

	case *Trivial:
		return &VTrivial{}
	case *Sole:
		return &VSole{}

	case *Pi:
		return &VPi{
			Name:   e.Name,
			Domain: Eval(env, e.Domain),
			Range:  &EnvClosure{Env: env, Name: e.Name, Body: e.Range},
		}
	case *Lambda:
		return &VLambda{
			Name: e.Name,
			Body: &EnvClosure{Env: env, Name: e.Name, Body: e.Body},
		}
	case *App:
		return DoApp(Eval(env, e.Fun), Later(env, e.Arg))

	case *Sigma:
		return &VSigma{
			Name:    e.Name,
			CarType: Eval(env, e.CarType),
			CdrType: &EnvClosure{Env: env, Name: e.Name, Body: e.CdrType},
		}
	case *Cons:
		return &VCons{Car: Later(env, e.Car), Cdr: Later(env, e.Cdr)}
	case *Car:
		return DoCar(Eval(env, e.Pair))
	case *Cdr:
		return DoCdr(Eval(env, e.Pair))

	case *List:
		return &VList{Elem: Eval(env, e.Elem)}
	case *Nil:
		return &VNil{}
	case *ListCons:
		return &VListCons{Head: Later(env, e.Head), Tail: Later(env, e.Tail)}
	case *RecList:
		return DoRecList(Later(env, e.Target), Eval(env, e.BaseType), Later(env, e.Base), Later(env, e.Step))
	case *IndList:
		return DoIndList(Later(env, e.Target), Eval(env, e.Motive), Later(env, e.Base), Later(env, e.Step))

	case *Vec:
		return &VVec{Elem: Eval(env, e.Elem), Len: Eval(env, e.Len)}
	case *VecNil:
		return &VVecNil{}
	case *VecCons:
		return &VVecCons{Head: Later(env, e.Head), Tail: Later(env, e.Tail)}
	case *Head:
		return DoHead(Eval(env, e.Vec))
	case *Tail:
		return DoTail(Eval(env, e.Vec))
	case *IndVec:
		return DoIndVec(Eval(env, e.Len), Later(env, e.Target), Eval(env, e.Motive), Later(env, e.Base), Later(env, e.Step))

	case *Equal:
		return &VEqual{Type: Eval(env, e.Type), From: Later(env, e.From), To: Later(env, e.To)}
	case *Same:
		return &VSame{Value: Later(env, e.Value)}
	case *Replace:
		return DoReplace(Eval(env, e.Target), Eval(env, e.Motive), Later(env, e.Base))
	case *Trans:
		return DoTrans(Eval(env, e.Left), Eval(env, e.Right))
	case *Cong:
		return DoCong(Eval(env, e.Target), Eval(env, e.BaseType), Eval(env, e.Fun))
	case *Symm:
		return DoSymm(Eval(env, e.Target))
	case *IndEqual:
		return DoIndEqual(Eval(env, e.Target), Eval(env, e.Motive), Later(env, e.Base))

	case *Either:
		return &VEither{Left: Eval(env, e.Left), Right: Eval(env, e.Right)}
	case *Left:
		return &VLeft{Value: Later(env, e.Value)}
	case *Right:
		return &VRight{Value: Later(env, e.Value)}
	case *IndEither:
		return DoIndEither(Later(env, e.Target), Eval(env, e.Motive), Later(env, e.BaseLeft), Later(env, e.BaseRight))

	case *Absurd:
		return &VAbsurd{}
	case *IndAbsurd:
		return DoIndAbsurd(Eval(env, e.Target), Eval(env, e.Motive))

	case *Var:
		v, found := env.Lookup(e.Name)
		if !found {
			panic(contractViolation("unbound variable %s", e.Name))
		}
		return Now(v)
	case *The:
		return Eval(env, e.Value)
	case *TODO:
		t := Eval(env, e.Type)
		return &VNeutral{Type: t, Neutral: &NTODO{Loc: e.Loc, Type: t}}

	case *InductiveType:
		return &VInductiveType{
			Datatype: e.Datatype,
			Params:   evalAll(env, e.Params),
			Indices:  evalAll(env, e.Indices),
		}
	case *CtorApp:
		return &VConstructor{Ctor: e.Ctor, Args: laterAll(env, e.Args)}
	case *Eliminator:
		methods := make([]Value, len(e.Methods))
		for i, m := range e.Methods {
			methods[i] = Later(env, m)
		}
		return e.Datatype.DoElim(Eval(env, e.Target), Eval(env, e.Motive), methods)
	}
	panic(contractViolation("cannot evaluate %T", c))
}

func evalAll(env *Env, cs []Core) []Value {
	vs := make([]Value, len(cs))
	for i, c := range cs {
		vs[i] = Eval(env, c)
	}
	return vs
}

func laterAll(env *Env, cs []Core) []Value {
	vs := make([]Value, len(cs))
	for i, c := range cs {
		vs[i] = Later(env, c)
	}
	return vs
}

// Arrow builds the non-dependent function type dom → rng.
func Arrow(dom, rng Value) *VPi {
	return &VPi{Name: "x", Domain: dom, Range: Const(rng)}
}

// PiType builds a dependent function type whose range is computed in Go.
func PiType(name string, dom Value, rng func(Value) Value) *VPi {
	return &VPi{Name: name, Domain: dom, Range: FuncClosure(rng)}
}

func DoApp(fun, arg Value) Value {
	switch f := Now(fun).(type) {
	case *VLambda:
		return f.Body.Apply(arg)
	case *VNeutral:
		pi, ok := Now(f.Type).(*VPi)
		if !ok {
			break
		}
		return &VNeutral{
			Type:    pi.Range.Apply(arg),
			Neutral: &NApp{Fun: f.Neutral, Arg: Normal{Type: pi.Domain, Value: arg}},
		}
	}
	panic(contractViolation("cannot apply %T", Now(fun)))
}

func DoWhichNat(target, baseType, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VZero:
		return base
	case *VAdd1:
		return DoApp(step, t.Smaller)
	case *VNeutral:
		return &VNeutral{
			Type: baseType,
			Neutral: &NWhichNat{
				Target: t.Neutral,
				Base:   Normal{Type: baseType, Value: base},
				Step:   Normal{Type: Arrow(&VNat{}, baseType), Value: step},
			},
		}
	}
	panic(contractViolation("which-Nat on %T", Now(target)))
}

func DoIterNat(target, baseType, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VZero:
		return base
	case *VAdd1:
		return DoApp(step, DoIterNat(t.Smaller, baseType, base, step))
	case *VNeutral:
		return &VNeutral{
			Type: baseType,
			Neutral: &NIterNat{
				Target: t.Neutral,
				Base:   Normal{Type: baseType, Value: base},
				Step:   Normal{Type: Arrow(baseType, baseType), Value: step},
			},
		}
	}
	panic(contractViolation("iter-Nat on %T", Now(target)))
}

func DoRecNat(target, baseType, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VZero:
		return base
	case *VAdd1:
		return DoApp(DoApp(step, t.Smaller), DoRecNat(t.Smaller, baseType, base, step))
	case *VNeutral:
		return &VNeutral{
			Type: baseType,
			Neutral: &NRecNat{
				Target: t.Neutral,
				Base:   Normal{Type: baseType, Value: base},
				Step:   Normal{Type: Arrow(&VNat{}, Arrow(baseType, baseType)), Value: step},
			},
		}
	}
	panic(contractViolation("rec-Nat on %T", Now(target)))
}

// IndNatMotiveType is Nat → U.
func IndNatMotiveType() Value {
	return Arrow(&VNat{}, &VUniverse{})
}

// IndNatStepType is Π((n-1 Nat)) (→ (motive n-1) (motive (add1 n-1))).
func IndNatStepType(motive Value) Value {
	return PiType("n-1", &VNat{}, func(n Value) Value {
		return Arrow(DoApp(motive, n), DoApp(motive, &VAdd1{Smaller: n}))
	})
}

func DoIndNat(target, motive, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VZero:
		return base
	case *VAdd1:
		return DoApp(DoApp(step, t.Smaller), DoIndNat(t.Smaller, motive, base, step))
	case *VNeutral:
		return &VNeutral{
			Type: DoApp(motive, target),
			Neutral: &NIndNat{
				Target: t.Neutral,
				Motive: Normal{Type: IndNatMotiveType(), Value: motive},
				Base:   Normal{Type: DoApp(motive, &VZero{}), Value: base},
				Step:   Normal{Type: IndNatStepType(motive), Value: step},
			},
		}
	}
	panic(contractViolation("ind-Nat on %T", Now(target)))
}

func DoCar(pair Value) Value {
	switch p := Now(pair).(type) {
	case *VCons:
		return p.Car
	case *VNeutral:
		if sigma, ok := Now(p.Type).(*VSigma); ok {
			return &VNeutral{Type: sigma.CarType, Neutral: &NCar{Target: p.Neutral}}
		}
	}
	panic(contractViolation("car on %T", Now(pair)))
}

func DoCdr(pair Value) Value {
	switch p := Now(pair).(type) {
	case *VCons:
		return p.Cdr
	case *VNeutral:
		if sigma, ok := Now(p.Type).(*VSigma); ok {
			return &VNeutral{
				Type:    sigma.CdrType.Apply(DoCar(pair)),
				Neutral: &NCdr{Target: p.Neutral},
			}
		}
	}
	panic(contractViolation("cdr on %T", Now(pair)))
}

func listElem(ne *VNeutral) Value {
	if l, ok := Now(ne.Type).(*VList); ok {
		return l.Elem
	}
	panic(contractViolation("expected a List, got %T", Now(ne.Type)))
}

func DoRecList(target, baseType, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VNil:
		return base
	case *VListCons:
		return DoApp(DoApp(DoApp(step, t.Head), t.Tail), DoRecList(t.Tail, baseType, base, step))
	case *VNeutral:
		elem := listElem(t)
		return &VNeutral{
			Type: baseType,
			Neutral: &NRecList{
				Target: t.Neutral,
				Base:   Normal{Type: baseType, Value: base},
				Step: Normal{
					Type:  Arrow(elem, Arrow(&VList{Elem: elem}, Arrow(baseType, baseType))),
					Value: step,
				},
			},
		}
	}
	panic(contractViolation("rec-List on %T", Now(target)))
}

// IndListStepType is
// Π((e E) (es (List E))) (→ (motive es) (motive (:: e es))).
func IndListStepType(elem, motive Value) Value {
	return PiType("e", elem, func(e Value) Value {
		return PiType("es", &VList{Elem: elem}, func(es Value) Value {
			return Arrow(DoApp(motive, es), DoApp(motive, &VListCons{Head: e, Tail: es}))
		})
	})
}

func DoIndList(target, motive, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VNil:
		return base
	case *VListCons:
		return DoApp(DoApp(DoApp(step, t.Head), t.Tail), DoIndList(t.Tail, motive, base, step))
	case *VNeutral:
		elem := listElem(t)
		return &VNeutral{
			Type: DoApp(motive, target),
			Neutral: &NIndList{
				Target: t.Neutral,
				Motive: Normal{Type: Arrow(&VList{Elem: elem}, &VUniverse{}), Value: motive},
				Base:   Normal{Type: DoApp(motive, &VNil{}), Value: base},
				Step:   Normal{Type: IndListStepType(elem, motive), Value: step},
			},
		}
	}
	panic(contractViolation("ind-List on %T", Now(target)))
}

func vecOf(ne *VNeutral) *VVec {
	if v, ok := Now(ne.Type).(*VVec); ok {
		return v
	}
	panic(contractViolation("expected a Vec, got %T", Now(ne.Type)))
}

func DoHead(vec Value) Value {
	switch v := Now(vec).(type) {
	case *VVecCons:
		return v.Head
	case *VNeutral:
		return &VNeutral{Type: vecOf(v).Elem, Neutral: &NHead{Target: v.Neutral}}
	}
	panic(contractViolation("head on %T", Now(vec)))
}

func DoTail(vec Value) Value {
	switch v := Now(vec).(type) {
	case *VVecCons:
		return v.Tail
	case *VNeutral:
		t := vecOf(v)
		add1, ok := Now(t.Len).(*VAdd1)
		if !ok {
			break
		}
		return &VNeutral{
			Type:    &VVec{Elem: t.Elem, Len: add1.Smaller},
			Neutral: &NTail{Target: v.Neutral},
		}
	}
	panic(contractViolation("tail on %T", Now(vec)))
}

// IndVecMotiveType is Π((k Nat)) (→ (Vec E k) U).
func IndVecMotiveType(elem Value) Value {
	return PiType("k", &VNat{}, func(k Value) Value {
		return Arrow(&VVec{Elem: elem, Len: k}, &VUniverse{})
	})
}

// IndVecStepType is
// Π((k Nat) (e E) (es (Vec E k))) (→ (motive k es) (motive (add1 k) (vec:: e es))).
func IndVecStepType(elem, motive Value) Value {
	return PiType("k", &VNat{}, func(k Value) Value {
		return PiType("e", elem, func(e Value) Value {
			return PiType("es", &VVec{Elem: elem, Len: k}, func(es Value) Value {
				return Arrow(
					DoApp(DoApp(motive, k), es),
					DoApp(DoApp(motive, &VAdd1{Smaller: k}), &VVecCons{Head: e, Tail: es}),
				)
			})
		})
	})
}

func DoIndVec(length, target, motive, base, step Value) Value {
	switch t := Now(target).(type) {
	case *VVecNil:
		return base
	case *VVecCons:
		add1, ok := Now(length).(*VAdd1)
		if !ok {
			break
		}
		k := add1.Smaller
		return DoApp(DoApp(DoApp(DoApp(step, k), t.Head), t.Tail),
			DoIndVec(k, t.Tail, motive, base, step))
	case *VNeutral:
		elem := vecOf(t).Elem
		return &VNeutral{
			Type: DoApp(DoApp(motive, length), target),
			Neutral: &NIndVec{
				Len:    Normal{Type: &VNat{}, Value: length},
				Target: t.Neutral,
				Motive: Normal{Type: IndVecMotiveType(elem), Value: motive},
				Base:   Normal{Type: DoApp(DoApp(motive, &VZero{}), &VVecNil{}), Value: base},
				Step:   Normal{Type: IndVecStepType(elem, motive), Value: step},
			},
		}
	}
	panic(contractViolation("ind-Vec on %T", Now(target)))
}

func equalOf(ne *VNeutral) *VEqual {
	if eq, ok := Now(ne.Type).(*VEqual); ok {
		return eq
	}
	panic(contractViolation("expected an =, got %T", Now(ne.Type)))
}

func neutralEqual(v Value) *VEqual {
	ne, ok := v.(*VNeutral)
	if !ok {
		panic(contractViolation("expected a neutral equality proof, got %T", v))
	}
	return equalOf(ne)
}

func DoReplace(target, motive, base Value) Value {
	switch t := Now(target).(type) {
	case *VSame:
		return base
	case *VNeutral:
		eq := equalOf(t)
		return &VNeutral{
			Type: DoApp(motive, eq.To),
			Neutral: &NReplace{
				Target: t.Neutral,
				Motive: Normal{Type: Arrow(eq.Type, &VUniverse{}), Value: motive},
				Base:   Normal{Type: DoApp(motive, eq.From), Value: base},
			},
		}
	}
	panic(contractViolation("replace on %T", Now(target)))
}

func DoTrans(left, right Value) Value {
	l, r := Now(left), Now(right)
	ls, lSame := l.(*VSame)
	rs, rSame := r.(*VSame)
	if lSame && rSame {
		return &VSame{Value: ls.Value}
	}

	var lt, rt *VEqual
	switch {
	case lSame:
		rt = neutralEqual(r)
		lt = &VEqual{Type: rt.Type, From: ls.Value, To: ls.Value}
	case rSame:
		lt = neutralEqual(l)
		rt = &VEqual{Type: lt.Type, From: rs.Value, To: rs.Value}
	default:
		lt, rt = neutralEqual(l), neutralEqual(r)
	}
	return &VNeutral{
		Type: &VEqual{Type: lt.Type, From: lt.From, To: rt.To},
		Neutral: &NTrans{
			Left:  Normal{Type: lt, Value: l},
			Right: Normal{Type: rt, Value: r},
		},
	}
}

// DoCong maps fun over both sides of an equality; rangeType is fun's range.
func DoCong(target, rangeType, fun Value) Value {
	switch t := Now(target).(type) {
	case *VSame:
		return &VSame{Value: DoApp(fun, t.Value)}
	case *VNeutral:
		eq := equalOf(t)
		return &VNeutral{
			Type: &VEqual{Type: rangeType, From: DoApp(fun, eq.From), To: DoApp(fun, eq.To)},
			Neutral: &NCong{
				Target:   t.Neutral,
				BaseType: rangeType,
				Fun:      Normal{Type: Arrow(eq.Type, rangeType), Value: fun},
			},
		}
	}
	panic(contractViolation("cong on %T", Now(target)))
}

func DoSymm(target Value) Value {
	switch t := Now(target).(type) {
	case *VSame:
		return t
	case *VNeutral:
		eq := equalOf(t)
		return &VNeutral{
			Type:    &VEqual{Type: eq.Type, From: eq.To, To: eq.From},
			Neutral: &NSymm{Target: t.Neutral},
		}
	}
	panic(contractViolation("symm on %T", Now(target)))
}

// IndEqualMotiveType is Π((to X)) (→ (= X from to) U).
func IndEqualMotiveType(typ, from Value) Value {
	return PiType("to", typ, func(to Value) Value {
		return Arrow(&VEqual{Type: typ, From: from, To: to}, &VUniverse{})
	})
}

func DoIndEqual(target, motive, base Value) Value {
	switch t := Now(target).(type) {
	case *VSame:
		return base
	case *VNeutral:
		eq := equalOf(t)
		return &VNeutral{
			Type: DoApp(DoApp(motive, eq.To), target),
			Neutral: &NIndEqual{
				Target: t.Neutral,
				Motive: Normal{Type: IndEqualMotiveType(eq.Type, eq.From), Value: motive},
				Base: Normal{
					Type:  DoApp(DoApp(motive, eq.From), &VSame{Value: eq.From}),
					Value: base,
				},
			},
		}
	}
	panic(contractViolation("ind-= on %T", Now(target)))
}

// IndEitherBaseType is Π((x side)) (motive (wrap x)).
func IndEitherBaseType(side, motive Value, wrap func(Value) Value) Value {
	return PiType("x", side, func(x Value) Value {
		return DoApp(motive, wrap(x))
	})
}

func DoIndEither(target, motive, baseLeft, baseRight Value) Value {
	switch t := Now(target).(type) {
	case *VLeft:
		return DoApp(baseLeft, t.Value)
	case *VRight:
		return DoApp(baseRight, t.Value)
	case *VNeutral:
		either, ok := Now(t.Type).(*VEither)
		if !ok {
			break
		}
		return &VNeutral{
			Type: DoApp(motive, target),
			Neutral: &NIndEither{
				Target: t.Neutral,
				Motive: Normal{Type: Arrow(either, &VUniverse{}), Value: motive},
				BaseLeft: Normal{
					Type:  IndEitherBaseType(either.Left, motive, func(x Value) Value { return &VLeft{Value: x} }),
					Value: baseLeft,
				},
				BaseRight: Normal{
					Type:  IndEitherBaseType(either.Right, motive, func(x Value) Value { return &VRight{Value: x} }),
					Value: baseRight,
				},
			},
		}
	}
	panic(contractViolation("ind-Either on %T", Now(target)))
}

func DoIndAbsurd(target, motive Value) Value {
	if t, ok := Now(target).(*VNeutral); ok {
		return &VNeutral{
			Type: motive,
			Neutral: &NIndAbsurd{
				Target: t.Neutral,
				Motive: Normal{Type: &VUniverse{}, Value: motive},
			},
		}
	}
	panic(contractViolation("ind-Absurd on %T", Now(target)))
}

package core

func bindFresh(ctx Context, name string, t Value) (Context, string, Value) {
	x := Fresh(ctx, name)
	next, err := ctx.BindFree(x, t)
	if err != nil {
		panic(contractViolation("fresh name %s: %v", x, err))
	}
	return next, x, VarValue(x, t)
}

// ReadBack converts a value of type t into its β-normal, η-long Core form.
// Functions and pairs are η-expanded, every value of Trivial is sole, and
// every neutral of type Absurd is marked with (the Absurd ...).
func ReadBack(ctx Context, t, v Value) Core {
	switch tt := Now(t).(type) {
	case *VPi:
		name := tt.Name
		if lam, ok := Now(v).(*VLambda); ok {
			name = lam.Name
		}
		inner, x, xv := bindFresh(ctx, name, tt.Domain)
		return &Lambda{
			Name: x,
			Body: ReadBack(inner, tt.Range.Apply(xv), DoApp(v, xv)),
		}
	case *VSigma:
		car := DoCar(v)
		return &Cons{
			Car: ReadBack(ctx, tt.CarType, car),
			Cdr: ReadBack(ctx, tt.CdrType.Apply(car), DoCdr(v)),
		}
	case *VTrivial:
		return &Sole{}
	case *VAbsurd:
		if ne, ok := Now(v).(*VNeutral); ok {
			return &The{Type: &Absurd{}, Value: readBackNeutral(ctx, ne.Neutral)}
		}
	case *VUniverse:
		return ReadBackType(ctx, v)
	}

	if ne, ok := Now(v).(*VNeutral); ok {
		return readBackNeutral(ctx, ne.Neutral)
	}

	switch tt := Now(t).(type) {
	case *VNat:
		switch n := Now(v).(type) {
		case *VZero:
			return &Zero{}
		case *VAdd1:
			return &Add1{N: ReadBack(ctx, tt, n.Smaller)}
		}
	case *VAtom:
		if q, ok := Now(v).(*VQuote); ok {
			return &Quote{Name: q.Name}
		}
	case *VList:
		switch l := Now(v).(type) {
		case *VNil:
			return &Nil{}
		case *VListCons:
			return &ListCons{
				Head: ReadBack(ctx, tt.Elem, l.Head),
				Tail: ReadBack(ctx, tt, l.Tail),
			}
		}
	case *VVec:
		switch l := Now(v).(type) {
		case *VVecNil:
			return &VecNil{}
		case *VVecCons:
			if add1, ok := Now(tt.Len).(*VAdd1); ok {
				return &VecCons{
					Head: ReadBack(ctx, tt.Elem, l.Head),
					Tail: ReadBack(ctx, &VVec{Elem: tt.Elem, Len: add1.Smaller}, l.Tail),
				}
			}
		}
	case *VEqual:
		if s, ok := Now(v).(*VSame); ok {
			return &Same{Value: ReadBack(ctx, tt.Type, s.Value)}
		}
	case *VEither:
		switch e := Now(v).(type) {
		case *VLeft:
			return &Left{Value: ReadBack(ctx, tt.Left, e.Value)}
		case *VRight:
			return &Right{Value: ReadBack(ctx, tt.Right, e.Value)}
		}
	case *VInductiveType:
		if c, ok := Now(v).(*VConstructor); ok {
			return readBackConstructor(ctx, tt, c)
		}
	}
	panic(contractViolation("cannot read back %T at type %T", Now(v), Now(t)))
}

func readBackConstructor(ctx Context, t *VInductiveType, c *VConstructor) Core {
	env := t.Datatype.ParamEnv(t.Params)
	args := make([]Core, len(c.Args))
	for i, a := range c.Ctor.Args {
		args[i] = ReadBack(ctx, Eval(env, a.Type), c.Args[i])
		env = env.Extend(a.Name, c.Args[i])
	}
	return &CtorApp{Ctor: c.Ctor, Args: args}
}

// ReadBackType converts a type value into Core.
func ReadBackType(ctx Context, t Value) Core {
	switch tt := Now(t).(type) {
	case *VUniverse:
		return &Universe{}
	case *VNat:
		return &Nat{}
	case *VAtom:
		return &Atom{}
	case *VTrivial:
		return &Trivial{}
	case *VAbsurd:
		return &Absurd{}
	case *VPi:
		inner, x, xv := bindFresh(ctx, tt.Name, tt.Domain)
		return &Pi{
			Name:   x,
			Domain: ReadBackType(ctx, tt.Domain),
			Range:  ReadBackType(inner, tt.Range.Apply(xv)),
		}
	case *VSigma:
		inner, x, xv := bindFresh(ctx, tt.Name, tt.CarType)
		return &Sigma{
			Name:    x,
			CarType: ReadBackType(ctx, tt.CarType),
			CdrType: ReadBackType(inner, tt.CdrType.Apply(xv)),
		}
	case *VList:
		return &List{Elem: ReadBackType(ctx, tt.Elem)}
	case *VVec:
		return &Vec{Elem: ReadBackType(ctx, tt.Elem), Len: ReadBack(ctx, &VNat{}, tt.Len)}
	case *VEqual:
		return &Equal{
			Type: ReadBackType(ctx, tt.Type),
			From: ReadBack(ctx, tt.Type, tt.From),
			To:   ReadBack(ctx, tt.Type, tt.To),
		}
	case *VEither:
		return &Either{Left: ReadBackType(ctx, tt.Left), Right: ReadBackType(ctx, tt.Right)}
	case *VInductiveType:
		dt := tt.Datatype
		params := make([]Core, len(tt.Params))
		for i, pt := range dt.ParamTypes(tt.Params) {
			params[i] = ReadBack(ctx, pt, tt.Params[i])
		}
		indices := make([]Core, len(tt.Indices))
		for i, it := range dt.IndexTypes(tt.Params, tt.Indices) {
			indices[i] = ReadBack(ctx, it, tt.Indices[i])
		}
		return &InductiveType{Datatype: dt, Params: params, Indices: indices}
	case *VNeutral:
		return readBackNeutral(ctx, tt.Neutral)
	}
	panic(contractViolation("%T is not a type", Now(t)))
}

func readBackNormal(ctx Context, n Normal) Core {
	return ReadBack(ctx, n.Type, n.Value)
}

func readBackNeutral(ctx Context, ne Neutral) Core {
	switch n := ne.(type) {
	case *NVar:
		return &Var{Name: n.Name}
	case *NTODO:
		return &TODO{Loc: n.Loc, Type: ReadBackType(ctx, n.Type)}
	case *NWhichNat:
		return &WhichNat{
			Target:   readBackNeutral(ctx, n.Target),
			BaseType: ReadBackType(ctx, n.Base.Type),
			Base:     readBackNormal(ctx, n.Base),
			Step:     readBackNormal(ctx, n.Step),
		}
	case *NIterNat:
		return &IterNat{
			Target:   readBackNeutral(ctx, n.Target),
			BaseType: ReadBackType(ctx, n.Base.Type),
			Base:     readBackNormal(ctx, n.Base),
			Step:     readBackNormal(ctx, n.Step),
		}
	case *NRecNat:
		return &RecNat{
			Target:   readBackNeutral(ctx, n.Target),
			BaseType: ReadBackType(ctx, n.Base.Type),
			Base:     readBackNormal(ctx, n.Base),
			Step:     readBackNormal(ctx, n.Step),
		}
	case *NIndNat:
		return &IndNat{
			Target: readBackNeutral(ctx, n.Target),
			Motive: readBackNormal(ctx, n.Motive),
			Base:   readBackNormal(ctx, n.Base),
			Step:   readBackNormal(ctx, n.Step),
		}
	case *NApp:
		return &App{Fun: readBackNeutral(ctx, n.Fun), Arg: readBackNormal(ctx, n.Arg)}
	case *NCar:
		return &Car{Pair: readBackNeutral(ctx, n.Target)}
	case *NCdr:
		return &Cdr{Pair: readBackNeutral(ctx, n.Target)}
	case *NRecList:
		return &RecList{
			Target:   readBackNeutral(ctx, n.Target),
			BaseType: ReadBackType(ctx, n.Base.Type),
			Base:     readBackNormal(ctx, n.Base),
			Step:     readBackNormal(ctx, n.Step),
		}
	case *NIndList:
		return &IndList{
			Target: readBackNeutral(ctx, n.Target),
			Motive: readBackNormal(ctx, n.Motive),
			Base:   readBackNormal(ctx, n.Base),
			Step:   readBackNormal(ctx, n.Step),
		}
	case *NHead:
		return &Head{Vec: readBackNeutral(ctx, n.Target)}
	case *NTail:
		return &Tail{Vec: readBackNeutral(ctx, n.Target)}
	case *NIndVec:
		return &IndVec{
			Len:    readBackNormal(ctx, n.Len),
			Target: readBackNeutral(ctx, n.Target),
			Motive: readBackNormal(ctx, n.Motive),
			Base:   readBackNormal(ctx, n.Base),
			Step:   readBackNormal(ctx, n.Step),
		}
	case *NReplace:
		return &Replace{
			Target: readBackNeutral(ctx, n.Target),
			Motive: readBackNormal(ctx, n.Motive),
			Base:   readBackNormal(ctx, n.Base),
		}
	case *NTrans:
		return &Trans{Left: readBackNormal(ctx, n.Left), Right: readBackNormal(ctx, n.Right)}
	case *NCong:
		return &Cong{
			Target:   readBackNeutral(ctx, n.Target),
			BaseType: ReadBackType(ctx, n.BaseType),
			Fun:      readBackNormal(ctx, n.Fun),
		}
	case *NSymm:
		return &Symm{Target: readBackNeutral(ctx, n.Target)}
	case *NIndEqual:
		return &IndEqual{
			Target: readBackNeutral(ctx, n.Target),
			Motive: readBackNormal(ctx, n.Motive),
			Base:   readBackNormal(ctx, n.Base),
		}
	case *NIndEither:
		return &IndEither{
			Target:    readBackNeutral(ctx, n.Target),
			Motive:    readBackNormal(ctx, n.Motive),
			BaseLeft:  readBackNormal(ctx, n.BaseLeft),
			BaseRight: readBackNormal(ctx, n.BaseRight),
		}
	case *NIndAbsurd:
		return &IndAbsurd{
			Target: &The{Type: &Absurd{}, Value: readBackNeutral(ctx, n.Target)},
			Motive: readBackNormal(ctx, n.Motive),
		}
	case *NElim:
		methods := make([]Core, len(n.Methods))
		for i, m := range n.Methods {
			methods[i] = readBackNormal(ctx, m)
		}
		return &Eliminator{
			Datatype: n.Datatype,
			Target:   readBackNeutral(ctx, n.Target),
			Motive:   readBackNormal(ctx, n.Motive),
			Methods:  methods,
		}
	}
	panic(contractViolation("cannot read back neutral %T", ne))
}

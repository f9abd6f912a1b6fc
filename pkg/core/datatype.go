package core

// Param is a named parameter or index of a datatype.
type Param struct {
	Name string
	Type Core
}

// Datatype is a user-declared inductive family. Parameter, index and
// constructor argument types are Core terms closed over Env extended, in
// order, with the parameters, then the indices or arguments before them.
type Datatype struct {
	Name         string
	Params       []Param
	Indices      []Param
	Constructors []*Constructor
	ElimName     string
	Env          *Env
}

// CtorArg is one argument of a constructor. Recursive arguments have the
// datatype itself as their type, so the eliminator passes an induction
// hypothesis for each.
type CtorArg struct {
	Name      string
	Type      Core
	Recursive bool
}

type Constructor struct {
	Name     string
	Index    int
	Datatype *Datatype
	Args     []CtorArg
	// ResultIndices are the indices of the constructed value, in terms of
	// the parameters and the arguments.
	ResultIndices []Core
}

// ParamEnv binds the parameters of dt to params.
func (dt *Datatype) ParamEnv(params []Value) *Env {
	env := dt.Env
	for i, p := range dt.Params {
		env = env.Extend(p.Name, params[i])
	}
	return env
}

// Kind is the type of the datatype's name: Π over the parameters and the
// indices, ending in U.
func (dt *Datatype) Kind() Value {
	all := append(append([]Param{}, dt.Params...), dt.Indices...)
	var build func(env *Env, i int) Value
	build = func(env *Env, i int) Value {
		if i == len(all) {
			return &VUniverse{}
		}
		p := all[i]
		return PiType(p.Name, Eval(env, p.Type), func(v Value) Value {
			return build(env.Extend(p.Name, v), i+1)
		})
	}
	return build(dt.Env, 0)
}

// ParamTypes evaluates the parameter types, each in terms of the ones
// before it.
func (dt *Datatype) ParamTypes(params []Value) []Value {
	types := make([]Value, len(dt.Params))
	env := dt.Env
	for i, p := range dt.Params {
		types[i] = Eval(env, p.Type)
		env = env.Extend(p.Name, params[i])
	}
	return types
}

// IndexTypes evaluates the index types for the given parameters and indices.
func (dt *Datatype) IndexTypes(params, indices []Value) []Value {
	types := make([]Value, len(dt.Indices))
	env := dt.ParamEnv(params)
	for i, p := range dt.Indices {
		types[i] = Eval(env, p.Type)
		env = env.Extend(p.Name, indices[i])
	}
	return types
}

// MotiveType is Π over the indices, then over a target of the datatype at
// those indices, ending in U.
func (dt *Datatype) MotiveType(params []Value) Value {
	var build func(env *Env, i int, indices []Value) Value
	build = func(env *Env, i int, indices []Value) Value {
		if i == len(dt.Indices) {
			target := &VInductiveType{Datatype: dt, Params: params, Indices: indices}
			return Arrow(target, &VUniverse{})
		}
		p := dt.Indices[i]
		return PiType(p.Name, Eval(env, p.Type), func(v Value) Value {
			return build(env.Extend(p.Name, v), i+1, append(indices[:i:i], v))
		})
	}
	return build(dt.ParamEnv(params), 0, nil)
}

// ApplyMotive applies motive to the indices and then the target.
func ApplyMotive(motive Value, indices []Value, target Value) Value {
	for _, idx := range indices {
		motive = DoApp(motive, idx)
	}
	return DoApp(motive, target)
}

// DoElim eliminates target. The method for a constructor receives every
// argument in order, followed by an induction hypothesis for each recursive
// argument.
func (dt *Datatype) DoElim(target, motive Value, methods []Value) Value {
	switch t := Now(target).(type) {
	case *VConstructor:
		m := methods[t.Ctor.Index]
		for _, arg := range t.Args {
			m = DoApp(m, arg)
		}
		for i, arg := range t.Ctor.Args {
			if arg.Recursive {
				m = DoApp(m, dt.DoElim(t.Args[i], motive, methods))
			}
		}
		return m
	case *VNeutral:
		it, ok := Now(t.Type).(*VInductiveType)
		if !ok || it.Datatype != dt {
			break
		}
		normals := make([]Normal, len(methods))
		for i, c := range dt.Constructors {
			normals[i] = Normal{Type: c.MethodType(it.Params, motive), Value: methods[i]}
		}
		return &VNeutral{
			Type: ApplyMotive(motive, it.Indices, target),
			Neutral: &NElim{
				Datatype: dt,
				Target:   t.Neutral,
				Motive:   Normal{Type: dt.MotiveType(it.Params), Value: motive},
				Methods:  normals,
			},
		}
	}
	panic(contractViolation("%s on %T", dt.ElimName, Now(target)))
}

// Type is the type of the constructor's name: Π over the datatype's
// parameters and the constructor's arguments, ending in its result type.
func (c *Constructor) Type() Value {
	dt := c.Datatype
	var params func(env *Env, i int, vals []Value) Value
	params = func(env *Env, i int, vals []Value) Value {
		if i == len(dt.Params) {
			return c.argsType(env, vals, 0)
		}
		p := dt.Params[i]
		return PiType(p.Name, Eval(env, p.Type), func(v Value) Value {
			return params(env.Extend(p.Name, v), i+1, append(vals[:i:i], v))
		})
	}
	return params(dt.Env, 0, nil)
}

func (c *Constructor) argsType(env *Env, params []Value, i int) Value {
	if i == len(c.Args) {
		return c.ResultType(env, params)
	}
	a := c.Args[i]
	return PiType(a.Name, Eval(env, a.Type), func(v Value) Value {
		return c.argsType(env.Extend(a.Name, v), params, i+1)
	})
}

// ResultType is the type of a constructed value, where env binds the
// parameters and every argument.
func (c *Constructor) ResultType(env *Env, params []Value) *VInductiveType {
	return &VInductiveType{
		Datatype: c.Datatype,
		Params:   params,
		Indices:  evalAll(env, c.ResultIndices),
	}
}

// MethodType is the type the eliminator expects for this constructor's
// method: Π over the arguments, then an arrow for each induction hypothesis,
// ending in the motive at the constructed value.
func (c *Constructor) MethodType(params []Value, motive Value) Value {
	var build func(env *Env, i int, args []Value, envs []*Env) Value
	build = func(env *Env, i int, args []Value, envs []*Env) Value {
		if i == len(c.Args) {
			return c.hypotheses(env, args, envs, motive)
		}
		a := c.Args[i]
		return PiType(a.Name, Eval(env, a.Type), func(v Value) Value {
			return build(env.Extend(a.Name, v), i+1, append(args[:i:i], v), append(envs[:i:i], env))
		})
	}
	return build(c.Datatype.ParamEnv(params), 0, nil, nil)
}

func (c *Constructor) hypotheses(env *Env, args []Value, envs []*Env, motive Value) Value {
	result := ApplyMotive(motive,
		evalAll(env, c.ResultIndices),
		&VConstructor{Ctor: c, Args: args})

	for i := len(c.Args) - 1; i >= 0; i-- {
		a := c.Args[i]
		if !a.Recursive {
			continue
		}
		it := Eval(envs[i], a.Type).(*VInductiveType)
		result = Arrow(ApplyMotive(motive, it.Indices, args[i]), result)
	}
	return result
}

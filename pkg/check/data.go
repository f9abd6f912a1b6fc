package check

import (
	"log/slog"

	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// checkTelescope checks args against the types of params, each type
// evaluated in env extended with the values before it.
func checkTelescope(ctx core.Context, r *Renaming, env *core.Env, params []core.Param, args []syntax.Source) ([]core.Core, []core.Value, *core.Env, error) {
	cores := make([]core.Core, len(args))
	vals := make([]core.Value, len(args))
	for i, p := range params {
		c, err := Check(ctx, r, args[i], core.Eval(env, p.Type))
		if err != nil {
			return nil, nil, nil, err
		}
		cores[i] = c
		vals[i] = Eval(ctx, c)
		env = env.Extend(p.Name, vals[i])
	}
	return cores, vals, env, nil
}

func synthTypeFormer(ctx core.Context, r *Renaming, e *syntax.App, dt *core.Datatype) (core.Core, core.Value, error) {
	np, ni := len(dt.Params), len(dt.Indices)
	if len(e.Args) != np+ni {
		return nil, nil, syntax.Errorf(e.Loc(), "%s expects %d arguments, but was given %d", dt.Name, np+ni, len(e.Args))
	}
	params, _, env, err := checkTelescope(ctx, r, dt.Env, dt.Params, e.Args[:np])
	if err != nil {
		return nil, nil, err
	}
	indices, _, _, err := checkTelescope(ctx, r, env, dt.Indices, e.Args[np:])
	if err != nil {
		return nil, nil, err
	}
	return &core.InductiveType{Datatype: dt, Params: params, Indices: indices}, &core.VUniverse{}, nil
}

func ctorParams(c *core.Constructor) []core.Param {
	params := make([]core.Param, len(c.Args))
	for i, a := range c.Args {
		params[i] = core.Param{Name: a.Name, Type: a.Type}
	}
	return params
}

func checkCtorArgs(ctx core.Context, r *Renaming, loc syntax.Location, c *core.Constructor, args []syntax.Source, params []core.Value) ([]core.Core, *core.VInductiveType, error) {
	if len(args) != len(c.Args) {
		return nil, nil, syntax.Errorf(loc, "constructor %s expects %d arguments, but was given %d", c.Name, len(c.Args), len(args))
	}
	cores, _, env, err := checkTelescope(ctx, r, c.Datatype.ParamEnv(params), ctorParams(c), args)
	if err != nil {
		return nil, nil, err
	}
	return cores, c.ResultType(env, params), nil
}

// synthConstructor infers the type of a constructor application. This is
// only possible when the datatype has no parameters; otherwise the
// parameters must come from an expected type.
func synthConstructor(ctx core.Context, r *Renaming, loc syntax.Location, c *core.Constructor, args []syntax.Source) (core.Core, core.Value, error) {
	if len(c.Datatype.Params) > 0 {
		return nil, nil, syntax.Errorf(loc, "cannot determine the parameters of %s for constructor %s; annotate it with the",
			c.Datatype.Name, c.Name)
	}
	cores, t, err := checkCtorArgs(ctx, r, loc, c, args, nil)
	if err != nil {
		return nil, nil, err
	}
	return &core.CtorApp{Ctor: c, Args: cores}, t, nil
}

// checkConstructor takes the parameters from the expected type, checks the
// arguments left to right, and then requires the constructed indices to
// match the expected ones.
func checkConstructor(ctx core.Context, r *Renaming, loc syntax.Location, c *core.Constructor, args []syntax.Source, tv core.Value) (core.Core, error) {
	it, ok := core.Now(tv).(*core.VInductiveType)
	if !ok || it.Datatype != c.Datatype {
		return nil, syntax.Errorf(loc, "expected %s, but constructor %s makes a %s", Show(ctx, tv), c.Name, c.Datatype.Name)
	}
	cores, result, err := checkCtorArgs(ctx, r, loc, c, args, it.Params)
	if err != nil {
		return nil, err
	}
	indexTypes := c.Datatype.IndexTypes(it.Params, it.Indices)
	for i, idx := range result.Indices {
		if err := Convert(ctx, loc, indexTypes[i], idx, it.Indices[i]); err != nil {
			return nil, syntax.Errorf(loc, "constructor %s makes %s, but %s was expected",
				c.Name, Show(ctx, result), Show(ctx, tv))
		}
	}
	return &core.CtorApp{Ctor: c, Args: cores}, nil
}

func synthEliminator(ctx core.Context, r *Renaming, e *syntax.App, dt *core.Datatype) (core.Core, core.Value, error) {
	want := 2 + len(dt.Constructors)
	if len(e.Args) != want {
		return nil, nil, syntax.Errorf(e.Loc(), "%s expects a target, a motive and %d methods, but was given %d arguments",
			dt.ElimName, len(dt.Constructors), len(e.Args))
	}
	target, tt, err := Synth(ctx, r, e.Args[0])
	if err != nil {
		return nil, nil, err
	}
	it, ok := core.Now(tt).(*core.VInductiveType)
	if !ok || it.Datatype != dt {
		return nil, nil, syntax.Errorf(e.Args[0].Loc(), "expected a %s, but the type is %s", dt.Name, Show(ctx, tt))
	}
	motive, err := Check(ctx, r, e.Args[1], dt.MotiveType(it.Params))
	if err != nil {
		return nil, nil, err
	}
	mv := Eval(ctx, motive)
	methods := make([]core.Core, len(dt.Constructors))
	for i, c := range dt.Constructors {
		methods[i], err = Check(ctx, r, e.Args[2+i], c.MethodType(it.Params, mv))
		if err != nil {
			return nil, nil, err
		}
	}
	return &core.Eliminator{Datatype: dt, Target: target, Motive: motive, Methods: methods},
		core.ApplyMotive(mv, it.Indices, Eval(ctx, target)), nil
}

// ElaborateData checks a datatype declaration and registers the datatype,
// its constructors and its eliminator.
func ElaborateData(ctx core.Context, d *syntax.Data) (core.Context, *core.Datatype, error) {
	names := map[string]bool{d.Name: true, d.ElimName: true}
	if d.ElimName == d.Name {
		return ctx, nil, syntax.Errorf(d.Loc(), "the eliminator of %s cannot be named %s", d.Name, d.Name)
	}
	for _, name := range []string{d.Name, d.ElimName} {
		if ctx.Has(name) {
			return ctx, nil, syntax.Errorf(d.Loc(), "the name %s is already in use", name)
		}
	}
	for _, c := range d.Constructors {
		if names[c.Name] || ctx.Has(c.Name) {
			return ctx, nil, syntax.Errorf(c.Loc, "the name %s is already in use", c.Name)
		}
		names[c.Name] = true
	}

	dt := &core.Datatype{Name: d.Name, ElimName: d.ElimName, Env: ctx.Env()}

	// Bind the datatype before its constructors exist so that argument and
	// result types can mention it.
	dctx, err := ctx.BindData(dt)
	if err != nil {
		return ctx, nil, syntax.Errorf(d.Loc(), "%s", err)
	}

	var r *Renaming
	pctx := dctx
	for _, b := range d.Params {
		t, err := IsType(pctx, r, b.Type)
		if err != nil {
			return ctx, nil, err
		}
		var x string
		pctx, r, x, err = Bind(pctx, r, b.Loc, b.Name, Eval(pctx, t))
		if err != nil {
			return ctx, nil, err
		}
		dt.Params = append(dt.Params, core.Param{Name: x, Type: t})
	}

	ictx, ir := pctx, r
	for _, b := range d.Indices {
		t, err := IsType(ictx, ir, b.Type)
		if err != nil {
			return ctx, nil, err
		}
		var x string
		ictx, ir, x, err = Bind(ictx, ir, b.Loc, b.Name, Eval(ictx, t))
		if err != nil {
			return ctx, nil, err
		}
		dt.Indices = append(dt.Indices, core.Param{Name: x, Type: t})
	}

	for i, cd := range d.Constructors {
		c, err := elaborateCtor(pctx, r, dt, i, cd)
		if err != nil {
			return ctx, nil, err
		}
		dt.Constructors = append(dt.Constructors, c)
	}

	out, err := ctx.BindData(dt)
	if err != nil {
		return ctx, nil, syntax.Errorf(d.Loc(), "%s", err)
	}
	slog.Debug("registered datatype", "name", dt.Name, "constructors", len(dt.Constructors), "eliminator", dt.ElimName)
	return out, dt, nil
}

func elaborateCtor(ctx core.Context, r *Renaming, dt *core.Datatype, index int, cd syntax.CtorDecl) (*core.Constructor, error) {
	c := &core.Constructor{Name: cd.Name, Index: index, Datatype: dt}
	for _, b := range cd.Args {
		t, err := IsType(ctx, r, b.Type)
		if err != nil {
			return nil, err
		}
		recursive := false
		if it, ok := t.(*core.InductiveType); ok && it.Datatype == dt {
			if err := sameParams(dt, it, b.Type.Loc()); err != nil {
				return nil, err
			}
			recursive = true
		}
		var x string
		ctx, r, x, err = Bind(ctx, r, b.Loc, b.Name, Eval(ctx, t))
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, core.CtorArg{Name: x, Type: t, Recursive: recursive})
	}

	result, err := IsType(ctx, r, cd.Result)
	if err != nil {
		return nil, err
	}
	it, ok := result.(*core.InductiveType)
	if !ok || it.Datatype != dt {
		return nil, syntax.Errorf(cd.Result.Loc(), "constructor %s must construct a %s, not %s", cd.Name, dt.Name, result)
	}
	if err := sameParams(dt, it, cd.Result.Loc()); err != nil {
		return nil, err
	}
	c.ResultIndices = it.Indices
	return c, nil
}

// sameParams requires a use of the datatype inside its own declaration to
// pass its parameters through unchanged.
func sameParams(dt *core.Datatype, it *core.InductiveType, loc syntax.Location) error {
	for i, p := range dt.Params {
		v, ok := it.Params[i].(*core.Var)
		if !ok || v.Name != p.Name {
			return syntax.Errorf(loc, "%s must be applied to its parameters unchanged inside its own declaration", dt.Name)
		}
	}
	return nil
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(n int) Core {
	var c Core = &Zero{}
	for range n {
		c = &Add1{N: c}
	}
	return c
}

func normalize(t *testing.T, ctx Context, typ Core, expr Core) Core {
	t.Helper()
	tv := Eval(ctx.Env(), typ)
	return ReadBack(ctx, tv, Eval(ctx.Env(), expr))
}

func TestIndNatComputes(t *testing.T) {
	// (ind-Nat 3 (λ (k) Nat) 0 (λ (n-1 acc) (add1 (add1 acc))))
	double := &IndNat{
		Target: num(3),
		Motive: &Lambda{Name: "k", Body: &Nat{}},
		Base:   &Zero{},
		Step: &Lambda{Name: "n-1", Body: &Lambda{Name: "acc",
			Body: &Add1{N: &Add1{N: &Var{Name: "acc"}}}}},
	}
	out := normalize(t, Context{}, &Nat{}, double)
	assert.Equal(t, "6", out.String())
}

func TestIterNatStuckOnVariable(t *testing.T) {
	ctx, err := Context{}.BindFree("n", &VNat{})
	require.NoError(t, err)

	stuck := &IterNat{
		Target:   &Var{Name: "n"},
		BaseType: &Nat{},
		Base:     &Zero{},
		Step:     &Lambda{Name: "x", Body: &Add1{N: &Var{Name: "x"}}},
	}
	out := normalize(t, ctx, &Nat{}, stuck)
	assert.Equal(t, "(iter-Nat n (the Nat 0) (λ (x) (add1 x)))", out.String())
}

func TestReadBackEtaExpandsFunctions(t *testing.T) {
	ctx, err := Context{}.BindFree("f", Arrow(&VNat{}, &VNat{}))
	require.NoError(t, err)

	out := normalize(t, ctx, &Pi{Name: "x", Domain: &Nat{}, Range: &Nat{}}, &Var{Name: "f"})
	assert.Equal(t, "(λ (x) (f x))", out.String())
}

func TestReadBackEtaExpandsPairs(t *testing.T) {
	pairType := &Sigma{Name: "a", CarType: &Atom{}, CdrType: &Atom{}}
	ctx, err := Context{}.BindFree("p", Eval(nil, pairType))
	require.NoError(t, err)

	out := normalize(t, ctx, pairType, &Var{Name: "p"})
	assert.Equal(t, "(cons (car p) (cdr p))", out.String())
}

func TestReadBackTrivialIsSole(t *testing.T) {
	ctx, err := Context{}.BindFree("t", &VTrivial{})
	require.NoError(t, err)

	out := normalize(t, ctx, &Trivial{}, &Var{Name: "t"})
	assert.Equal(t, "sole", out.String())
}

func TestAbsurdProofsAreEqual(t *testing.T) {
	ctx, err := Context{}.BindFree("a", &VAbsurd{})
	require.NoError(t, err)
	ctx, err = ctx.BindFree("b", &VAbsurd{})
	require.NoError(t, err)

	a := normalize(t, ctx, &Absurd{}, &Var{Name: "a"})
	b := normalize(t, ctx, &Absurd{}, &Var{Name: "b"})
	assert.Equal(t, "(the Absurd a)", a.String())
	assert.True(t, AlphaEquiv(a, b))
	assert.False(t, AlphaEquiv(&Var{Name: "a"}, &Var{Name: "b"}))
}

func TestAlphaEquivIgnoresBinderNames(t *testing.T) {
	x := &Lambda{Name: "x", Body: &Var{Name: "x"}}
	y := &Lambda{Name: "y", Body: &Var{Name: "y"}}
	assert.True(t, AlphaEquiv(x, y))

	// (λ (x) (λ (y) x)) is not (λ (y) (λ (x) x))
	k1 := &Lambda{Name: "x", Body: &Lambda{Name: "y", Body: &Var{Name: "x"}}}
	k2 := &Lambda{Name: "y", Body: &Lambda{Name: "x", Body: &Var{Name: "x"}}}
	assert.False(t, AlphaEquiv(k1, k2))

	// free variables compare by name
	assert.False(t, AlphaEquiv(&Lambda{Name: "x", Body: &Var{Name: "z"}}, y))
}

func TestNormalizationIsDeterministic(t *testing.T) {
	ctx, err := Context{}.BindFree("n", &VNat{})
	require.NoError(t, err)

	expr := &App{
		Fun: &Lambda{Name: "m", Body: &RecNat{
			Target:   &Var{Name: "m"},
			BaseType: &Nat{},
			Base:     num(1),
			Step: &Lambda{Name: "k", Body: &Lambda{Name: "r",
				Body: &Add1{N: &Var{Name: "r"}}}},
		}},
		Arg: &Add1{N: &Var{Name: "n"}},
	}
	first := normalize(t, ctx, &Nat{}, expr)
	second := normalize(t, ctx, &Nat{}, expr)
	assert.Equal(t, first.String(), second.String())
	assert.True(t, AlphaEquiv(first, second))
}

func TestFresh(t *testing.T) {
	ctx := Context{}
	assert.Equal(t, "x", Fresh(ctx, "x"))
	assert.Equal(t, "x", Fresh(ctx, "_"))

	var err error
	ctx, err = ctx.BindFree("x", &VNat{})
	require.NoError(t, err)
	assert.Equal(t, "x₁", Fresh(ctx, "x"))

	ctx, err = ctx.BindFree("x₁", &VNat{})
	require.NoError(t, err)
	assert.Equal(t, "x₂", Fresh(ctx, "x₁"))
}

func TestContext(t *testing.T) {
	ctx, err := Context{}.BindClaim("five", &VNat{})
	require.NoError(t, err)

	_, err = ctx.BindFree("five", &VNat{})
	var inUse *NameInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "five", inUse.Name)

	_, found := ctx.Env().Lookup("five")
	assert.False(t, found, "claims have no value")

	ctx = ctx.RemoveClaim("five")
	ctx, err = ctx.BindVal("five", &VNat{}, Eval(nil, num(5)))
	require.NoError(t, err)

	v, found := ctx.Env().Lookup("five")
	require.True(t, found)
	assert.Equal(t, "5", ReadBack(ctx, &VNat{}, v).String())

	entries := ctx.Entries()
	require.Len(t, entries, 1)
	assert.IsType(t, &Define{}, entries[0].Binder)
}

func TestDelayForcesOnce(t *testing.T) {
	calls := 0
	env := (*Env)(nil).Extend("f", &VLambda{Name: "x", Body: FuncClosure(func(v Value) Value {
		calls++
		return &VAdd1{Smaller: v}
	})})
	d := Later(env, &App{Fun: &Var{Name: "f"}, Arg: &Zero{}})
	require.IsType(t, &Delay{}, d)

	Now(d)
	Now(d)
	assert.Equal(t, 1, calls)
}

// peano builds (data N () () (z () N) (s ((n N)) N) ind-N).
func peano() *Datatype {
	dt := &Datatype{Name: "N", ElimName: "ind-N"}
	dt.Constructors = []*Constructor{
		{Name: "z", Index: 0, Datatype: dt},
		{Name: "s", Index: 1, Datatype: dt, Args: []CtorArg{
			{Name: "n", Type: &InductiveType{Datatype: dt}, Recursive: true},
		}},
	}
	return dt
}

func TestDatatypeEliminator(t *testing.T) {
	dt := peano()
	z, s := dt.Constructors[0], dt.Constructors[1]
	two := &CtorApp{Ctor: s, Args: []Core{&CtorApp{Ctor: s, Args: []Core{&CtorApp{Ctor: z}}}}}

	toNat := &Eliminator{
		Datatype: dt,
		Target:   two,
		Motive:   &Lambda{Name: "t", Body: &Nat{}},
		Methods: []Core{
			&Zero{},
			&Lambda{Name: "n", Body: &Lambda{Name: "ih", Body: &Add1{N: &Var{Name: "ih"}}}},
		},
	}
	out := normalize(t, Context{}, &Nat{}, toNat)
	assert.Equal(t, "2", out.String())
	assert.Equal(t, "(s (s z))", normalize(t, Context{}, &InductiveType{Datatype: dt}, two).String())
}

func TestConstructorApplications(t *testing.T) {
	dt := peano()
	z, s := dt.Constructors[0], dt.Constructors[1]
	one := &CtorApp{Ctor: s, Args: []Core{&CtorApp{Ctor: z}}}
	two := &CtorApp{Ctor: s, Args: []Core{one}}

	out := normalize(t, Context{}, &InductiveType{Datatype: dt}, two)
	require.IsType(t, &CtorApp{}, out)
	assert.Same(t, s, out.(*CtorApp).Ctor)
	assert.True(t, AlphaEquiv(two, out))
	assert.False(t, AlphaEquiv(one, out))
	assert.Equal(t, "z", (&CtorApp{Ctor: z}).String())
}

func TestDatatypeMethodType(t *testing.T) {
	dt := peano()
	motive := Eval(nil, &Lambda{Name: "t", Body: &Nat{}})

	methodType := ReadBackType(Context{}, dt.Constructors[1].MethodType(nil, motive))
	assert.Equal(t, "(Π ((n N)) (Π ((x Nat)) Nat))", methodType.String())

	ctorType := ReadBackType(Context{}, dt.Constructors[1].Type())
	assert.Equal(t, "(Π ((n N)) N)", ctorType.String())
}

func TestContractViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		cv, ok := r.(*ContractViolation)
		require.True(t, ok, "expected a contract violation, got %T", r)
		assert.Contains(t, cv.Error(), "car on")
	}()
	DoCar(&VZero{})
}

package check

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

func expr(t *testing.T, src string) syntax.Source {
	t.Helper()
	e, err := syntax.ReadExpr("test.pie", src)
	require.NoError(t, err)
	return e
}

// declare processes claims, definitions and datatypes.
func declare(t *testing.T, ctx core.Context, src string) core.Context {
	t.Helper()
	decls, err := syntax.ReadProgram("test.pie", src)
	require.NoError(t, err)
	for _, d := range decls {
		switch d := d.(type) {
		case *syntax.Claim:
			ctx, err = AddClaim(ctx, d.Name, d.Loc(), d.Type)
		case *syntax.Define:
			ctx, err = AddDefine(ctx, d.Name, d.Loc(), d.Expr)
		case *syntax.Data:
			ctx, _, err = ElaborateData(ctx, d)
		default:
			t.Fatalf("unexpected declaration %T", d)
		}
		require.NoError(t, err)
	}
	return ctx
}

// normal synthesizes src and returns its normal form and type.
func normal(t *testing.T, ctx core.Context, src string) (string, string) {
	t.Helper()
	c, tv, err := Synth(ctx, nil, expr(t, src))
	require.NoError(t, err)
	return ShowValue(ctx, tv, Eval(ctx, c)), Show(ctx, tv)
}

func synthErr(t *testing.T, ctx core.Context, src string) *syntax.Error {
	t.Helper()
	_, _, err := Synth(ctx, nil, expr(t, src))
	require.Error(t, err)
	var located *syntax.Error
	require.True(t, errors.As(err, &located), "expected a located error, got %T", err)
	return located
}

func TestSynth(t *testing.T) {
	for _, example := range []struct {
		Src   string
		Value string
		Type  string
	}{
		{"(add1 (add1 zero))", "2", "Nat"},
		{"'pie", "'pie", "Atom"},
		{"(the (-> Nat Nat) (λ (x) (add1 x)))", "(λ (x) (add1 x))", "(Π ((x Nat)) Nat)"},
		{"((the (-> Nat Nat Nat) (λ (a b) a)) 3 4)", "3", "Nat"},
		{"(car (the (Pair Atom Nat) (cons 'a 1)))", "'a", "Atom"},
		{"(which-Nat 3 'zero (λ (n) 'more))", "'more", "Atom"},
		{"(iter-Nat 3 0 (λ (n) (add1 (add1 n))))", "6", "Nat"},
		{"(rec-Nat 3 0 (λ (k acc) (add1 acc)))", "3", "Nat"},
		{"(ind-Nat 2 (λ (k) Nat) 1 (λ (k acc) (add1 acc)))", "3", "Nat"},
		{"(rec-List (the (List Atom) (:: 'a (:: 'b nil))) 0 (λ (e es n) (add1 n)))", "2", "Nat"},
		{"(head (the (Vec Atom 2) (vec:: 'a (vec:: 'b vecnil))))", "'a", "Atom"},
		{"(tail (the (Vec Atom 2) (vec:: 'a (vec:: 'b vecnil))))", "(vec:: 'b vecnil)", "(Vec Atom 1)"},
		{"(the (= Nat 2 2) (same 2))", "(same 2)", "(= Nat 2 2)"},
		{"(symm (the (= Nat 1 1) (same 1)))", "(same 1)", "(= Nat 1 1)"},
		{"(cong (the (= Nat 1 1) (same 1)) (the (-> Nat Nat) (λ (n) (add1 n))))", "(same 2)", "(= Nat 2 2)"},
		{"(ind-Either (the (Either Nat Atom) (left 2)) (λ (e) Nat) (λ (l) l) (λ (r) 0))", "2", "Nat"},
		{"(the (Pair Trivial Nat) (cons sole 0))", "(cons sole 0)", "(Σ ((x Trivial)) Nat)"},
		{"(-> Nat Atom)", "(Π ((x Nat)) Atom)", "U"},
	} {
		t.Run(example.Src, func(t *testing.T) {
			v, ty := normal(t, core.Context{}, example.Src)
			assert.Equal(t, example.Value, v)
			assert.Equal(t, example.Type, ty)
		})
	}
}

func TestSynthErrors(t *testing.T) {
	for _, example := range []struct {
		Src string
		Msg string
	}{
		{"(λ (x) x)", "cannot determine the type of a λ expression"},
		{"nope", "unknown variable nope"},
		{"U", "U is a type, but it does not have a type"},
		{"(the Nat 'a)", "expected Nat, but the type is Atom"},
		{"(the Atom (cons 'a 'b))", "expected Atom, but cons cannot have that type"},
		{"(the (Vec Atom 1) vecnil)", "vecnil has length 0"},
		{"(the (= Nat 1 2) (same 1))", "is not the same as"},
		{"(head (the (Vec Atom 0) vecnil))", "add1 at the top of its length"},
		{"((the Nat 0) 1)", "Nat is not a function type"},
		{"'Hello1", "invalid atom"},
	} {
		t.Run(example.Src, func(t *testing.T) {
			err := synthErr(t, core.Context{}, example.Src)
			assert.Contains(t, err.Msg, example.Msg)
			assert.Equal(t, 1, err.Loc.Line)
		})
	}
}

func TestIsTypeAcceptsUniverse(t *testing.T) {
	c, err := IsType(core.Context{}, nil, expr(t, "(-> U U)"))
	require.NoError(t, err)
	assert.Equal(t, "(Π ((x U)) U)", c.String())

	_, err = Check(core.Context{}, nil, expr(t, "(-> U U)"), &core.VUniverse{})
	require.Error(t, err, "U is not a member of U")
}

func TestBindersAreFreshened(t *testing.T) {
	ctx := declare(t, core.Context{}, `
		(claim x Nat)
		(define x 4)
	`)

	c, err := Check(ctx, nil, expr(t, "(λ (x) x)"), core.Arrow(&core.VAtom{}, &core.VAtom{}))
	require.NoError(t, err)
	assert.Equal(t, "(λ (x₁) x₁)", c.String())

	// the outer x is still visible outside the binder
	v, ty := normal(t, ctx, "(add1 x)")
	assert.Equal(t, "5", v)
	assert.Equal(t, "Nat", ty)
}

func TestRenamingIsPersistent(t *testing.T) {
	var r *Renaming
	inner := r.Extend("x", "x₁")
	sibling := r.Extend("y", "y₁")

	assert.Equal(t, "x₁", inner.Rename("x"))
	assert.Equal(t, "x", sibling.Rename("x"))
	assert.Equal(t, "x", r.Rename("x"))
}

func TestClaimsAndDefinitions(t *testing.T) {
	ctx := declare(t, core.Context{}, `
		(claim id (Π ((A U)) (-> A A)))
		(define id (λ (A x) x))
	`)
	v, ty := normal(t, ctx, "(id Nat 5)")
	assert.Equal(t, "5", v)
	assert.Equal(t, "Nat", ty)

	_, err := AddClaim(ctx, "id", syntax.Location{}, expr(t, "Nat"))
	assert.ErrorContains(t, err, "already in use")

	_, err = AddDefine(ctx, "id", syntax.Location{}, expr(t, "4"))
	assert.ErrorContains(t, err, "already defined")

	ctx, err = AddClaim(ctx, "later", syntax.Location{}, expr(t, "Nat"))
	require.NoError(t, err)
	err = synthErr(t, ctx, "(add1 later)")
	assert.Contains(t, err.Error(), "later is claimed but not yet defined")
}

func TestDefineWithoutClaimSynthesizes(t *testing.T) {
	ctx := declare(t, core.Context{}, `(define two (add1 (add1 zero)))`)
	v, ty := normal(t, ctx, "two")
	assert.Equal(t, "2", v)
	assert.Equal(t, "Nat", ty)
}

func TestCheckSame(t *testing.T) {
	require.NoError(t, CheckSame(core.Context{}, syntax.Location{}, expr(t, "Nat"), expr(t, "(add1 0)"), expr(t, "1")))

	err := CheckSame(core.Context{}, syntax.Location{Line: 1, Column: 1}, expr(t, "Atom"), expr(t, "'a"), expr(t, "'b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'a is not the same as 'b")
}

func TestNeutralEquality(t *testing.T) {
	ctx := declare(t, core.Context{}, `
		(claim +1 (-> Nat Nat))
		(define +1 (λ (n) (add1 n)))
	`)
	// η: a function is the same as its expansion
	require.NoError(t, CheckSame(ctx, syntax.Location{},
		expr(t, "(-> Nat Nat)"), expr(t, "+1"), expr(t, "(λ (k) (+1 k))")))

	// any two proofs of Absurd are the same
	require.NoError(t, CheckSame(ctx, syntax.Location{},
		expr(t, "(-> Absurd Absurd Absurd)"), expr(t, "(λ (a b) a)"), expr(t, "(λ (a b) b)")))
}

func TestTODO(t *testing.T) {
	c, err := Check(core.Context{}, nil, expr(t, "TODO"), &core.VNat{})
	require.NoError(t, err)
	todo, ok := c.(*core.TODO)
	require.True(t, ok)
	assert.Equal(t, "Nat", todo.Type.String())
	assert.Equal(t, 1, todo.Loc.Line)
}

const vectors = `
(data MyVec ((E U)) ((n Nat))
  (mnil () (MyVec E 0))
  (mcons ((k Nat) (e E) (es (MyVec E k))) (MyVec E (add1 k))))

(data Bool () ()
  (tt () Bool)
  (ff () Bool)
  if)
`

func TestDatatypes(t *testing.T) {
	ctx := declare(t, core.Context{}, vectors)

	t.Run("type former", func(t *testing.T) {
		_, ty := normal(t, ctx, "(MyVec Atom 2)")
		assert.Equal(t, "U", ty)
		synthErr(t, ctx, "(MyVec Atom)")
	})

	t.Run("constructors check against indices", func(t *testing.T) {
		v, ty := normal(t, ctx, "(the (MyVec Atom 1) (mcons 0 'a mnil))")
		assert.Equal(t, "(mcons 0 'a mnil)", v)
		assert.Equal(t, "(MyVec Atom 1)", ty)

		err := synthErr(t, ctx, "(the (MyVec Atom 2) (mcons 0 'a mnil))")
		assert.Contains(t, err.Msg, "constructor mcons makes (MyVec Atom 1)")
	})

	t.Run("constructors without parameters synthesize", func(t *testing.T) {
		v, ty := normal(t, ctx, "tt")
		assert.Equal(t, "tt", v)
		assert.Equal(t, "Bool", ty)

		err := synthErr(t, ctx, "mnil")
		assert.Contains(t, err.Msg, "cannot determine the parameters of MyVec")
	})

	t.Run("eliminator", func(t *testing.T) {
		v, ty := normal(t, ctx, `
			(ind-MyVec (the (MyVec Atom 2) (mcons 1 'a (mcons 0 'b mnil)))
			  (λ (n v) Nat)
			  0
			  (λ (k e es ih) (add1 ih)))`)
		assert.Equal(t, "2", v)
		assert.Equal(t, "Nat", ty)

		v, ty = normal(t, ctx, "(if ff (λ (b) Atom) 'yes 'no)")
		assert.Equal(t, "'no", v)
		assert.Equal(t, "Atom", ty)
	})

	t.Run("eliminator on a variable is neutral", func(t *testing.T) {
		ctx, err := AddClaim(ctx, "not", syntax.Location{}, expr(t, "(-> Bool Bool)"))
		require.NoError(t, err)
		ctx, err = AddDefine(ctx, "not", syntax.Location{}, expr(t, "(λ (b) (if b (λ (x) Bool) ff tt))"))
		require.NoError(t, err)

		v, _ := normal(t, ctx, "not")
		assert.Equal(t, "(λ (b) (if b (λ (x) Bool) ff tt))", v)
		v, _ = normal(t, ctx, "(not (not tt))")
		assert.Equal(t, "tt", v)
	})
}

func TestDatatypeErrors(t *testing.T) {
	for _, example := range []struct {
		Name string
		Src  string
		Msg  string
	}{
		{
			"wrong result",
			"(data Box ((A U)) () (box ((a A)) Nat))",
			"constructor box must construct a Box",
		},
		{
			"changed parameter",
			"(data Box ((A U)) () (box ((a A)) (Box Nat)))",
			"applied to its parameters unchanged",
		},
		{
			"duplicate constructor",
			"(data Two () () (one () Two) (one () Two))",
			"the name one is already in use",
		},
	} {
		t.Run(example.Name, func(t *testing.T) {
			decls, err := syntax.ReadProgram("test.pie", example.Src)
			require.NoError(t, err)
			_, _, err = ElaborateData(core.Context{}, decls[0].(*syntax.Data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), example.Msg)
		})
	}
}

package tactic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/pie/pkg/check"
	"github.com/vito/pie/pkg/core"
	"github.com/vito/pie/pkg/syntax"
)

// run processes declarations and stops at the first error.
func run(t *testing.T, src string) (core.Context, error) {
	t.Helper()
	decls, err := syntax.ReadProgram("test.pie", src)
	require.NoError(t, err)
	var ctx core.Context
	for _, d := range decls {
		switch d := d.(type) {
		case *syntax.Claim:
			ctx, err = check.AddClaim(ctx, d.Name, d.Loc(), d.Type)
		case *syntax.Define:
			ctx, err = check.AddDefine(ctx, d.Name, d.Loc(), d.Expr)
		case *syntax.Data:
			ctx, _, err = check.ElaborateData(ctx, d)
		case *syntax.DefineTactically:
			ctx, _, err = Prove(ctx, d)
		default:
			t.Fatalf("unexpected declaration %T", d)
		}
		if err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func prove(t *testing.T, src string) core.Context {
	t.Helper()
	ctx, err := run(t, src)
	require.NoError(t, err)
	return ctx
}

func fails(t *testing.T, src string) *syntax.Error {
	t.Helper()
	_, err := run(t, src)
	require.Error(t, err)
	var located *syntax.Error
	require.True(t, errors.As(err, &located), "expected a located error, got %T", err)
	return located
}

// eval synthesizes src and returns its normal form.
func eval(t *testing.T, ctx core.Context, src string) string {
	t.Helper()
	e, err := syntax.ReadExpr("test.pie", src)
	require.NoError(t, err)
	c, tv, err := check.Synth(ctx, nil, e)
	require.NoError(t, err)
	return check.ShowValue(ctx, tv, check.Eval(ctx, c))
}

func TestSplitPair(t *testing.T) {
	ctx := prove(t, `
(claim p (Pair Nat Nat))
(define-tactically p
  ((split-Pair)
   (then (exact zero))
   (then (exact zero))))
`)
	assert.Equal(t, "(cons 0 0)", eval(t, ctx, "p"))

	b, found := ctx.Lookup("p")
	require.True(t, found)
	assert.IsType(t, &core.Define{}, b, "the claim is replaced by the definition")
}

func TestElimNat(t *testing.T) {
	ctx := prove(t, `
(claim f (Π ((n Nat)) (= Nat n n)))
(define-tactically f
  ((intro n)
   (elim-Nat n)
   (then (exact (same zero)))
   (then (intro n-1) (intro ih) (exact (same (add1 n-1))))))
`)
	assert.Equal(t, "(same 5)", eval(t, ctx, "(f 5)"))
}

func TestMissingBranch(t *testing.T) {
	err := fails(t, `
(claim f (Π ((n Nat)) (= Nat n n)))
(define-tactically f
  ((intro n)
   (elim-Nat n)
   (then (exact (same zero)))))
`)
	assert.Contains(t, err.Msg, "missing then for 1 branch of f")
}

func TestMissingBranchCounts(t *testing.T) {
	for _, example := range []struct {
		Name    string
		Source  string
		Message string
	}{
		{
			Name: "no then after a split",
			Source: `
(claim f (Π ((n Nat)) (= Nat n n)))
(define-tactically f
  ((intro n)
   (elim-Nat n)))
`,
			Message: "missing then for 2 branches of f",
		},
		{
			Name: "one then missing inside a block",
			Source: `
(claim f (-> Nat (Pair Nat Nat)))
(define-tactically f
  ((then (intro n)
         (split-Pair)
         (then (exact n)))))
`,
			Message: "missing then for 1 branch in this block",
		},
		{
			Name: "one branch waiting",
			Source: `
(claim f (Π ((n Nat)) (= Nat n n)))
(define-tactically f
  ((intro n)
   (elim-Nat n)
   (then (exact (same zero)))
   (intro k)))
`,
			Message: "intro cannot be used while 1 branch is waiting",
		},
	} {
		t.Run(example.Name, func(t *testing.T) {
			err := fails(t, example.Source)
			assert.Contains(t, err.Msg, example.Message)
		})
	}
}

func TestBareTacticWhileBranchesWait(t *testing.T) {
	err := fails(t, `
(claim p (Pair Nat Nat))
(define-tactically p
  ((split-Pair)
   (exact zero)))
`)
	assert.Contains(t, err.Msg, "exact cannot be used while 2 branches are waiting")
	assert.Equal(t, 5, err.Loc.Line)
}

func TestThenScopesToCurrentGoal(t *testing.T) {
	ctx := prove(t, `
(claim k (-> Nat Atom Nat))
(define-tactically k
  ((then (intro n) (intro a) (exact n))))
`)
	assert.Equal(t, "7", eval(t, ctx, "(k 7 'x)"))
}

func TestUnfinishedBranch(t *testing.T) {
	err := fails(t, `
(claim p (Pair (-> Nat Nat) Nat))
(define-tactically p
  ((split-Pair)
   (then (intro n))
   (then (exact zero))))
`)
	assert.Contains(t, err.Msg, "branch 1 of split-Pair is not finished")
	assert.Contains(t, err.Msg, "n : Nat")
}

func TestUnfinishedBranchNamesItsTactic(t *testing.T) {
	err := fails(t, `
(claim f (-> Nat Nat Nat))
(define-tactically f
  ((intro n)
   (then (intro m))))
`)
	assert.Contains(t, err.Msg, "the goal left by intro is not finished")

	err = fails(t, `
(claim f (-> Nat Nat))
(define-tactically f
  ((then (intro n))))
`)
	assert.Contains(t, err.Msg, "the proof is not finished")
}

func TestIncompleteProof(t *testing.T) {
	err := fails(t, `
(claim f (-> Nat Nat))
(define-tactically f ((intro n)))
`)
	assert.Contains(t, err.Msg, "the proof of f is incomplete")
	assert.Contains(t, err.Msg, "n : Nat")
}

func TestNoGoalsRemain(t *testing.T) {
	err := fails(t, `
(claim z Nat)
(define-tactically z ((exact 0) (exact 1)))
`)
	assert.Contains(t, err.Msg, "no goals remain")
}

func TestUnclaimed(t *testing.T) {
	err := fails(t, `(define-tactically z ((exact 0)))`)
	assert.Contains(t, err.Msg, "z must be claimed")
}

func TestExists(t *testing.T) {
	ctx := prove(t, `
(claim three (Σ ((n Nat)) (= Nat n 3)))
(define-tactically three
  ((exists 3 n)
   (exact (same n))))
`)
	assert.Equal(t, "(cons 3 (same 3))", eval(t, ctx, "three"))
}

func TestSplitPairRejectsDependentPairs(t *testing.T) {
	err := fails(t, `
(claim three (Σ ((n Nat)) (= Nat n 3)))
(define-tactically three ((split-Pair)))
`)
	assert.Contains(t, err.Msg, "depends on the first")
}

func TestEither(t *testing.T) {
	ctx := prove(t, `
(claim r (Either Nat Atom))
(define-tactically r ((go-Right) (exact 'pie)))

(claim swap (-> (Either Nat Atom) (Either Atom Nat)))
(define-tactically swap
  ((intro e)
   (elim-Either e)
   (then (intro n) (go-Right) (exact n))
   (then (intro a) (go-Left) (exact a))))
`)
	assert.Equal(t, "(right 'pie)", eval(t, ctx, "r"))
	assert.Equal(t, "(left 'pie)", eval(t, ctx, "(swap r)"))

	err := fails(t, `
(claim n Nat)
(define-tactically n ((go-Left)))
`)
	assert.Contains(t, err.Msg, "go-Left needs the goal to be an Either, but it is Nat")
}

func TestApply(t *testing.T) {
	ctx := prove(t, `
(claim plus-two (-> Nat Nat))
(define-tactically plus-two
  ((intro n)
   (apply (the (-> Nat Nat) (λ (x) (add1 x))))
   (apply (the (-> Nat Nat) (λ (x) (add1 x))))
   (exact n)))
`)
	assert.Equal(t, "5", eval(t, ctx, "(plus-two 3)"))

	err := fails(t, `
(claim n Nat)
(define-tactically n ((apply (the (-> Nat Atom) (λ (x) 'a)))))
`)
	assert.Contains(t, err.Msg, "expected Nat, but the type is Atom")
}

func TestElimList(t *testing.T) {
	ctx := prove(t, `
(claim len (Π ((l (List Atom))) Nat))
(define-tactically len
  ((intro l)
   (elim-List l)
   (then (exact 0))
   (then (intro e) (intro es) (intro n) (exact (add1 n)))))
`)
	assert.Equal(t, "2", eval(t, ctx, "(len (:: 'a (:: 'b nil)))"))
}

func TestElimVec(t *testing.T) {
	ctx := prove(t, `
(claim vlen (Π ((n Nat) (v (Vec Atom n))) Nat))
(define-tactically vlen
  ((intro n)
   (intro v)
   (elim-Vec v)
   (then (exact 0))
   (then (intro k) (intro e) (intro es) (intro ih) (exact (add1 ih)))))
`)
	assert.Equal(t, "2", eval(t, ctx, "(vlen 2 (vec:: 'a (vec:: 'b vecnil)))"))

	err := fails(t, `
(claim two (Π ((v (Vec Atom 2))) Nat))
(define-tactically two ((intro v) (elim-Vec v)))
`)
	assert.Contains(t, err.Msg, "needs an explicit motive")
}

func TestElimEqual(t *testing.T) {
	ctx := prove(t, `
(claim flip (Π ((a Nat) (b Nat) (p (= Nat a b))) (= Nat b a)))
(define-tactically flip
  ((intro a)
   (intro b)
   (intro p)
   (elim-Equal p)
   (then (exact (same a)))))
`)
	assert.Equal(t, "(same 4)", eval(t, ctx, "(flip 4 4 (same 4))"))
}

func TestElimAbsurd(t *testing.T) {
	ctx := prove(t, `
(claim explode (-> Absurd Nat))
(define-tactically explode
  ((intro nope)
   (elim-Absurd nope)))
`)
	assert.Equal(t, "(λ (nope) (ind-Absurd (the Absurd nope) Nat))", eval(t, ctx, "explode"))
}

func TestElimTargets(t *testing.T) {
	err := fails(t, `
(claim f (-> Nat Nat))
(define-tactically f ((intro n) (elim-List n)))
`)
	assert.Contains(t, err.Msg, "elim-List needs n to be a List, but its type is Nat")

	err = fails(t, `
(claim f (-> Nat Nat))
(define-tactically f ((intro n) (elim-Nat m)))
`)
	assert.Contains(t, err.Msg, "unknown variable m")
}

func TestExplicitMotive(t *testing.T) {
	ctx := prove(t, `
(claim double (-> Nat Nat))
(define-tactically double
  ((intro n)
   (elim-Nat n (λ (k) Nat))
   (then (exact 0))
   (then (intro k) (intro ih) (exact (add1 (add1 ih))))))
`)
	assert.Equal(t, "6", eval(t, ctx, "(double 3)"))

	err := fails(t, `
(claim f (-> Nat Nat))
(define-tactically f ((intro n) (elim-Nat n (λ (k) Atom))))
`)
	assert.Contains(t, err.Msg, "expected Nat, but the type is Atom")
}

const myVec = `
(data MyVec ((E U)) ((n Nat))
  (mnil () (MyVec E 0))
  (mcons ((k Nat) (e E) (es (MyVec E k))) (MyVec E (add1 k))))

(data Bool () ()
  (tt () Bool)
  (ff () Bool)
  if)
`

func TestElimDatatype(t *testing.T) {
	ctx := prove(t, myVec+`
(claim mlen (Π ((n Nat) (v (MyVec Atom n))) Nat))
(define-tactically mlen
  ((intro n)
   (intro v)
   (elim v)
   (then (exact 0))
   (then (intro k) (intro e) (intro es) (intro ih) (exact (add1 ih)))))

(claim not (-> Bool Bool))
(define-tactically not
  ((intro b)
   (elim b)
   (then (exact ff))
   (then (exact tt))))
`)
	assert.Equal(t, "2", eval(t, ctx, "(mlen 2 (the (MyVec Atom 2) (mcons 1 'a (mcons 0 'b mnil))))"))
	assert.Equal(t, "ff", eval(t, ctx, "(not tt)"))
}

func TestEmptyDatatypeNeedsNoBranches(t *testing.T) {
	ctx := prove(t, `
(data Void () ())
(claim void-nat (-> Void Nat))
(define-tactically void-nat ((intro v) (elim v)))
`)
	b, found := ctx.Lookup("void-nat")
	require.True(t, found)
	assert.IsType(t, &core.Define{}, b)
}

func TestGoalTree(t *testing.T) {
	ctx, err := check.AddClaim(core.Context{}, "p", syntax.Location{}, mustExpr(t, "(Pair Nat Atom)"))
	require.NoError(t, err)
	b, _ := ctx.Lookup("p")
	ps := NewProofState(ctx, b.Type())

	require.NoError(t, ps.Run(&syntax.SplitPair{}))
	assert.Equal(t, 2, ps.PendingBranches())
	goals := ps.Goals()
	require.Len(t, goals, 2)
	assert.Equal(t, "Nat", check.Show(ctx, goals[0].Type))
	assert.Equal(t, "Atom", check.Show(ctx, goals[1].Type))
	assert.Len(t, ps.Node(ps.Root()).Children, 2)
	assert.False(t, ps.Complete())

	_, err = ps.Extract()
	assert.Error(t, err)

	require.NoError(t, ps.Run(&syntax.Then{Tactics: []syntax.Tactic{&syntax.Exact{Expr: mustExpr(t, "1")}}}))
	assert.Equal(t, 1, ps.PendingBranches())
	require.NoError(t, ps.Run(&syntax.Then{Tactics: []syntax.Tactic{&syntax.Exact{Expr: mustExpr(t, "'b")}}}))
	assert.Equal(t, 0, ps.PendingBranches())
	assert.True(t, ps.Complete())

	term, err := ps.Extract()
	require.NoError(t, err)
	assert.Equal(t, "(cons 1 'b)", term.String())
}

func mustExpr(t *testing.T, src string) syntax.Source {
	t.Helper()
	e, err := syntax.ReadExpr("test.pie", src)
	require.NoError(t, err)
	return e
}

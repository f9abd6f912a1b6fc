package syntax

// Decl is a top-level declaration.
type Decl interface {
	Loc() Location
	decl()
}

type (
	// Claim declares the type of a name before it is defined.
	Claim struct {
		Location Location
		Name     string
		Type     Source
	}

	// Define gives a claimed name its value.
	Define struct {
		Location Location
		Name     string
		Expr     Source
	}

	// DefineTactically proves a claim with a tactic script.
	DefineTactically struct {
		Location Location
		Name     string
		Tactics  []Tactic
	}

	// CheckSame asserts that Left and Right are the same Type.
	CheckSame struct {
		Location    Location
		Type        Source
		Left, Right Source
	}

	// Data declares an inductive family.
	Data struct {
		Location     Location
		Name         string
		Params       []Binder
		Indices      []Binder
		Constructors []CtorDecl
		ElimName     string
	}

	// Expr is a bare expression to synthesize and print.
	Expr struct {
		Expr Source
	}
)

// CtorDecl is one constructor of a Data declaration. Result is the
// datatype applied to its parameters and the constructor's indices.
type CtorDecl struct {
	Loc    Location
	Name   string
	Args   []Binder
	Result Source
}

func (d *Claim) Loc() Location            { return d.Location }
func (d *Define) Loc() Location           { return d.Location }
func (d *DefineTactically) Loc() Location { return d.Location }
func (d *CheckSame) Loc() Location        { return d.Location }
func (d *Data) Loc() Location             { return d.Location }
func (d *Expr) Loc() Location             { return d.Expr.Loc() }

func (*Claim) decl()            {}
func (*Define) decl()           {}
func (*DefineTactically) decl() {}
func (*CheckSame) decl()        {}
func (*Data) decl()             {}
func (*Expr) decl()             {}

// Tactic is one step of a define-tactically script.
type Tactic interface {
	Loc() Location
	// Name is the tactic keyword, for logging and error messages.
	Name() string
	tactic()
}

// ElimKind selects which eliminator an Elim tactic applies.
type ElimKind int

const (
	ElimNat ElimKind = iota
	ElimList
	ElimVec
	ElimEither
	ElimEqual
	ElimAbsurd
	// ElimData eliminates a target of a user-declared datatype.
	ElimData
)

var elimKeywords = map[ElimKind]string{
	ElimNat:    "elim-Nat",
	ElimList:   "elim-List",
	ElimVec:    "elim-Vec",
	ElimEither: "elim-Either",
	ElimEqual:  "elim-Equal",
	ElimAbsurd: "elim-Absurd",
	ElimData:   "elim",
}

func (k ElimKind) String() string {
	return elimKeywords[k]
}

type (
	Intro struct {
		Location Location
		Var      string
	}
	Exact struct {
		Location Location
		Expr     Source
	}
	Exists struct {
		Location Location
		Value    Source
		// Var names the witness in the remaining goal; empty picks the
		// Σ binder's own name.
		Var string
	}
	Elim struct {
		Location  Location
		Kind      ElimKind
		Target    string
		TargetLoc Location
		// Motive is optional; nil asks for the motive to be abstracted from
		// the goal.
		Motive Source
	}
	GoLeft    struct{ Location Location }
	GoRight   struct{ Location Location }
	SplitPair struct{ Location Location }
	Apply     struct {
		Location Location
		Fun      Source
	}
	Then struct {
		Location Location
		Tactics  []Tactic
	}
)

func (t *Intro) Loc() Location     { return t.Location }
func (t *Exact) Loc() Location     { return t.Location }
func (t *Exists) Loc() Location    { return t.Location }
func (t *Elim) Loc() Location      { return t.Location }
func (t *GoLeft) Loc() Location    { return t.Location }
func (t *GoRight) Loc() Location   { return t.Location }
func (t *SplitPair) Loc() Location { return t.Location }
func (t *Apply) Loc() Location     { return t.Location }
func (t *Then) Loc() Location      { return t.Location }

func (*Intro) Name() string     { return "intro" }
func (*Exact) Name() string     { return "exact" }
func (*Exists) Name() string    { return "exists" }
func (t *Elim) Name() string    { return t.Kind.String() }
func (*GoLeft) Name() string    { return "go-Left" }
func (*GoRight) Name() string   { return "go-Right" }
func (*SplitPair) Name() string { return "split-Pair" }
func (*Apply) Name() string     { return "apply" }
func (*Then) Name() string      { return "then" }

func (*Intro) tactic()     {}
func (*Exact) tactic()     {}
func (*Exists) tactic()    {}
func (*Elim) tactic()      {}
func (*GoLeft) tactic()    {}
func (*GoRight) tactic()   {}
func (*SplitPair) tactic() {}
func (*Apply) tactic()     {}
func (*Then) tactic()      {}

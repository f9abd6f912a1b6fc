package syntax

// Source is a surface expression, as written by the user. Every construct has
// its own node type; consumers switch over the closed set below.
type Source interface {
	Loc() Location
	source()
}

// Node carries the location shared by every surface construct.
type Node struct {
	Location Location
}

func (n Node) Loc() Location { return n.Location }
func (Node) source()         {}

// Binder is one (name type) entry of a Π, Σ or datatype telescope.
type Binder struct {
	Loc  Location
	Name string
	Type Source
}

// Param is one bound name of a lambda.
type Param struct {
	Loc  Location
	Name string
}

type (
	// Var is a reference to a bound name, including datatype names and
	// constructors, which are resolved by the checker.
	Var struct {
		Node
		Name string
	}

	// The is a type annotation (the T e).
	The struct {
		Node
		Type  Source
		Value Source
	}

	// TODO is an unresolved hole.
	TODO struct{ Node }

	// App applies a function to one or more arguments.
	App struct {
		Node
		Fun  Source
		Args []Source
	}

	U struct{ Node }

	Nat  struct{ Node }
	Zero struct{ Node }
	Add1 struct {
		Node
		N Source
	}
	NatLit struct {
		Node
		N int
	}
	WhichNat struct {
		Node
		Target, Base, Step Source
	}
	IterNat struct {
		Node
		Target, Base, Step Source
	}
	RecNat struct {
		Node
		Target, Base, Step Source
	}
	IndNat struct {
		Node
		Target, Motive, Base, Step Source
	}

	Atom  struct{ Node }
	Quote struct {
		Node
		Name string
	}

	Trivial struct{ Node }
	Sole    struct{ Node }

	// Arrow is (-> A ... B), a non-dependent Π type over Args with range Range.
	Arrow struct {
		Node
		Args  []Source
		Range Source
	}
	Pi struct {
		Node
		Binders []Binder
		Range   Source
	}
	Lambda struct {
		Node
		Params []Param
		Body   Source
	}

	Sigma struct {
		Node
		Binders []Binder
		Body    Source
	}
	Pair struct {
		Node
		Car, Cdr Source
	}
	Cons struct {
		Node
		Car, Cdr Source
	}
	Car struct {
		Node
		Pair Source
	}
	Cdr struct {
		Node
		Pair Source
	}

	List struct {
		Node
		Elem Source
	}
	Nil      struct{ Node }
	ListCons struct {
		Node
		Head, Tail Source
	}
	RecList struct {
		Node
		Target, Base, Step Source
	}
	IndList struct {
		Node
		Target, Motive, Base, Step Source
	}

	Vec struct {
		Node
		Elem, Len Source
	}
	VecNil  struct{ Node }
	VecCons struct {
		Node
		Head, Tail Source
	}
	Head struct {
		Node
		Vec Source
	}
	Tail struct {
		Node
		Vec Source
	}
	IndVec struct {
		Node
		Len, Target, Motive, Base, Step Source
	}

	Equal struct {
		Node
		Type, From, To Source
	}
	Same struct {
		Node
		Value Source
	}
	Replace struct {
		Node
		Target, Motive, Base Source
	}
	Trans struct {
		Node
		Left, Right Source
	}
	Cong struct {
		Node
		Target, Fun Source
	}
	Symm struct {
		Node
		Target Source
	}
	IndEqual struct {
		Node
		Target, Motive, Base Source
	}

	Either struct {
		Node
		Left, Right Source
	}
	Left struct {
		Node
		Value Source
	}
	Right struct {
		Node
		Value Source
	}
	IndEither struct {
		Node
		Target, Motive, BaseLeft, BaseRight Source
	}

	Absurd    struct{ Node }
	IndAbsurd struct {
		Node
		Target, Motive Source
	}
)

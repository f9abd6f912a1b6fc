package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vito/pie/pkg/syntax"
)

// Core is an elaborated term. Core terms are produced by the checker and by
// ReadBack; they carry no source locations and are never mutated.
type Core interface {
	fmt.Stringer
	core()
}

type (
	Universe struct{}

	Nat  struct{}
	Zero struct{}
	Add1 struct{ N Core }

	// WhichNat, IterNat and RecNat keep the type of their base so that a
	// stuck application can be read back and compared.
	WhichNat struct{ Target, BaseType, Base, Step Core }
	IterNat  struct{ Target, BaseType, Base, Step Core }
	RecNat   struct{ Target, BaseType, Base, Step Core }
	IndNat   struct{ Target, Motive, Base, Step Core }

	Atom  struct{}
	Quote struct{ Name string }

	Trivial struct{}
	Sole    struct{}

	Pi struct {
		Name   string
		Domain Core
		Range  Core
	}
	Lambda struct {
		Name string
		Body Core
	}
	App struct{ Fun, Arg Core }

	Sigma struct {
		Name    string
		CarType Core
		CdrType Core
	}
	Cons struct{ Car, Cdr Core }
	Car  struct{ Pair Core }
	Cdr  struct{ Pair Core }

	List     struct{ Elem Core }
	Nil      struct{}
	ListCons struct{ Head, Tail Core }
	RecList  struct{ Target, BaseType, Base, Step Core }
	IndList  struct{ Target, Motive, Base, Step Core }

	Vec     struct{ Elem, Len Core }
	VecNil  struct{}
	VecCons struct{ Head, Tail Core }
	Head    struct{ Vec Core }
	Tail    struct{ Vec Core }
	IndVec  struct{ Len, Target, Motive, Base, Step Core }

	Equal    struct{ Type, From, To Core }
	Same     struct{ Value Core }
	Replace  struct{ Target, Motive, Base Core }
	Trans    struct{ Left, Right Core }
	Cong     struct{ Target, BaseType, Fun Core }
	Symm     struct{ Target Core }
	IndEqual struct{ Target, Motive, Base Core }

	Either    struct{ Left, Right Core }
	Left      struct{ Value Core }
	Right     struct{ Value Core }
	IndEither struct{ Target, Motive, BaseLeft, BaseRight Core }

	Absurd    struct{}
	IndAbsurd struct{ Target, Motive Core }

	Var struct{ Name string }
	The struct{ Type, Value Core }

	// TODO is an unresolved hole standing for some value of Type.
	TODO struct {
		Loc  syntax.Location
		Type Core
	}

	InductiveType struct {
		Datatype *Datatype
		Params   []Core
		Indices  []Core
	}
	CtorApp struct {
		Ctor *Constructor
		Args []Core
	}
	Eliminator struct {
		Datatype *Datatype
		Target   Core
		Motive   Core
		Methods  []Core
	}
)

func (*Universe) core()      {}
func (*Nat) core()           {}
func (*Zero) core()          {}
func (*Add1) core()          {}
func (*WhichNat) core()      {}
func (*IterNat) core()       {}
func (*RecNat) core()        {}
func (*IndNat) core()        {}
func (*Atom) core()          {}
func (*Quote) core()         {}
func (*Trivial) core()       {}
func (*Sole) core()          {}
func (*Pi) core()            {}
func (*Lambda) core()        {}
func (*App) core()           {}
func (*Sigma) core()         {}
func (*Cons) core()          {}
func (*Car) core()           {}
func (*Cdr) core()           {}
func (*List) core()          {}
func (*Nil) core()           {}
func (*ListCons) core()      {}
func (*RecList) core()       {}
func (*IndList) core()       {}
func (*Vec) core()           {}
func (*VecNil) core()        {}
func (*VecCons) core()       {}
func (*Head) core()          {}
func (*Tail) core()          {}
func (*IndVec) core()        {}
func (*Equal) core()         {}
func (*Same) core()          {}
func (*Replace) core()       {}
func (*Trans) core()         {}
func (*Cong) core()          {}
func (*Symm) core()          {}
func (*IndEqual) core()      {}
func (*Either) core()        {}
func (*Left) core()          {}
func (*Right) core()         {}
func (*IndEither) core()     {}
func (*Absurd) core()        {}
func (*IndAbsurd) core()     {}
func (*Var) core()           {}
func (*The) core()           {}
func (*TODO) core()          {}
func (*InductiveType) core() {}
func (*CtorApp) core()       {}
func (*Eliminator) core()    {}

func sexp(head string, args ...Core) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(head)
	for _, a := range args {
		sb.WriteString(" ")
		sb.WriteString(a.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// numeral reports the number a chain of add1s around zero denotes.
func numeral(c Core) (int, bool) {
	n := 0
	for {
		switch e := c.(type) {
		case *Zero:
			return n, true
		case *Add1:
			n++
			c = e.N
		default:
			return 0, false
		}
	}
}

func (*Universe) String() string { return "U" }
func (*Nat) String() string      { return "Nat" }
func (*Zero) String() string     { return "0" }
func (c *Add1) String() string {
	if n, ok := numeral(c); ok {
		return strconv.Itoa(n)
	}
	return sexp("add1", c.N)
}
func (c *WhichNat) String() string {
	return sexp("which-Nat", c.Target, &The{c.BaseType, c.Base}, c.Step)
}
func (c *IterNat) String() string {
	return sexp("iter-Nat", c.Target, &The{c.BaseType, c.Base}, c.Step)
}
func (c *RecNat) String() string {
	return sexp("rec-Nat", c.Target, &The{c.BaseType, c.Base}, c.Step)
}
func (c *IndNat) String() string {
	return sexp("ind-Nat", c.Target, c.Motive, c.Base, c.Step)
}
func (*Atom) String() string    { return "Atom" }
func (c *Quote) String() string { return "'" + c.Name }
func (*Trivial) String() string { return "Trivial" }
func (*Sole) String() string    { return "sole" }
func (c *Pi) String() string {
	return fmt.Sprintf("(Π ((%s %s)) %s)", c.Name, c.Domain, c.Range)
}
func (c *Lambda) String() string {
	return fmt.Sprintf("(λ (%s) %s)", c.Name, c.Body)
}
func (c *App) String() string {
	// flatten curried applications
	args := []Core{c.Arg}
	fun := c.Fun
	for {
		app, ok := fun.(*App)
		if !ok {
			break
		}
		args = append([]Core{app.Arg}, args...)
		fun = app.Fun
	}
	return sexp(fun.String(), args...)
}
func (c *Sigma) String() string {
	return fmt.Sprintf("(Σ ((%s %s)) %s)", c.Name, c.CarType, c.CdrType)
}
func (c *Cons) String() string     { return sexp("cons", c.Car, c.Cdr) }
func (c *Car) String() string      { return sexp("car", c.Pair) }
func (c *Cdr) String() string      { return sexp("cdr", c.Pair) }
func (c *List) String() string     { return sexp("List", c.Elem) }
func (*Nil) String() string        { return "nil" }
func (c *ListCons) String() string { return sexp("::", c.Head, c.Tail) }
func (c *RecList) String() string {
	return sexp("rec-List", c.Target, &The{c.BaseType, c.Base}, c.Step)
}
func (c *IndList) String() string {
	return sexp("ind-List", c.Target, c.Motive, c.Base, c.Step)
}
func (c *Vec) String() string     { return sexp("Vec", c.Elem, c.Len) }
func (*VecNil) String() string    { return "vecnil" }
func (c *VecCons) String() string { return sexp("vec::", c.Head, c.Tail) }
func (c *Head) String() string    { return sexp("head", c.Vec) }
func (c *Tail) String() string    { return sexp("tail", c.Vec) }
func (c *IndVec) String() string {
	return sexp("ind-Vec", c.Len, c.Target, c.Motive, c.Base, c.Step)
}
func (c *Equal) String() string   { return sexp("=", c.Type, c.From, c.To) }
func (c *Same) String() string    { return sexp("same", c.Value) }
func (c *Replace) String() string { return sexp("replace", c.Target, c.Motive, c.Base) }
func (c *Trans) String() string   { return sexp("trans", c.Left, c.Right) }
func (c *Cong) String() string     { return sexp("cong", c.Target, c.Fun) }
func (c *Symm) String() string     { return sexp("symm", c.Target) }
func (c *IndEqual) String() string { return sexp("ind-=", c.Target, c.Motive, c.Base) }
func (c *Either) String() string   { return sexp("Either", c.Left, c.Right) }
func (c *Left) String() string     { return sexp("left", c.Value) }
func (c *Right) String() string    { return sexp("right", c.Value) }
func (c *IndEither) String() string {
	return sexp("ind-Either", c.Target, c.Motive, c.BaseLeft, c.BaseRight)
}
func (*Absurd) String() string      { return "Absurd" }
func (c *IndAbsurd) String() string { return sexp("ind-Absurd", c.Target, c.Motive) }
func (c *Var) String() string       { return c.Name }
func (c *The) String() string       { return sexp("the", c.Type, c.Value) }
func (*TODO) String() string        { return "TODO" }
func (c *InductiveType) String() string {
	if len(c.Params)+len(c.Indices) == 0 {
		return c.Datatype.Name
	}
	return sexp(c.Datatype.Name, append(append([]Core{}, c.Params...), c.Indices...)...)
}
func (c *CtorApp) String() string {
	if len(c.Args) == 0 {
		return c.Ctor.Name
	}
	return sexp(c.Ctor.Name, c.Args...)
}
func (c *Eliminator) String() string {
	return sexp(c.Datatype.ElimName, append([]Core{c.Target, c.Motive}, c.Methods...)...)
}

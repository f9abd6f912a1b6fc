package core

import (
	"github.com/vito/pie/pkg/syntax"
)

// Value is the semantic domain Core terms evaluate to. Every Value is either
// in weak head normal form, a Neutral stuck on a variable, or a Delay that
// Now forces into one of those.
type Value interface {
	value()
}

type (
	VUniverse struct{}

	VNat  struct{}
	VZero struct{}
	VAdd1 struct{ Smaller Value }

	VAtom  struct{}
	VQuote struct{ Name string }

	VTrivial struct{}
	VSole    struct{}

	VPi struct {
		Name   string
		Domain Value
		Range  Closure
	}
	VLambda struct {
		Name string
		Body Closure
	}

	VSigma struct {
		Name    string
		CarType Value
		CdrType Closure
	}
	VCons struct{ Car, Cdr Value }

	VList     struct{ Elem Value }
	VNil      struct{}
	VListCons struct{ Head, Tail Value }

	VVec     struct{ Elem, Len Value }
	VVecNil  struct{}
	VVecCons struct{ Head, Tail Value }

	VEqual struct{ Type, From, To Value }
	VSame  struct{ Value Value }

	VEither struct{ Left, Right Value }
	VLeft   struct{ Value Value }
	VRight  struct{ Value Value }

	VAbsurd struct{}

	VInductiveType struct {
		Datatype *Datatype
		Params   []Value
		Indices  []Value
	}
	VConstructor struct {
		Ctor *Constructor
		Args []Value
	}

	// VNeutral is a computation stuck on a free variable. It carries its
	// type so that ReadBack never has to infer one.
	VNeutral struct {
		Type    Value
		Neutral Neutral
	}
)

func (*VUniverse) value()      {}
func (*VNat) value()           {}
func (*VZero) value()          {}
func (*VAdd1) value()          {}
func (*VAtom) value()          {}
func (*VQuote) value()         {}
func (*VTrivial) value()       {}
func (*VSole) value()          {}
func (*VPi) value()            {}
func (*VLambda) value()        {}
func (*VSigma) value()         {}
func (*VCons) value()          {}
func (*VList) value()          {}
func (*VNil) value()           {}
func (*VListCons) value()      {}
func (*VVec) value()           {}
func (*VVecNil) value()        {}
func (*VVecCons) value()       {}
func (*VEqual) value()         {}
func (*VSame) value()          {}
func (*VEither) value()        {}
func (*VLeft) value()          {}
func (*VRight) value()         {}
func (*VAbsurd) value()        {}
func (*VInductiveType) value() {}
func (*VConstructor) value()   {}
func (*VNeutral) value()       {}
func (*Delay) value()          {}

// Normal pairs a value with its type, which is everything ReadBack needs.
type Normal struct {
	Type  Value
	Value Value
}

// Neutral is the stuck part of a VNeutral. Arguments that are not
// themselves stuck are kept as Normals so they can be read back.
type Neutral interface {
	neutral()
}

type (
	NVar  struct{ Name string }
	NTODO struct {
		Loc  syntax.Location
		Type Value
	}

	NWhichNat struct {
		Target     Neutral
		Base, Step Normal
	}
	NIterNat struct {
		Target     Neutral
		Base, Step Normal
	}
	NRecNat struct {
		Target     Neutral
		Base, Step Normal
	}
	NIndNat struct {
		Target             Neutral
		Motive, Base, Step Normal
	}

	NApp struct {
		Fun Neutral
		Arg Normal
	}

	NCar struct{ Target Neutral }
	NCdr struct{ Target Neutral }

	NRecList struct {
		Target     Neutral
		Base, Step Normal
	}
	NIndList struct {
		Target             Neutral
		Motive, Base, Step Normal
	}

	NHead   struct{ Target Neutral }
	NTail   struct{ Target Neutral }
	NIndVec struct {
		Len                Normal
		Target             Neutral
		Motive, Base, Step Normal
	}

	NReplace struct {
		Target       Neutral
		Motive, Base Normal
	}
	// NTrans is stuck when at least one side is neutral.
	NTrans struct{ Left, Right Normal }
	NCong  struct {
		Target   Neutral
		BaseType Value
		Fun      Normal
	}
	NSymm     struct{ Target Neutral }
	NIndEqual struct {
		Target       Neutral
		Motive, Base Normal
	}

	NIndEither struct {
		Target                      Neutral
		Motive, BaseLeft, BaseRight Normal
	}

	NIndAbsurd struct {
		Target Neutral
		Motive Normal
	}

	NElim struct {
		Datatype *Datatype
		Target   Neutral
		Motive   Normal
		Methods  []Normal
	}
)

func (*NVar) neutral()       {}
func (*NTODO) neutral()      {}
func (*NWhichNat) neutral()  {}
func (*NIterNat) neutral()   {}
func (*NRecNat) neutral()    {}
func (*NIndNat) neutral()    {}
func (*NApp) neutral()       {}
func (*NCar) neutral()       {}
func (*NCdr) neutral()       {}
func (*NRecList) neutral()   {}
func (*NIndList) neutral()   {}
func (*NHead) neutral()      {}
func (*NTail) neutral()      {}
func (*NIndVec) neutral()    {}
func (*NReplace) neutral()   {}
func (*NTrans) neutral()     {}
func (*NCong) neutral()      {}
func (*NSymm) neutral()      {}
func (*NIndEqual) neutral()  {}
func (*NIndEither) neutral() {}
func (*NIndAbsurd) neutral() {}
func (*NElim) neutral()      {}

// Closure is a value abstracted over one more value.
type Closure interface {
	Apply(Value) Value
}

// EnvClosure is a Core body waiting for its variable in a captured Env.
type EnvClosure struct {
	Env  *Env
	Name string
	Body Core
}

func (c *EnvClosure) Apply(v Value) Value {
	return Eval(c.Env.Extend(c.Name, v), c.Body)
}

// FuncClosure is a closure implemented directly in Go, used for the types the
// evaluator and checker build on the fly.
type FuncClosure func(Value) Value

func (f FuncClosure) Apply(v Value) Value {
	return f(v)
}

// Const returns a closure ignoring its argument.
func Const(v Value) Closure {
	return FuncClosure(func(Value) Value { return v })
}

type delayState int

const (
	delayPending delayState = iota
	delayForcing
	delayDone
)

// Delay is a once-initialized cell for call-by-need evaluation. It is owned
// by the value it appears in and is forced in place.
type Delay struct {
	env   *Env
	expr  Core
	state delayState
	val   Value
}

// Later defers evaluating expr in env until the value is needed.
func Later(env *Env, expr Core) Value {
	if v, ok := expr.(*Var); ok {
		if val, found := env.Lookup(v.Name); found {
			return val
		}
	}
	return &Delay{env: env, expr: expr}
}

func (d *Delay) force() Value {
	switch d.state {
	case delayDone:
		return d.val
	case delayForcing:
		panic(contractViolation("cycle while forcing delayed %s", d.expr))
	}
	d.state = delayForcing
	v := Now(Eval(d.env, d.expr))
	d.val = v
	d.state = delayDone
	d.env = nil
	d.expr = nil
	return v
}

// Now forces v to a head-normal value.
func Now(v Value) Value {
	if d, ok := v.(*Delay); ok {
		return d.force()
	}
	return v
}

// VarValue returns the neutral value of a variable of type t.
func VarValue(name string, t Value) Value {
	return &VNeutral{Type: t, Neutral: &NVar{Name: name}}
}

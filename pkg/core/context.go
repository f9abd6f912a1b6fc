package core

import (
	"fmt"
	"slices"
)

// Binder is what a name is bound to in a Context.
type Binder interface {
	// Type is the type of the bound name.
	Type() Value
	binder()
}

type (
	// Free is a variable bound by a λ, Π or tactic, with no known value.
	Free struct{ T Value }
	// Claim is a name whose type is known but whose definition is pending.
	Claim struct{ T Value }
	// Define is a name with both a type and a value.
	Define struct{ T, V Value }

	// DataBinder, CtorBinder and ElimBinder register a user datatype, one
	// of its constructors, and its eliminator.
	DataBinder struct{ Datatype *Datatype }
	CtorBinder struct{ Ctor *Constructor }
	ElimBinder struct{ Datatype *Datatype }
)

func (b *Free) Type() Value       { return b.T }
func (b *Claim) Type() Value      { return b.T }
func (b *Define) Type() Value     { return b.T }
func (b *DataBinder) Type() Value { return b.Datatype.Kind() }
func (b *CtorBinder) Type() Value { return b.Ctor.Type() }
func (b *ElimBinder) Type() Value { return &VUniverse{} }

func (*Free) binder()       {}
func (*Claim) binder()      {}
func (*Define) binder()     {}
func (*DataBinder) binder() {}
func (*CtorBinder) binder() {}
func (*ElimBinder) binder() {}

// Context is an ordered, persistent mapping from names to binders. Every
// extension returns a new Context; existing ones are never changed, so tactic
// branches can hold independent snapshots.
type Context struct {
	last *contextEntry
	size int
}

type contextEntry struct {
	name   string
	binder Binder
	prev   *contextEntry
}

// Entry is one binding of a Context.
type Entry struct {
	Name   string
	Binder Binder
}

// NameInUseError is returned when extending a Context with a name it
// already binds.
type NameInUseError struct {
	Name string
}

func (e *NameInUseError) Error() string {
	return fmt.Sprintf("the name %s is already in use", e.Name)
}

// Len returns the number of bindings.
func (ctx Context) Len() int {
	return ctx.size
}

// Lookup finds the binder for name.
func (ctx Context) Lookup(name string) (Binder, bool) {
	for e := ctx.last; e != nil; e = e.prev {
		if e.name == name {
			return e.binder, true
		}
	}
	return nil, false
}

// Has reports whether name is bound.
func (ctx Context) Has(name string) bool {
	_, found := ctx.Lookup(name)
	return found
}

func (ctx Context) extend(name string, b Binder) Context {
	return Context{
		last: &contextEntry{name: name, binder: b, prev: ctx.last},
		size: ctx.size + 1,
	}
}

func (ctx Context) bind(name string, b Binder) (Context, error) {
	if ctx.Has(name) {
		return ctx, &NameInUseError{Name: name}
	}
	return ctx.extend(name, b), nil
}

// BindFree extends the context with a variable of type t.
func (ctx Context) BindFree(name string, t Value) (Context, error) {
	return ctx.bind(name, &Free{T: t})
}

// BindVal extends the context with a name standing for v of type t.
func (ctx Context) BindVal(name string, t, v Value) (Context, error) {
	return ctx.bind(name, &Define{T: t, V: v})
}

// BindClaim records that name will be defined at type t.
func (ctx Context) BindClaim(name string, t Value) (Context, error) {
	return ctx.bind(name, &Claim{T: t})
}

// BindData registers a datatype, its constructors and its eliminator.
func (ctx Context) BindData(dt *Datatype) (Context, error) {
	var err error
	if ctx, err = ctx.bind(dt.Name, &DataBinder{Datatype: dt}); err != nil {
		return ctx, err
	}
	for _, c := range dt.Constructors {
		if ctx, err = ctx.bind(c.Name, &CtorBinder{Ctor: c}); err != nil {
			return ctx, err
		}
	}
	return ctx.bind(dt.ElimName, &ElimBinder{Datatype: dt})
}

// RemoveClaim drops the claim for name so that its definition can be bound.
func (ctx Context) RemoveClaim(name string) Context {
	entries := ctx.Entries()
	out := Context{}
	for _, e := range entries {
		if _, isClaim := e.Binder.(*Claim); isClaim && e.Name == name {
			continue
		}
		out = out.extend(e.Name, e.Binder)
	}
	return out
}

// Entries lists the bindings from oldest to newest.
func (ctx Context) Entries() []Entry {
	entries := make([]Entry, 0, ctx.size)
	for e := ctx.last; e != nil; e = e.prev {
		entries = append(entries, Entry{Name: e.name, Binder: e.binder})
	}
	slices.Reverse(entries)
	return entries
}

// Env projects the context to the values the evaluator sees. Claims and
// datatype registrations have no value and are skipped.
func (ctx Context) Env() *Env {
	var env *Env
	for _, e := range ctx.Entries() {
		switch b := e.Binder.(type) {
		case *Free:
			env = env.Extend(e.Name, VarValue(e.Name, b.T))
		case *Define:
			env = env.Extend(e.Name, b.V)
		}
	}
	return env
}

// Env is the evaluator's environment: a persistent list of values, newest
// first, where later bindings shadow earlier ones.
type Env struct {
	name  string
	value Value
	next  *Env
}

// Extend returns env with name bound to v.
func (env *Env) Extend(name string, v Value) *Env {
	return &Env{name: name, value: v, next: env}
}

// Lookup finds the innermost value bound to name.
func (env *Env) Lookup(name string) (Value, bool) {
	for e := env; e != nil; e = e.next {
		if e.name == name {
			return e.value, true
		}
	}
	return nil, false
}

package core

// AlphaEquiv reports whether two Core terms are equal up to the names of
// bound variables. Any two terms of the form (the Absurd _) are equal, since
// all proofs of Absurd are.
func AlphaEquiv(a, b Core) bool {
	return alpha(a, b, alphaScope{})
}

type alphaScope struct {
	left, right []string
}

func (s alphaScope) bind(l, r string) alphaScope {
	return alphaScope{
		left:  append(s.left[:len(s.left):len(s.left)], l),
		right: append(s.right[:len(s.right):len(s.right)], r),
	}
}

func lastIndex(names []string, name string) int {
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == name {
			return i
		}
	}
	return -1
}

func (s alphaScope) same(l, r string) bool {
	i, j := lastIndex(s.left, l), lastIndex(s.right, r)
	if i < 0 && j < 0 {
		return l == r
	}
	return i == j
}

func isAbsurdProof(c Core) bool {
	the, ok := c.(*The)
	if !ok {
		return false
	}
	_, ok = the.Type.(*Absurd)
	return ok
}

func alphaAll(as, bs []Core, s alphaScope) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !alpha(as[i], bs[i], s) {
			return false
		}
	}
	return true
}

func alpha(a, b Core, s alphaScope) bool {
	if isAbsurdProof(a) && isAbsurdProof(b) {
		return true
	}
	switch x := a.(type) {
	case *Universe, *Nat, *Zero, *Atom, *Trivial, *Sole, *Nil, *VecNil, *Absurd:
		return sameKind(a, b)
	case *Add1:
		y, ok := b.(*Add1)
		return ok && alpha(x.N, y.N, s)
	case *Quote:
		y, ok := b.(*Quote)
		return ok && x.Name == y.Name
	case *Var:
		y, ok := b.(*Var)
		return ok && s.same(x.Name, y.Name)
	case *The:
		y, ok := b.(*The)
		return ok && alpha(x.Type, y.Type, s) && alpha(x.Value, y.Value, s)
	case *TODO:
		y, ok := b.(*TODO)
		return ok && x.Loc == y.Loc && alpha(x.Type, y.Type, s)

	case *Pi:
		y, ok := b.(*Pi)
		return ok && alpha(x.Domain, y.Domain, s) &&
			alpha(x.Range, y.Range, s.bind(x.Name, y.Name))
	case *Lambda:
		y, ok := b.(*Lambda)
		return ok && alpha(x.Body, y.Body, s.bind(x.Name, y.Name))
	case *Sigma:
		y, ok := b.(*Sigma)
		return ok && alpha(x.CarType, y.CarType, s) &&
			alpha(x.CdrType, y.CdrType, s.bind(x.Name, y.Name))

	case *App:
		y, ok := b.(*App)
		return ok && alpha(x.Fun, y.Fun, s) && alpha(x.Arg, y.Arg, s)
	case *Cons:
		y, ok := b.(*Cons)
		return ok && alpha(x.Car, y.Car, s) && alpha(x.Cdr, y.Cdr, s)
	case *Car:
		y, ok := b.(*Car)
		return ok && alpha(x.Pair, y.Pair, s)
	case *Cdr:
		y, ok := b.(*Cdr)
		return ok && alpha(x.Pair, y.Pair, s)

	case *WhichNat:
		y, ok := b.(*WhichNat)
		return ok && alphaAll([]Core{x.Target, x.BaseType, x.Base, x.Step}, []Core{y.Target, y.BaseType, y.Base, y.Step}, s)
	case *IterNat:
		y, ok := b.(*IterNat)
		return ok && alphaAll([]Core{x.Target, x.BaseType, x.Base, x.Step}, []Core{y.Target, y.BaseType, y.Base, y.Step}, s)
	case *RecNat:
		y, ok := b.(*RecNat)
		return ok && alphaAll([]Core{x.Target, x.BaseType, x.Base, x.Step}, []Core{y.Target, y.BaseType, y.Base, y.Step}, s)
	case *IndNat:
		y, ok := b.(*IndNat)
		return ok && alphaAll([]Core{x.Target, x.Motive, x.Base, x.Step}, []Core{y.Target, y.Motive, y.Base, y.Step}, s)

	case *List:
		y, ok := b.(*List)
		return ok && alpha(x.Elem, y.Elem, s)
	case *ListCons:
		y, ok := b.(*ListCons)
		return ok && alpha(x.Head, y.Head, s) && alpha(x.Tail, y.Tail, s)
	case *RecList:
		y, ok := b.(*RecList)
		return ok && alphaAll([]Core{x.Target, x.BaseType, x.Base, x.Step}, []Core{y.Target, y.BaseType, y.Base, y.Step}, s)
	case *IndList:
		y, ok := b.(*IndList)
		return ok && alphaAll([]Core{x.Target, x.Motive, x.Base, x.Step}, []Core{y.Target, y.Motive, y.Base, y.Step}, s)

	case *Vec:
		y, ok := b.(*Vec)
		return ok && alpha(x.Elem, y.Elem, s) && alpha(x.Len, y.Len, s)
	case *VecCons:
		y, ok := b.(*VecCons)
		return ok && alpha(x.Head, y.Head, s) && alpha(x.Tail, y.Tail, s)
	case *Head:
		y, ok := b.(*Head)
		return ok && alpha(x.Vec, y.Vec, s)
	case *Tail:
		y, ok := b.(*Tail)
		return ok && alpha(x.Vec, y.Vec, s)
	case *IndVec:
		y, ok := b.(*IndVec)
		return ok && alphaAll([]Core{x.Len, x.Target, x.Motive, x.Base, x.Step}, []Core{y.Len, y.Target, y.Motive, y.Base, y.Step}, s)

	case *Equal:
		y, ok := b.(*Equal)
		return ok && alphaAll([]Core{x.Type, x.From, x.To}, []Core{y.Type, y.From, y.To}, s)
	case *Same:
		y, ok := b.(*Same)
		return ok && alpha(x.Value, y.Value, s)
	case *Replace:
		y, ok := b.(*Replace)
		return ok && alphaAll([]Core{x.Target, x.Motive, x.Base}, []Core{y.Target, y.Motive, y.Base}, s)
	case *Trans:
		y, ok := b.(*Trans)
		return ok && alpha(x.Left, y.Left, s) && alpha(x.Right, y.Right, s)
	case *Cong:
		y, ok := b.(*Cong)
		return ok && alphaAll([]Core{x.Target, x.BaseType, x.Fun}, []Core{y.Target, y.BaseType, y.Fun}, s)
	case *Symm:
		y, ok := b.(*Symm)
		return ok && alpha(x.Target, y.Target, s)
	case *IndEqual:
		y, ok := b.(*IndEqual)
		return ok && alphaAll([]Core{x.Target, x.Motive, x.Base}, []Core{y.Target, y.Motive, y.Base}, s)

	case *Either:
		y, ok := b.(*Either)
		return ok && alpha(x.Left, y.Left, s) && alpha(x.Right, y.Right, s)
	case *Left:
		y, ok := b.(*Left)
		return ok && alpha(x.Value, y.Value, s)
	case *Right:
		y, ok := b.(*Right)
		return ok && alpha(x.Value, y.Value, s)
	case *IndEither:
		y, ok := b.(*IndEither)
		return ok && alphaAll([]Core{x.Target, x.Motive, x.BaseLeft, x.BaseRight}, []Core{y.Target, y.Motive, y.BaseLeft, y.BaseRight}, s)
	case *IndAbsurd:
		y, ok := b.(*IndAbsurd)
		return ok && alpha(x.Target, y.Target, s) && alpha(x.Motive, y.Motive, s)

	case *InductiveType:
		y, ok := b.(*InductiveType)
		return ok && x.Datatype == y.Datatype &&
			alphaAll(x.Params, y.Params, s) && alphaAll(x.Indices, y.Indices, s)
	case *CtorApp:
		y, ok := b.(*CtorApp)
		return ok && x.Ctor == y.Ctor && alphaAll(x.Args, y.Args, s)
	case *Eliminator:
		y, ok := b.(*Eliminator)
		return ok && x.Datatype == y.Datatype &&
			alpha(x.Target, y.Target, s) && alpha(x.Motive, y.Motive, s) &&
			alphaAll(x.Methods, y.Methods, s)
	}
	return false
}

func sameKind(a, b Core) bool {
	switch a.(type) {
	case *Universe:
		_, ok := b.(*Universe)
		return ok
	case *Nat:
		_, ok := b.(*Nat)
		return ok
	case *Zero:
		_, ok := b.(*Zero)
		return ok
	case *Atom:
		_, ok := b.(*Atom)
		return ok
	case *Trivial:
		_, ok := b.(*Trivial)
		return ok
	case *Sole:
		_, ok := b.(*Sole)
		return ok
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *VecNil:
		_, ok := b.(*VecNil)
		return ok
	case *Absurd:
		_, ok := b.(*Absurd)
		return ok
	}
	return false
}

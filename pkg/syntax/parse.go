package syntax

// keywords cannot be used as variable names.
var keywords = map[string]bool{
	"U": true, "Nat": true, "zero": true, "add1": true, "which-Nat": true,
	"iter-Nat": true, "rec-Nat": true, "ind-Nat": true, "Atom": true,
	"Trivial": true, "sole": true, "->": true, "→": true, "Pi": true, "Π": true,
	"Sigma": true, "Σ": true, "Pair": true, "lambda": true, "λ": true,
	"cons": true, "car": true, "cdr": true, "List": true, "nil": true,
	"::": true, "rec-List": true, "ind-List": true, "Vec": true, "vecnil": true,
	"vec::": true, "head": true, "tail": true, "ind-Vec": true, "=": true,
	"same": true, "replace": true, "trans": true, "cong": true, "symm": true,
	"ind-=": true, "Either": true, "left": true, "right": true,
	"ind-Either": true, "Absurd": true, "ind-Absurd": true, "the": true,
	"TODO": true, "claim": true, "define": true, "define-tactically": true,
	"check-same": true, "data": true,
}

// IsKeyword reports whether name is reserved syntax.
func IsKeyword(name string) bool {
	return keywords[name]
}

func headSymbol(l *list) (string, bool) {
	if len(l.items) == 0 {
		return "", false
	}
	sym, ok := l.items[0].(*symbol)
	if !ok {
		return "", false
	}
	return sym.name, true
}

func arity(l *list, name string, n int) error {
	if len(l.items)-1 != n {
		return parseErrorf(l.at, "%s expects %d argument(s), got %d", name, n, len(l.items)-1)
	}
	return nil
}

func parseExprs(ds []datum) ([]Source, error) {
	out := make([]Source, len(ds))
	for i, d := range ds {
		e, err := parseExpr(d)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func parseName(d datum, what string) (string, Location, error) {
	sym, ok := d.(*symbol)
	if !ok {
		return "", d.loc(), parseErrorf(d.loc(), "expected %s name", what)
	}
	if IsKeyword(sym.name) {
		return "", sym.at, parseErrorf(sym.at, "%s is a keyword and cannot be used as a %s name", sym.name, what)
	}
	return sym.name, sym.at, nil
}

func parseBinders(d datum) ([]Binder, error) {
	l, ok := d.(*list)
	if !ok {
		return nil, parseErrorf(d.loc(), "expected a list of binders")
	}
	binders := make([]Binder, 0, len(l.items))
	for _, item := range l.items {
		bl, ok := item.(*list)
		if !ok || len(bl.items) != 2 {
			return nil, parseErrorf(item.loc(), "expected a binder of the form (name type)")
		}
		name, _, err := parseName(bl.items[0], "variable")
		if err != nil {
			return nil, err
		}
		typ, err := parseExpr(bl.items[1])
		if err != nil {
			return nil, err
		}
		binders = append(binders, Binder{Loc: bl.at, Name: name, Type: typ})
	}
	return binders, nil
}

func parseExpr(d datum) (Source, error) {
	switch d := d.(type) {
	case *number:
		return &NatLit{Node{d.at}, d.value}, nil
	case *quoted:
		return &Quote{Node{d.at}, d.name}, nil
	case *symbol:
		return parseSymbol(d), nil
	case *list:
		return parseForm(d)
	default:
		return nil, parseErrorf(d.loc(), "unexpected datum")
	}
}

func parseSymbol(s *symbol) Source {
	n := Node{s.at}
	switch s.name {
	case "U":
		return &U{n}
	case "Nat":
		return &Nat{n}
	case "zero":
		return &Zero{n}
	case "Atom":
		return &Atom{n}
	case "Trivial":
		return &Trivial{n}
	case "sole":
		return &Sole{n}
	case "nil":
		return &Nil{n}
	case "vecnil":
		return &VecNil{n}
	case "Absurd":
		return &Absurd{n}
	case "TODO":
		return &TODO{n}
	}
	return &Var{n, s.name}
}

// fixedArity lists the forms whose operands are all expressions.
var fixedArity = map[string]int{
	"add1": 1, "which-Nat": 3, "iter-Nat": 3, "rec-Nat": 3, "ind-Nat": 4,
	"Pair": 2, "cons": 2, "car": 1, "cdr": 1, "List": 1, "::": 2,
	"rec-List": 3, "ind-List": 4, "Vec": 2, "vec::": 2, "head": 1, "tail": 1,
	"ind-Vec": 5, "=": 3, "same": 1, "replace": 3, "trans": 2, "cong": 2,
	"symm": 1, "ind-=": 3, "Either": 2, "left": 1, "right": 1,
	"ind-Either": 4, "ind-Absurd": 2, "the": 2,
}

func parseForm(l *list) (Source, error) {
	if len(l.items) == 0 {
		return nil, parseErrorf(l.at, "empty expression")
	}
	n := Node{l.at}
	head, _ := headSymbol(l)

	if want, ok := fixedArity[head]; ok {
		if err := arity(l, head, want); err != nil {
			return nil, err
		}
		a, err := parseExprs(l.items[1:])
		if err != nil {
			return nil, err
		}
		switch head {
		case "add1":
			return &Add1{n, a[0]}, nil
		case "which-Nat":
			return &WhichNat{n, a[0], a[1], a[2]}, nil
		case "iter-Nat":
			return &IterNat{n, a[0], a[1], a[2]}, nil
		case "rec-Nat":
			return &RecNat{n, a[0], a[1], a[2]}, nil
		case "ind-Nat":
			return &IndNat{n, a[0], a[1], a[2], a[3]}, nil
		case "Pair":
			return &Pair{n, a[0], a[1]}, nil
		case "cons":
			return &Cons{n, a[0], a[1]}, nil
		case "car":
			return &Car{n, a[0]}, nil
		case "cdr":
			return &Cdr{n, a[0]}, nil
		case "List":
			return &List{n, a[0]}, nil
		case "::":
			return &ListCons{n, a[0], a[1]}, nil
		case "rec-List":
			return &RecList{n, a[0], a[1], a[2]}, nil
		case "ind-List":
			return &IndList{n, a[0], a[1], a[2], a[3]}, nil
		case "Vec":
			return &Vec{n, a[0], a[1]}, nil
		case "vec::":
			return &VecCons{n, a[0], a[1]}, nil
		case "head":
			return &Head{n, a[0]}, nil
		case "tail":
			return &Tail{n, a[0]}, nil
		case "ind-Vec":
			return &IndVec{n, a[0], a[1], a[2], a[3], a[4]}, nil
		case "=":
			return &Equal{n, a[0], a[1], a[2]}, nil
		case "same":
			return &Same{n, a[0]}, nil
		case "replace":
			return &Replace{n, a[0], a[1], a[2]}, nil
		case "trans":
			return &Trans{n, a[0], a[1]}, nil
		case "cong":
			return &Cong{n, a[0], a[1]}, nil
		case "symm":
			return &Symm{n, a[0]}, nil
		case "ind-=":
			return &IndEqual{n, a[0], a[1], a[2]}, nil
		case "Either":
			return &Either{n, a[0], a[1]}, nil
		case "left":
			return &Left{n, a[0]}, nil
		case "right":
			return &Right{n, a[0]}, nil
		case "ind-Either":
			return &IndEither{n, a[0], a[1], a[2], a[3]}, nil
		case "ind-Absurd":
			return &IndAbsurd{n, a[0], a[1]}, nil
		case "the":
			return &The{n, a[0], a[1]}, nil
		}
	}

	switch head {
	case "->", "→":
		if len(l.items) < 3 {
			return nil, parseErrorf(l.at, "%s expects at least 2 arguments", head)
		}
		a, err := parseExprs(l.items[1:])
		if err != nil {
			return nil, err
		}
		return &Arrow{n, a[:len(a)-1], a[len(a)-1]}, nil

	case "Pi", "Π", "Sigma", "Σ":
		if err := arity(l, head, 2); err != nil {
			return nil, err
		}
		binders, err := parseBinders(l.items[1])
		if err != nil {
			return nil, err
		}
		if len(binders) == 0 {
			return nil, parseErrorf(l.at, "%s needs at least one binder", head)
		}
		body, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		if head == "Pi" || head == "Π" {
			return &Pi{n, binders, body}, nil
		}
		return &Sigma{n, binders, body}, nil

	case "lambda", "λ":
		if err := arity(l, head, 2); err != nil {
			return nil, err
		}
		ps, ok := l.items[1].(*list)
		if !ok || len(ps.items) == 0 {
			return nil, parseErrorf(l.items[1].loc(), "expected a non-empty list of parameters")
		}
		params := make([]Param, 0, len(ps.items))
		for _, p := range ps.items {
			name, at, err := parseName(p, "parameter")
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Loc: at, Name: name})
		}
		body, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		return &Lambda{n, params, body}, nil
	}

	if head != "" && IsKeyword(head) {
		return nil, parseErrorf(l.at, "%s cannot be applied", head)
	}

	if len(l.items) < 2 {
		return nil, parseErrorf(l.at, "application needs at least one argument")
	}
	fun, err := parseExpr(l.items[0])
	if err != nil {
		return nil, err
	}
	args, err := parseExprs(l.items[1:])
	if err != nil {
		return nil, err
	}
	return &App{n, fun, args}, nil
}

func parseDecl(d datum) (Decl, error) {
	l, ok := d.(*list)
	if !ok {
		e, err := parseExpr(d)
		if err != nil {
			return nil, err
		}
		return &Expr{e}, nil
	}
	head, _ := headSymbol(l)
	switch head {
	case "claim", "define":
		if err := arity(l, head, 2); err != nil {
			return nil, err
		}
		name, _, err := parseName(l.items[1], "definition")
		if err != nil {
			return nil, err
		}
		e, err := parseExpr(l.items[2])
		if err != nil {
			return nil, err
		}
		if head == "claim" {
			return &Claim{l.at, name, e}, nil
		}
		return &Define{l.at, name, e}, nil

	case "define-tactically":
		if err := arity(l, head, 2); err != nil {
			return nil, err
		}
		name, _, err := parseName(l.items[1], "definition")
		if err != nil {
			return nil, err
		}
		script, ok := l.items[2].(*list)
		if !ok {
			return nil, parseErrorf(l.items[2].loc(), "expected a list of tactics")
		}
		tactics, err := parseTactics(script.items)
		if err != nil {
			return nil, err
		}
		return &DefineTactically{l.at, name, tactics}, nil

	case "check-same":
		if err := arity(l, head, 3); err != nil {
			return nil, err
		}
		a, err := parseExprs(l.items[1:])
		if err != nil {
			return nil, err
		}
		return &CheckSame{l.at, a[0], a[1], a[2]}, nil

	case "data":
		return parseData(l)
	}

	e, err := parseExpr(l)
	if err != nil {
		return nil, err
	}
	return &Expr{e}, nil
}

func parseData(l *list) (Decl, error) {
	if len(l.items) < 4 {
		return nil, parseErrorf(l.at, "data expects a name, parameters, indices and constructors")
	}
	name, _, err := parseName(l.items[1], "datatype")
	if err != nil {
		return nil, err
	}
	params, err := parseBinders(l.items[2])
	if err != nil {
		return nil, err
	}
	indices, err := parseBinders(l.items[3])
	if err != nil {
		return nil, err
	}

	data := &Data{
		Location: l.at,
		Name:     name,
		Params:   params,
		Indices:  indices,
		ElimName: "ind-" + name,
	}
	rest := l.items[4:]
	if len(rest) > 0 {
		if sym, ok := rest[len(rest)-1].(*symbol); ok {
			elim, _, err := parseName(sym, "eliminator")
			if err != nil {
				return nil, err
			}
			data.ElimName = elim
			rest = rest[:len(rest)-1]
		}
	}
	for _, item := range rest {
		cl, ok := item.(*list)
		if !ok || len(cl.items) != 3 {
			return nil, parseErrorf(item.loc(), "expected a constructor of the form (name ((arg type) ...) result-type)")
		}
		cname, _, err := parseName(cl.items[0], "constructor")
		if err != nil {
			return nil, err
		}
		args, err := parseBinders(cl.items[1])
		if err != nil {
			return nil, err
		}
		result, err := parseExpr(cl.items[2])
		if err != nil {
			return nil, err
		}
		data.Constructors = append(data.Constructors, CtorDecl{
			Loc:    cl.at,
			Name:   cname,
			Args:   args,
			Result: result,
		})
	}
	return data, nil
}

func parseTactics(ds []datum) ([]Tactic, error) {
	tactics := make([]Tactic, 0, len(ds))
	for _, d := range ds {
		t, err := parseTactic(d)
		if err != nil {
			return nil, err
		}
		tactics = append(tactics, t)
	}
	return tactics, nil
}

var elimTactics = map[string]ElimKind{
	"elim-Nat":    ElimNat,
	"elim-List":   ElimList,
	"elim-Vec":    ElimVec,
	"elim-Either": ElimEither,
	"elim-Equal":  ElimEqual,
	"elim-Absurd": ElimAbsurd,
	"elim":        ElimData,
}

func parseTactic(d datum) (Tactic, error) {
	l, ok := d.(*list)
	if !ok {
		return nil, parseErrorf(d.loc(), "expected a tactic")
	}
	head, ok := headSymbol(l)
	if !ok {
		return nil, parseErrorf(l.at, "expected a tactic name")
	}
	switch head {
	case "intro":
		if err := arity(l, head, 1); err != nil {
			return nil, err
		}
		name, _, err := parseName(l.items[1], "variable")
		if err != nil {
			return nil, err
		}
		return &Intro{l.at, name}, nil

	case "exact", "apply":
		if err := arity(l, head, 1); err != nil {
			return nil, err
		}
		e, err := parseExpr(l.items[1])
		if err != nil {
			return nil, err
		}
		if head == "exact" {
			return &Exact{l.at, e}, nil
		}
		return &Apply{l.at, e}, nil

	case "exists":
		if len(l.items) != 2 && len(l.items) != 3 {
			return nil, parseErrorf(l.at, "exists expects a witness and an optional name")
		}
		e, err := parseExpr(l.items[1])
		if err != nil {
			return nil, err
		}
		t := &Exists{Location: l.at, Value: e}
		if len(l.items) == 3 {
			t.Var, _, err = parseName(l.items[2], "variable")
			if err != nil {
				return nil, err
			}
		}
		return t, nil

	case "go-Left", "go-Right", "split-Pair":
		if err := arity(l, head, 0); err != nil {
			return nil, err
		}
		switch head {
		case "go-Left":
			return &GoLeft{l.at}, nil
		case "go-Right":
			return &GoRight{l.at}, nil
		default:
			return &SplitPair{l.at}, nil
		}

	case "then":
		tactics, err := parseTactics(l.items[1:])
		if err != nil {
			return nil, err
		}
		return &Then{l.at, tactics}, nil
	}

	if kind, ok := elimTactics[head]; ok {
		if len(l.items) != 2 && len(l.items) != 3 {
			return nil, parseErrorf(l.at, "%s expects a target and an optional motive", head)
		}
		target, at, err := parseName(l.items[1], "target")
		if err != nil {
			return nil, err
		}
		t := &Elim{Location: l.at, Kind: kind, Target: target, TargetLoc: at}
		if len(l.items) == 3 {
			t.Motive, err = parseExpr(l.items[2])
			if err != nil {
				return nil, err
			}
		}
		return t, nil
	}

	return nil, parseErrorf(l.at, "unknown tactic %s", head)
}

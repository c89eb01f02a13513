package ir

// Instantiate performs the single-shot substitution spec.md's design notes
// describe: args[i] replaces Bound(i) wherever it appears at the binder
// depth instantiate was invoked at, lifting the replacement depth past
// every IR binder crossed on the way down (one for a Let, Binders for a
// Match Case). Code generation does not call it: internal/wasm resolves
// Bound indices against its own per-binder frames of wasm locals.
func Instantiate(body Expr, args []Expr) Expr {
	return instantiate(body, args, 0)
}

func instantiate(e Expr, args []Expr, depth int) Expr {
	switch e := e.(type) {
	case *Int, *Bool, *GetLocal:
		return e

	case *Var:
		b, ok := e.Name.(Bound)
		if !ok {
			return e
		}
		idx := b.Index - depth
		if idx >= 0 && idx < len(args) {
			return args[idx]
		}
		return e

	case *Application:
		return &Application{Func: instantiate(e.Func, args, depth), Arg: instantiate(e.Arg, args, depth)}

	case *Pack:
		values := make([]Expr, len(e.Values))
		for i, v := range e.Values {
			values[i] = instantiate(v, args, depth)
		}
		return &Pack{Tag: e.Tag, Values: values}

	case *Match:
		cases := make([]Case, len(e.Cases))
		for i, c := range e.Cases {
			cases[i] = Case{
				Tag:     c.Tag,
				Binders: c.Binders,
				Body:    instantiate(c.Body, args, depth+c.Binders),
			}
		}
		return &Match{Scrutinee: instantiate(e.Scrutinee, args, depth), Cases: cases}

	case *If:
		return &If{
			Cond: instantiate(e.Cond, args, depth),
			Then: instantiate(e.Then, args, depth),
			Else: instantiate(e.Else, args, depth),
		}

	case *Let:
		return &Let{
			Value: instantiate(e.Value, args, depth),
			Body:  instantiate(e.Body, args, depth+1),
		}

	default:
		return e
	}
}

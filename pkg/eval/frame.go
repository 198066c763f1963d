package eval

import (
	"golt/pkg/dsl"
	"golt/pkg/layout"
)

// frame is the evaluation state of one cell: the record being rewritten,
// its snapshot, the neighbour counts and the user variables.
type frame struct {
	m      *Machine
	cell   layout.Record
	prev   layout.Record
	counts map[string]Value
	locals map[*dsl.Declaration]Value
}

func (f *frame) field(r layout.Record, name string, pos dsl.Position) (Value, error) {
	fl, ok := f.m.layout.Field(name)
	if !ok {
		return Value{}, dsl.InternalErrorf(pos, "unknown state field %s", name)
	}
	raw := fl.Get(r)
	if fl.Kind == layout.Flag {
		return boolValue(raw != 0), nil
	}
	return intValue(int32(raw)), nil
}

func (f *frame) setField(name string, v Value, pos dsl.Position) error {
	fl, ok := f.m.layout.Field(name)
	if !ok {
		return dsl.InternalErrorf(pos, "unknown state field %s", name)
	}
	fl.Set(&f.cell, uint32(v.Int()))
	return nil
}

func (f *frame) exec(s dsl.Stmt) error {
	switch n := s.(type) {
	case *dsl.Block:
		for _, child := range n.Body {
			if err := f.exec(child); err != nil {
				return err
			}
		}
		return nil

	case *dsl.Declaration:
		v := zeroOf(n.VarType)
		if n.Init != nil {
			var err error
			if v, err = f.eval(n.Init); err != nil {
				return err
			}
		}
		f.locals[n] = v
		return nil

	case *dsl.Assignment:
		return f.assign(n)

	case *dsl.Conditional:
		test, err := f.eval(n.Test)
		if err != nil {
			return err
		}
		if test.B {
			return f.exec(n.Consequent)
		}
		if n.Alternate != nil {
			return f.exec(n.Alternate)
		}
		return nil
	}
	return dsl.InternalErrorf(s.Header().Pos, "can not evaluate statement %s", s)
}

func (f *frame) assign(a *dsl.Assignment) error {
	v, err := f.eval(a.Value)
	if err != nil {
		return err
	}
	if op := a.BinaryOp(); op != "" {
		cur, err := f.eval(a.Target)
		if err != nil {
			return err
		}
		var ok bool
		if v, ok = binary(op, cur, v); !ok {
			return dsl.InternalErrorf(a.Pos, "can not evaluate %s on %s", a.Op, cur.Kind)
		}
	}

	switch len(a.Target.Path) {
	case 1:
		entry, ok := a.Scope.Lookup(a.Target.Root())
		if !ok || entry.Decl == nil {
			return dsl.InternalErrorf(a.Pos, "can not assign to %s", a.Target)
		}
		f.locals[entry.Decl] = v
		return nil
	case 2:
		if a.Target.Root() == dsl.CellName {
			return f.setField(a.Target.Path[1], v, a.Pos)
		}
	}
	return dsl.InternalErrorf(a.Pos, "can not assign to %s", a.Target)
}

func (f *frame) eval(e dsl.Expr) (Value, error) {
	switch n := e.(type) {
	case *dsl.Ternary:
		test, err := f.eval(n.Test)
		if err != nil {
			return Value{}, err
		}
		if test.B {
			return f.eval(n.Consequent)
		}
		return f.eval(n.Alternate)

	case *dsl.Binary:
		l, err := f.eval(n.Left)
		if err != nil {
			return Value{}, err
		}
		switch {
		case n.Op == "&&" && !l.B:
			return boolValue(false), nil
		case n.Op == "||" && l.B:
			return boolValue(true), nil
		}
		r, err := f.eval(n.Right)
		if err != nil {
			return Value{}, err
		}
		if n.Op == "&&" || n.Op == "||" {
			return boolValue(r.B), nil
		}
		v, ok := binary(n.Op, l, r)
		if !ok {
			return Value{}, dsl.InternalErrorf(n.Pos, "can not evaluate %s", n)
		}
		return v, nil

	case *dsl.Unary:
		v, err := f.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		switch {
		case n.Op == "!":
			return boolValue(!v.B), nil
		case v.Kind == dsl.Int:
			return intValue(-v.I), nil
		case v.Kind == dsl.Float:
			return floatValue(-v.F), nil
		}
		return Value{}, dsl.InternalErrorf(n.Pos, "can not evaluate %s", n)

	case *dsl.Cast:
		v, err := f.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		return convert(n.Target, v), nil

	case *dsl.IntLiteral:
		return intValue(n.Value), nil
	case *dsl.FloatLiteral:
		return floatValue(float32(n.Value)), nil
	case *dsl.BoolLiteral:
		return boolValue(n.Value), nil

	case *dsl.Access:
		return f.access(n)
	}
	return Value{}, dsl.InternalErrorf(e.Header().Pos, "can not evaluate %s", e)
}

func (f *frame) access(a *dsl.Access) (Value, error) {
	entry, ok := a.Scope.Lookup(a.Root())
	if !ok {
		return Value{}, dsl.InternalErrorf(a.Pos, "%s has no binding", a.Root())
	}
	switch len(a.Path) {
	case 1:
		if entry.Decl != nil {
			return f.locals[entry.Decl], nil
		}
		if v, ok := f.counts[a.Root()]; ok {
			return v, nil
		}
	case 2:
		switch a.Root() {
		case dsl.CellName:
			return f.field(f.cell, a.Path[1], a.Pos)
		case dsl.PrevName:
			return f.field(f.prev, a.Path[1], a.Pos)
		}
	}
	return Value{}, dsl.InternalErrorf(a.Pos, "can not evaluate %s", a)
}

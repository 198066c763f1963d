package dsl

import (
	"strings"
)

// Built-in struct bindings of a rule program: the cell being rewritten and
// its state before the program ran.
const (
	CellName = "cell"
	PrevName = "prev"
)

// CheckExpr resolves the type of e and every sub-expression against scope.
func CheckExpr(e Expr, scope *Scope) error {
	return checkExpr(e, scope)
}

// CheckProgram validates p against the root scope. Declarations thread a new
// scope through the statements that follow them; blocks and branches never
// leak their declarations outwards.
func CheckProgram(p *Program, root *Scope) error {
	p.Scope = root
	scope := root
	for _, s := range p.Body {
		var err error
		if scope, err = checkStmt(s, scope, root); err != nil {
			return err
		}
	}
	return nil
}

// checkStmt checks s in scope and returns the scope for the next statement.
// blockStart is the scope at the opening of the enclosing block, used to
// reject duplicate declarations within one block.
func checkStmt(s Stmt, scope, blockStart *Scope) (*Scope, error) {
	s.Header().Scope = scope
	switch n := s.(type) {
	case *Block:
		inner := scope
		for _, child := range n.Body {
			var err error
			if inner, err = checkStmt(child, inner, scope); err != nil {
				return nil, err
			}
		}
		return scope, nil

	case *Declaration:
		t, ok := typeForKeyword(n.TypeName)
		if !ok {
			return nil, typeErrorf(n.Pos, "unknown type %q", n.TypeName)
		}
		n.VarType = t
		if strings.Contains(n.Name, "__") {
			return nil, typeErrorf(n.Pos, "identifier %s is reserved: names may not contain \"__\"", n.Name)
		}
		if scope.declaredSince(blockStart, n.Name) {
			return nil, typeErrorf(n.Pos, "%s is already declared in this block", n.Name)
		}
		if n.Init != nil {
			if err := checkExpr(n.Init, scope); err != nil {
				return nil, err
			}
			if !n.Init.ExprType().Equal(t) {
				return nil, typeErrorf(n.Pos, "cannot initialise variable %s of type %s with value of type %s",
					n.Name, t, n.Init.ExprType())
			}
		}
		return scope.Extend(n.Name, Entry{Type: t, Decl: n}), nil

	case *Assignment:
		return scope, checkAssignment(n, scope)

	case *Conditional:
		if err := checkExpr(n.Test, scope); err != nil {
			return nil, err
		}
		if n.Test.ExprType().Kind != Boolean {
			return nil, typeErrorf(n.Pos, "condition of if statement must be Boolean, got %s", n.Test.ExprType())
		}
		if _, err := checkStmt(n.Consequent, scope, scope); err != nil {
			return nil, err
		}
		if n.Alternate != nil {
			if _, err := checkStmt(n.Alternate, scope, scope); err != nil {
				return nil, err
			}
		}
		return scope, nil
	}
	return nil, typeErrorf(s.Header().Pos, "unsupported statement %s", s)
}

func checkAssignment(a *Assignment, scope *Scope) error {
	if err := checkExpr(a.Target, scope); err != nil {
		return err
	}
	if err := checkExpr(a.Value, scope); err != nil {
		return err
	}
	target, value := a.Target.ExprType(), a.Value.ExprType()

	entry, _ := scope.Lookup(a.Target.Root())
	switch {
	case len(a.Target.Path) == 1:
		if entry.ReadOnly() {
			return typeErrorf(a.Pos, "%s is read-only", a.Target)
		}
	case len(a.Target.Path) == 2 && a.Target.Root() == CellName && entry.ReadOnly():
		// cell.<field> is the only writable struct path.
	default:
		return typeErrorf(a.Pos, "cannot assign to %s: only %s.<field> can be assigned", a.Target, CellName)
	}

	if op := a.BinaryOp(); op != "" {
		result, ok := binaryResult(op, target, value)
		if !ok {
			return typeErrorf(a.Pos, "operator %s can not be used on types %s and %s", a.Op, target, value)
		}
		value = result
	}
	if !target.Equal(value) {
		return typeErrorf(a.Pos, "cannot assign value of type %s to %s of type %s", value, a.Target, target)
	}
	return nil
}

func checkExpr(e Expr, scope *Scope) error {
	info := e.typed()
	info.Scope = scope
	switch n := e.(type) {
	case *Ternary:
		for _, sub := range []Expr{n.Test, n.Consequent, n.Alternate} {
			if err := checkExpr(sub, scope); err != nil {
				return err
			}
		}
		if n.Test.ExprType().Kind != Boolean {
			return typeErrorf(n.Pos, "ternary condition can not be %s", n.Test.ExprType())
		}
		if !n.Consequent.ExprType().Equal(n.Alternate.ExprType()) {
			return typeErrorf(n.Pos, "ternary consequent and alternate must have the same type, got %s and %s",
				n.Consequent.ExprType(), n.Alternate.ExprType())
		}
		info.Type = n.Consequent.ExprType()

	case *Binary:
		if err := checkExpr(n.Left, scope); err != nil {
			return err
		}
		if err := checkExpr(n.Right, scope); err != nil {
			return err
		}
		t, ok := binaryResult(n.Op, n.Left.ExprType(), n.Right.ExprType())
		if !ok {
			return typeErrorf(n.Pos, "operator %s can not be used on types %s and %s",
				n.Op, n.Left.ExprType(), n.Right.ExprType())
		}
		info.Type = t

	case *Unary:
		if err := checkExpr(n.Operand, scope); err != nil {
			return err
		}
		operand := n.Operand.ExprType()
		switch {
		case n.Op == "!" && operand.Kind == Boolean:
		case n.Op == "-" && operand.IsNumeric():
		default:
			return typeErrorf(n.Pos, "operator %s can not be used on type %s", n.Op, operand)
		}
		info.Type = operand

	case *Cast:
		if err := checkExpr(n.Operand, scope); err != nil {
			return err
		}
		operand := n.Operand.ExprType()
		if operand.Kind != Int && operand.Kind != Float && operand.Kind != Boolean {
			return typeErrorf(n.Pos, "can not cast %s to %s", operand, n.Target)
		}
		t, ok := typeForKeyword(n.Target)
		if !ok {
			return typeErrorf(n.Pos, "unknown cast target %q", n.Target)
		}
		info.Type = t

	case *IntLiteral:
		info.Type = IntType
	case *FloatLiteral:
		info.Type = FloatType
	case *BoolLiteral:
		info.Type = BoolType

	case *Access:
		t, err := accessType(n, scope)
		if err != nil {
			return err
		}
		info.Type = t

	default:
		return typeErrorf(e.Header().Pos, "unsupported expression %s", e)
	}
	return nil
}

// binaryResult returns the result type of l op r, or false if the operator
// does not apply.
func binaryResult(op string, l, r Type) (Type, bool) {
	if !l.Equal(r) {
		return Type{}, false
	}
	switch op {
	case "||", "&&":
		return BoolType, l.Kind == Boolean
	case "==", "!=":
		return BoolType, true
	case "<", "<=", ">", ">=":
		return BoolType, l.IsNumeric()
	case "+", "-", "*", "/":
		return l, l.IsNumeric()
	case "%":
		return l, l.Kind == Int
	}
	return Type{}, false
}

func accessType(a *Access, scope *Scope) (Type, error) {
	entry, ok := scope.Lookup(a.Root())
	if !ok {
		return Type{}, typeErrorf(a.Pos, "%s is not defined", a.Root())
	}
	cur := entry.Type
	walked := a.Root()
	for _, name := range a.Path[1:] {
		if cur.Kind != Struct {
			return Type{}, typeErrorf(a.Pos, "trying to access property %s on %s", name, cur)
		}
		next, ok := cur.Prop(name)
		if !ok {
			return Type{}, typeErrorf(a.Pos, "%s has no property %s", walked, name)
		}
		walked += "." + name
		cur = next
	}
	return cur, nil
}

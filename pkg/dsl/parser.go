package dsl

import (
	"math"
	"strconv"
)

// binaryPrecedence ranks the binary operators; higher binds tighter. All
// levels are left-associative.
var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

// ParseExpression parses a single rule expression, such as a kernel value
// function. The result is not yet type-annotated.
func ParseExpression(src string) (Expr, error) {
	tree, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, newSyntaxError(src, err)
	}
	lw := lowerer{src: src}
	return lw.expr(tree)
}

// ParseProgram parses a full rule program. The result is not yet
// type-annotated.
func ParseProgram(src string) (*Program, error) {
	tree, err := programParser.ParseString("", src)
	if err != nil {
		return nil, newSyntaxError(src, err)
	}
	lw := lowerer{src: src}
	body, err := lw.stmts(tree.Stmts)
	if err != nil {
		return nil, err
	}
	return &Program{Node: Node{Pos: Position{Line: 1, Column: 1}}, Body: body}, nil
}

// lowerer turns the participle parse tree into the AST.
type lowerer struct {
	src string
}

func (lw *lowerer) stmts(nodes []*stmtNode) ([]Stmt, error) {
	out := make([]Stmt, 0, len(nodes))
	for _, n := range nodes {
		s, err := lw.stmt(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (lw *lowerer) stmt(n *stmtNode) (Stmt, error) {
	switch {
	case n.Block != nil:
		body, err := lw.stmts(n.Block.Stmts)
		if err != nil {
			return nil, err
		}
		return &Block{Node: Node{Pos: positionOf(n.Block.Pos)}, Body: body}, nil

	case n.If != nil:
		test, err := lw.expr(n.If.Test)
		if err != nil {
			return nil, err
		}
		then, err := lw.stmt(n.If.Then)
		if err != nil {
			return nil, err
		}
		c := &Conditional{Node: Node{Pos: positionOf(n.If.Pos)}, Test: test, Consequent: then}
		if n.If.Else != nil {
			if c.Alternate, err = lw.stmt(n.If.Else); err != nil {
				return nil, err
			}
		}
		return c, nil

	case n.Decl != nil:
		d := &Declaration{Node: Node{Pos: positionOf(n.Decl.Pos)}, Name: n.Decl.Name, TypeName: n.Decl.Type}
		if n.Decl.Init != nil {
			init, err := lw.expr(n.Decl.Init)
			if err != nil {
				return nil, err
			}
			d.Init = init
		}
		return d, nil

	case n.Assign != nil:
		value, err := lw.expr(n.Assign.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{
			Node:   Node{Pos: positionOf(n.Assign.Pos)},
			Target: lw.access(n.Assign.Target),
			Op:     n.Assign.Op,
			Value:  value,
		}, nil
	}
	return nil, syntaxErrorAt(lw.src, positionOf(n.Pos), "empty statement")
}

func (lw *lowerer) expr(n *exprNode) (Expr, error) {
	cond, err := lw.binary(n.Cond)
	if err != nil {
		return nil, err
	}
	if n.Then == nil {
		return cond, nil
	}
	then, err := lw.expr(n.Then)
	if err != nil {
		return nil, err
	}
	alt, err := lw.expr(n.Else)
	if err != nil {
		return nil, err
	}
	return &Ternary{
		Typed:      Typed{Node: Node{Pos: positionOf(n.Pos)}},
		Test:       cond,
		Consequent: then,
		Alternate:  alt,
	}, nil
}

func (lw *lowerer) binary(n *binaryNode) (Expr, error) {
	head, err := lw.unary(n.Head)
	if err != nil {
		return nil, err
	}
	e, rest, err := lw.climb(head, n.Tail, 1)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, syntaxErrorAt(lw.src, positionOf(rest[0].Pos), "unexpected operator %q", rest[0].Op)
	}
	return e, nil
}

// climb folds the flat operator chain by precedence, consuming every tail
// whose operator binds at least as tightly as minPrec.
func (lw *lowerer) climb(lhs Expr, tails []*opTail, minPrec int) (Expr, []*opTail, error) {
	for len(tails) > 0 && binaryPrecedence[tails[0].Op] >= minPrec {
		t := tails[0]
		tails = tails[1:]
		prec := binaryPrecedence[t.Op]

		rhs, err := lw.unary(t.Operand)
		if err != nil {
			return nil, nil, err
		}
		for len(tails) > 0 && binaryPrecedence[tails[0].Op] > prec {
			if rhs, tails, err = lw.climb(rhs, tails, prec+1); err != nil {
				return nil, nil, err
			}
		}
		lhs = &Binary{Typed: Typed{Node: Node{Pos: positionOf(t.Pos)}}, Op: t.Op, Left: lhs, Right: rhs}
	}
	return lhs, tails, nil
}

func (lw *lowerer) unary(n *unaryNode) (Expr, error) {
	if n.Primary != nil {
		return lw.primary(n.Primary)
	}
	if lit, ok := lw.minInt(n); ok {
		return lit, nil
	}
	operand, err := lw.unary(n.Operand)
	if err != nil {
		return nil, err
	}
	return &Unary{Typed: Typed{Node: Node{Pos: positionOf(n.Pos)}}, Op: n.Op, Operand: operand}, nil
}

// minInt folds -2147483648, whose magnitude alone does not fit in an Int.
func (lw *lowerer) minInt(n *unaryNode) (*IntLiteral, bool) {
	if n.Op != "-" || n.Operand.Primary == nil || n.Operand.Primary.Int == nil {
		return nil, false
	}
	text := "-" + *n.Operand.Primary.Int
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil || v != math.MinInt32 {
		return nil, false
	}
	return &IntLiteral{Typed: Typed{Node: Node{Pos: positionOf(n.Pos)}}, Value: math.MinInt32, Text: text}, true
}

func (lw *lowerer) primary(n *primaryNode) (Expr, error) {
	pos := positionOf(n.Pos)
	switch {
	case n.Float != nil:
		v, err := strconv.ParseFloat(*n.Float, 32)
		if err != nil {
			return nil, syntaxErrorAt(lw.src, pos, "float literal %s out of range", *n.Float)
		}
		return &FloatLiteral{Typed: Typed{Node: Node{Pos: pos}}, Value: v, Text: *n.Float}, nil

	case n.Int != nil:
		v, err := strconv.ParseInt(*n.Int, 10, 32)
		if err != nil {
			return nil, syntaxErrorAt(lw.src, pos, "integer literal %s out of 32-bit range", *n.Int)
		}
		return &IntLiteral{Typed: Typed{Node: Node{Pos: pos}}, Value: int32(v), Text: *n.Int}, nil

	case n.Bool != nil:
		return &BoolLiteral{Typed: Typed{Node: Node{Pos: pos}}, Value: *n.Bool == "true"}, nil

	case n.Cast != nil:
		operand, err := lw.expr(n.Cast.Operand)
		if err != nil {
			return nil, err
		}
		return &Cast{Typed: Typed{Node: Node{Pos: pos}}, Target: n.Cast.Target, Operand: operand}, nil

	case n.Access != nil:
		return lw.access(n.Access), nil

	case n.Paren != nil:
		return lw.expr(n.Paren)
	}
	return nil, syntaxErrorAt(lw.src, pos, "expected expression")
}

func (lw *lowerer) access(n *accessNode) *Access {
	path := make([]string, 0, 1+len(n.Rest))
	path = append(path, n.Root)
	path = append(path, n.Rest...)
	return &Access{Typed: Typed{Node: Node{Pos: positionOf(n.Pos)}}, Path: path}
}

package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is the header shared by every AST node. Scope is filled in by the
// checker and never changed afterwards.
type Node struct {
	Pos   Position
	Scope *Scope
}

// Header returns the node header.
func (n *Node) Header() *Node { return n }

// Typed is the header of expression nodes; Type is the resolved type.
type Typed struct {
	Node
	Type Type
}

// ExprType returns the type resolved by the checker.
func (t *Typed) ExprType() Type { return t.Type }

func (t *Typed) typed() *Typed { return t }

//  Expression nodes

// Expr is implemented by every node that produces a value. The set of
// implementations is closed: Ternary, Binary, Unary, Cast, IntLiteral,
// FloatLiteral, BoolLiteral and Access.
type Expr interface {
	Header() *Node
	ExprType() Type
	String() string
	exprNode()
	typed() *Typed
}

// Ternary represents Test ? Consequent : Alternate.
type Ternary struct {
	Typed
	Test       Expr
	Consequent Expr
	Alternate  Expr
}

func (*Ternary) exprNode() {}
func (t *Ternary) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Test, t.Consequent, t.Alternate)
}

// Binary represents Left Op Right.
//
//	direct == 3
//	^      ^  ^
//	|      |  Right
//	|      Op
//	Left
type Binary struct {
	Typed
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Unary represents Op Operand with Op one of "!" and "-".
type Unary struct {
	Typed
	Op      string
	Operand Expr
}

func (*Unary) exprNode()        {}
func (u *Unary) String() string { return fmt.Sprintf("(%s%s)", u.Op, u.Operand) }

// Cast represents an explicit conversion: int(e), float(e) or bool(e).
type Cast struct {
	Typed
	Target  string
	Operand Expr
}

func (*Cast) exprNode()        {}
func (c *Cast) String() string { return fmt.Sprintf("%s(%s)", c.Target, c.Operand) }

// IntLiteral is a decimal integer constant. Text is the source token.
type IntLiteral struct {
	Typed
	Value int32
	Text  string
}

func (*IntLiteral) exprNode()        {}
func (l *IntLiteral) String() string { return l.Text }

// FloatLiteral is a floating point constant. Text is the source token.
type FloatLiteral struct {
	Typed
	Value float64
	Text  string
}

func (*FloatLiteral) exprNode()        {}
func (l *FloatLiteral) String() string { return l.Text }

// BoolLiteral is true or false.
type BoolLiteral struct {
	Typed
	Value bool
}

func (*BoolLiteral) exprNode()        {}
func (l *BoolLiteral) String() string { return strconv.FormatBool(l.Value) }

// Access is a read of a dotted identifier path.
//
//	cell.alive
//	^^^^ ^^^^^  Access{Path: ["cell", "alive"]}
type Access struct {
	Typed
	Path []string
}

func (*Access) exprNode()        {}
func (a *Access) String() string { return strings.Join(a.Path, ".") }

// Root returns the first path segment.
func (a *Access) Root() string { return a.Path[0] }

//  Statement nodes

// Stmt is implemented by Block, Declaration, Assignment and Conditional.
type Stmt interface {
	Header() *Node
	String() string
	stmtNode()
}

// Block represents { stmt; ... }. Declarations inside do not escape it.
type Block struct {
	Node
	Body []Stmt
}

func (*Block) stmtNode() {}
func (b *Block) String() string {
	return fmt.Sprintf("Block(len=%d)", len(b.Body))
}

// Declaration represents  int name = init;  Init may be nil.
type Declaration struct {
	Node
	Name     string
	TypeName string // "bool", "int" or "float"
	VarType  Type   // resolved by the checker
	Init     Expr
}

func (*Declaration) stmtNode() {}
func (d *Declaration) String() string {
	if d.Init == nil {
		return fmt.Sprintf("Declaration(%s %s)", d.TypeName, d.Name)
	}
	return fmt.Sprintf("Declaration(%s %s = %s)", d.TypeName, d.Name, d.Init)
}

// Assignment represents  target op value;  with op one of = += -= *= /= %=.
type Assignment struct {
	Node
	Target *Access
	Op     string
	Value  Expr
}

func (*Assignment) stmtNode() {}
func (a *Assignment) String() string {
	return fmt.Sprintf("Assignment(%s %s %s)", a.Target, a.Op, a.Value)
}

// BinaryOp returns the arithmetic operator of a compound assignment
// ("+" for "+="), or "" for plain assignment.
func (a *Assignment) BinaryOp() string {
	if a.Op == "=" {
		return ""
	}
	return strings.TrimSuffix(a.Op, "=")
}

// Conditional represents if (Test) Consequent [else Alternate].
type Conditional struct {
	Node
	Test       Expr
	Consequent Stmt
	Alternate  Stmt // may be nil
}

func (*Conditional) stmtNode() {}
func (c *Conditional) String() string {
	if c.Alternate != nil {
		return fmt.Sprintf("Conditional(if %s then %s else %s)", c.Test, c.Consequent, c.Alternate)
	}
	return fmt.Sprintf("Conditional(if %s then %s)", c.Test, c.Consequent)
}

// Program is the root of a parsed rule: an ordered list of statements.
type Program struct {
	Node
	Body []Stmt
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(len=%d)", len(p.Body))
}

package dsl

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The structs below are the parse tree produced by participle. They mirror
// the grammar one to one and are lowered into the AST by parser.go.
//
//	program     = statement* EOF
//	statement   = block | conditional | declaration | assignment
//	block       = "{" statement* "}"
//	conditional = "if" "(" expression ")" statement ("else" statement)?
//	declaration = ("bool" | "int" | "float") Ident ("=" expression)? ";"
//	assignment  = access ("=" | "+=" | "-=" | "*=" | "/=" | "%=") expression ";"
//	expression  = binary ("?" expression ":" expression)?
//	binary      = unary (binop unary)*          (folded by precedence climbing)
//	unary       = ("!" | "-") unary | primary
//	primary     = Float | Int | "true" | "false" | cast | access | "(" expression ")"
//	cast        = ("int" | "float" | "bool") "(" expression ")"
//	access      = Ident ("." Ident)*

type programNode struct {
	Pos   lexer.Position
	Stmts []*stmtNode `@@*`
}

type stmtNode struct {
	Pos    lexer.Position
	Block  *blockNode  `  @@`
	If     *ifNode     `| @@`
	Decl   *declNode   `| @@`
	Assign *assignNode `| @@`
}

type blockNode struct {
	Pos   lexer.Position
	Stmts []*stmtNode `"{" @@* "}"`
}

type ifNode struct {
	Pos  lexer.Position
	Test *exprNode `"if" "(" @@ ")"`
	Then *stmtNode `@@`
	Else *stmtNode `( "else" @@ )?`
}

type declNode struct {
	Pos  lexer.Position
	Type string    `@("bool" | "int" | "float")`
	Name string    `@Ident`
	Init *exprNode `( "=" @@ )? ";"`
}

type assignNode struct {
	Pos    lexer.Position
	Target *accessNode `@@`
	Op     string      `@("=" | "+=" | "-=" | "*=" | "/=" | "%=")`
	Value  *exprNode   `@@ ";"`
}

type exprNode struct {
	Pos  lexer.Position
	Cond *binaryNode `@@`
	Then *exprNode   `( "?" @@`
	Else *exprNode   `  ":" @@ )?`
}

type binaryNode struct {
	Pos  lexer.Position
	Head *unaryNode `@@`
	Tail []*opTail  `@@*`
}

type opTail struct {
	Pos     lexer.Position
	Op      string     `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/" | "%")`
	Operand *unaryNode `@@`
}

type unaryNode struct {
	Pos     lexer.Position
	Op      string       `( @("!" | "-")`
	Operand *unaryNode   `  @@ )`
	Primary *primaryNode `| @@`
}

type primaryNode struct {
	Pos    lexer.Position
	Float  *string     `  @Float`
	Int    *string     `| @Int`
	Bool   *string     `| @("true" | "false")`
	Cast   *castNode   `| @@`
	Access *accessNode `| @@`
	Paren  *exprNode   `| "(" @@ ")"`
}

type castNode struct {
	Pos     lexer.Position
	Target  string    `@("int" | "float" | "bool") "("`
	Operand *exprNode `@@ ")"`
}

type accessNode struct {
	Pos  lexer.Position
	Root string   `@Ident`
	Rest []string `( "." @Ident )*`
}

var (
	programParser = participle.MustBuild[programNode](
		participle.Lexer(ruleLexer),
		participle.Elide(elided...),
	)
	exprParser = participle.MustBuild[exprNode](
		participle.Lexer(ruleLexer),
		participle.Elide(elided...),
	)
)

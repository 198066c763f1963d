package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// ruleLexer splits rule source into tokens. Rule order matters: Float must be
// tried before Int, and Keyword before Ident.
var ruleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Float", Pattern: `\d+\.\d*(?:[eE][-+]?\d+)?|\.\d+(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Keyword", Pattern: `\b(?:if|else|true|false|int|float|bool)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `\|\||&&|==|!=|<=|>=|\+=|-=|\*=|/=|%=|[-+*/%<>=!?:]`},
	{Name: "Punct", Pattern: `[(){};.]`},
})

// elided token kinds never reach the grammar.
var elided = []string{"Comment", "Whitespace"}

// Position is a 1-based line/column location in rule source.
type Position struct {
	Offset int // 0-based byte offset
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func positionOf(p lexer.Position) Position {
	return Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

// Token is a single lexical unit of rule source.
type Token struct {
	Kind string // Float, Int, Keyword, Ident, Operator, Punct or EOF
	Text string // the exact source text that was matched
	Pos  Position
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-10q  %s", t.Kind, t.Text, t.Pos)
}

// tokenKinds inverts the lexer symbol table.
var tokenKinds = func() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string)
	for name, tt := range ruleLexer.Symbols() {
		names[tt] = name
	}
	return names
}()

// Lex tokenises src and returns all significant tokens including the final
// EOF token. Comments and whitespace are dropped.
func Lex(src string) ([]Token, error) {
	lx, err := ruleLexer.LexString("", src)
	if err != nil {
		return nil, newSyntaxError(src, err)
	}
	var tokens []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return tokens, newSyntaxError(src, err)
		}
		kind := tokenKinds[tok.Type]
		if tok.EOF() {
			tokens = append(tokens, Token{Kind: "EOF", Pos: positionOf(tok.Pos)})
			return tokens, nil
		}
		if kind == "Comment" || kind == "Whitespace" {
			continue
		}
		tokens = append(tokens, Token{Kind: kind, Text: tok.Value, Pos: positionOf(tok.Pos)})
	}
}

package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// SyntaxError reports rule source that does not match the grammar.
type SyntaxError struct {
	Pos  Position
	Msg  string
	Line string // the offending source line, used for the caret snippet
}

func (e *SyntaxError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
	}
	col := max(e.Pos.Column, 1)
	return fmt.Sprintf("syntax error at %s: %s\n  |> %s\n  |  %s^",
		e.Pos, e.Msg, e.Line, strings.Repeat(" ", col-1))
}

// positioned is satisfied by participle parse errors and lexer errors.
type positioned interface {
	Message() string
	Position() lexer.Position
}

func newSyntaxError(src string, err error) *SyntaxError {
	var pe positioned
	if errors.As(err, &pe) {
		return syntaxErrorAt(src, positionOf(pe.Position()), "%s", pe.Message())
	}
	return &SyntaxError{Pos: Position{Line: 1, Column: 1}, Msg: err.Error()}
}

func syntaxErrorAt(src string, pos Position, format string, args ...any) *SyntaxError {
	e := &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	lines := strings.Split(src, "\n")
	if pos.Line >= 1 && pos.Line <= len(lines) {
		e.Line = strings.TrimRight(lines[pos.Line-1], "\r")
	}
	return e
}

// TypeError reports an ill-typed construct.
type TypeError struct {
	Pos Position
	Msg string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Pos, e.Msg)
}

func typeErrorf(pos Position, format string, args ...any) *TypeError {
	return &TypeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports an invalid rule configuration: state layouts wider than
// 32 bits, malformed kernels, bad field or kernel declarations.
type ConfigError struct {
	Path string // e.g. "state", "neighbourCounts.direct.matrix"
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "configuration error: " + e.Msg
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Path, e.Msg)
}

// ConfigErrorf builds a *ConfigError for path.
func ConfigErrorf(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// InternalError reports a well-typed AST shape the code generator has no
// translation for.
type InternalError struct {
	Pos Position
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error at %s: %s", e.Pos, e.Msg)
}

// InternalErrorf builds an *InternalError at pos.
func InternalErrorf(pos Position, format string, args ...any) *InternalError {
	return &InternalError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

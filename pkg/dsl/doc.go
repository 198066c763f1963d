// Package dsl implements the rule language of golt: a small C-like
// expression and statement language describing one cellular-automaton
// transition.
//
// Pipeline: source → Lex → Parse → Check → typed AST (consumed by pkg/compiler)
package dsl

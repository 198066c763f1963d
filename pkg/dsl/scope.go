package dsl

import (
	"fmt"
	"strings"
)

// Entry is what a scope knows about one identifier. A nil Decl marks a
// built-in, read-only binding such as `cell` or a neighbour count.
type Entry struct {
	Type Type
	Decl *Declaration
}

// ReadOnly reports whether the binding is a built-in.
func (e Entry) ReadOnly() bool { return e.Decl == nil }

// Scope is an immutable chain of bindings. Extend never modifies the
// receiver, so scopes already attached to analysed nodes stay valid.
// The nil *Scope is the empty scope.
type Scope struct {
	parent *Scope
	name   string
	entry  Entry
}

// Extend returns a new scope that binds name on top of s.
func (s *Scope) Extend(name string, e Entry) *Scope {
	return &Scope{parent: s, name: name, entry: e}
}

// Builtin returns a new scope with a read-only binding of name.
func (s *Scope) Builtin(name string, t Type) *Scope {
	return s.Extend(name, Entry{Type: t})
}

// Lookup finds the innermost binding of name.
func (s *Scope) Lookup(name string) (Entry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.entry, true
		}
	}
	return Entry{}, false
}

// declaredSince reports whether name was bound by a declaration in the links
// between s and outer (exclusive).
func (s *Scope) declaredSince(outer *Scope, name string) bool {
	for cur := s; cur != nil && cur != outer; cur = cur.parent {
		if cur.name == name && cur.entry.Decl != nil {
			return true
		}
	}
	return false
}

// Names returns the visible identifiers, outermost first, without shadowed
// duplicates.
func (s *Scope) Names() []string {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	seen := make(map[string]bool)
	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		if !seen[chain[i].name] {
			seen[chain[i].name] = true
			names = append(names, chain[i].name)
		}
	}
	return names
}

// String returns a deterministically ordered dump of the visible bindings.
func (s *Scope) String() string {
	var sb strings.Builder
	for _, name := range s.Names() {
		e, _ := s.Lookup(name)
		kind := "var"
		if e.ReadOnly() {
			kind = "builtin"
		}
		fmt.Fprintf(&sb, "  %-20s %-8s %s\n", name, kind, e.Type)
	}
	return sb.String()
}

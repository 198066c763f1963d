package dsl

import (
	"fmt"
	"strings"
)

// Kind is the tag of a Type.
type Kind int

const (
	Invalid Kind = iota // zero value: not yet checked
	Boolean
	Float
	Int
	Struct
)

var kindNames = [...]string{
	Invalid: "Invalid",
	Boolean: "Boolean",
	Float:   "Float",
	Int:     "Int",
	Struct:  "Struct",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Prop is one named property of a struct type.
type Prop struct {
	Name string
	Type Type
}

// Type is a rule-language type. Props is only used by Struct and keeps
// declaration order.
type Type struct {
	Kind  Kind
	Props []Prop
}

var (
	BoolType  = Type{Kind: Boolean}
	FloatType = Type{Kind: Float}
	IntType   = Type{Kind: Int}
)

// StructOf builds a struct type from props in order.
func StructOf(props ...Prop) Type {
	return Type{Kind: Struct, Props: props}
}

// Prop returns the type of the named property of a struct type.
func (t Type) Prop(name string) (Type, bool) {
	for _, p := range t.Props {
		if p.Name == name {
			return p.Type, true
		}
	}
	return Type{}, false
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// Equal compares types structurally: struct property names must appear in
// the same order and have equal types.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != Struct {
		return true
	}
	if len(t.Props) != len(o.Props) {
		return false
	}
	for i, p := range t.Props {
		if p.Name != o.Props[i].Name || !p.Type.Equal(o.Props[i].Type) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	if t.Kind != Struct {
		return t.Kind.String()
	}
	parts := make([]string, len(t.Props))
	for i, p := range t.Props {
		parts[i] = p.Name + ": " + p.Type.String()
	}
	return "Struct{" + strings.Join(parts, ", ") + "}"
}

// typeForKeyword maps a declaration or cast keyword to its type.
func typeForKeyword(kw string) (Type, bool) {
	switch kw {
	case "bool":
		return BoolType, true
	case "int":
		return IntType, true
	case "float":
		return FloatType, true
	}
	return Type{}, false
}

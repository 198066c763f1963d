// Package layout packs the declared state fields of a cell into the four
// bytes of one RGBA8UI texel.
//
// Bits are assigned low to high within the current byte and spill into the
// following bytes. Bit b of byte n has value 1<<b. A number field may cover
// several spans; its value is read most significant span first:
//
//	age (length 10) starting at byte 0 bit 3
//	span 0: byte 0 bits 3..7  -> value bits 9..5
//	span 1: byte 1 bits 0..4  -> value bits 4..0
package layout

import (
	"fmt"
	"regexp"
	"strings"

	"golt/pkg/dsl"
)

// MaxBits is the size of one cell record.
const MaxBits = 32

// FieldKind is the declared kind of a state field.
type FieldKind int

const (
	Flag FieldKind = iota
	Number
)

func (k FieldKind) String() string {
	switch k {
	case Flag:
		return "flag"
	case Number:
		return "number"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// ParseKind maps the configuration spelling of a kind.
func ParseKind(s string) (FieldKind, bool) {
	switch s {
	case "flag":
		return Flag, true
	case "number":
		return Number, true
	}
	return 0, false
}

// FieldSpec is one declared state field. Length is ignored for flags.
type FieldSpec struct {
	Name   string
	Kind   FieldKind
	Length int
}

// Span is an inclusive bit range [From, To] within one byte.
type Span struct {
	Byte int
	From int
	To   int
}

// Len returns the number of bits covered.
func (s Span) Len() int { return s.To - s.From + 1 }

func (s Span) mask() uint32 { return (1 << s.Len()) - 1 }

// Field is the packed location of one state field.
type Field struct {
	Name  string
	Kind  FieldKind
	Spans []Span
}

// Width returns the field size in bits.
func (f *Field) Width() int {
	n := 0
	for _, s := range f.Spans {
		n += s.Len()
	}
	return n
}

// Record is one packed cell: the R, G, B and A bytes of a texel.
type Record [4]byte

// Get reads the field from r. Flags read as 0 or 1.
func (f *Field) Get(r Record) uint32 {
	var v uint32
	for _, s := range f.Spans {
		v = v<<s.Len() | (uint32(r[s.Byte])>>s.From)&s.mask()
	}
	return v
}

// Set writes v into r, truncated to the field width. Other fields are left
// untouched.
func (f *Field) Set(r *Record, v uint32) {
	for i := len(f.Spans) - 1; i >= 0; i-- {
		s := f.Spans[i]
		m := s.mask()
		cleared := uint32(r[s.Byte]) &^ (m << s.From)
		r[s.Byte] = byte(cleared | (v&m)<<s.From)
		v >>= s.Len()
	}
}

// Layout is the packed form of the state declaration, in declaration order.
type Layout struct {
	Fields []*Field
	Bits   int // total bits used
}

// Field looks up a field by name.
func (l *Layout) Field(name string) (*Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// CellType is the rule-language type of `cell`: flags are Boolean and
// numbers Int, in declaration order.
func (l *Layout) CellType() dsl.Type {
	props := make([]dsl.Prop, len(l.Fields))
	for i, f := range l.Fields {
		t := dsl.IntType
		if f.Kind == Flag {
			t = dsl.BoolType
		}
		props[i] = dsl.Prop{Name: f.Name, Type: t}
	}
	return dsl.StructOf(props...)
}

func (l *Layout) String() string {
	var sb strings.Builder
	for _, f := range l.Fields {
		fmt.Fprintf(&sb, "%-16s %-6s %2d bits ", f.Name, f.Kind, f.Width())
		for _, s := range f.Spans {
			fmt.Fprintf(&sb, " [byte %d bits %d..%d]", s.Byte, s.From, s.To)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d/%d bits used\n", l.Bits, MaxBits)
	return sb.String()
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether name can be used as a field or kernel name in
// both the rule language and the generated shader.
func ValidIdent(name string) bool {
	return identRe.MatchString(name) && !strings.Contains(name, "__") && !reserved[name]
}

var reserved = map[string]bool{
	"if": true, "else": true, "true": true, "false": true,
	"int": true, "float": true, "bool": true,
}

// Pack assigns bit positions to specs in order.
func Pack(specs []FieldSpec) (*Layout, error) {
	l := &Layout{}
	seen := make(map[string]bool)
	byteIdx, bit := 0, 0

	advance := func(n int) {
		bit += n
		if bit == 8 {
			byteIdx++
			bit = 0
		}
	}

	for i, spec := range specs {
		path := fmt.Sprintf("state[%d]", i)
		if !ValidIdent(spec.Name) {
			return nil, dsl.ConfigErrorf(path, "invalid field name %q", spec.Name)
		}
		if seen[spec.Name] {
			return nil, dsl.ConfigErrorf(path, "duplicate field name %q", spec.Name)
		}
		seen[spec.Name] = true

		f := &Field{Name: spec.Name, Kind: spec.Kind}
		switch spec.Kind {
		case Flag:
			f.Spans = []Span{{Byte: byteIdx, From: bit, To: bit}}
			advance(1)
		case Number:
			if spec.Length <= 0 {
				return nil, dsl.ConfigErrorf(path, "number field %s must have a positive length, got %d", spec.Name, spec.Length)
			}
			for remaining := spec.Length; remaining > 0; {
				n := min(remaining, 8-bit)
				f.Spans = append(f.Spans, Span{Byte: byteIdx, From: bit, To: bit + n - 1})
				remaining -= n
				advance(n)
			}
		default:
			return nil, dsl.ConfigErrorf(path, "unknown field kind %s", spec.Kind)
		}
		l.Fields = append(l.Fields, f)
	}

	l.Bits = byteIdx*8 + bit
	if l.Bits > MaxBits {
		return nil, dsl.ConfigErrorf("state",
			"declared state variables take up too much space: %d bits used but only %d allowed (%d over)",
			l.Bits, MaxBits, l.Bits-MaxBits)
	}
	return l, nil
}

// Package kernel validates neighbour-count declarations and builds the
// shared weight table uploaded as a 2D texture array, one layer per kernel.
package kernel

import (
	"fmt"
	"strings"

	"golt/pkg/dsl"
	"golt/pkg/layout"
)

// Overflow is the policy for kernel cells that fall outside the board.
type Overflow int

const (
	Wrap   Overflow = iota // toroidal board
	Border                 // clamp to the nearest edge cell
	Zero                   // out-of-board cells contribute nothing
)

var overflowNames = [...]string{Wrap: "wrap", Border: "border", Zero: "zero"}

func (o Overflow) String() string {
	if int(o) >= 0 && int(o) < len(overflowNames) {
		return overflowNames[o]
	}
	return fmt.Sprintf("Overflow(%d)", int(o))
}

// ParseOverflow maps the configuration spelling of a policy.
func ParseOverflow(s string) (Overflow, bool) {
	for i, name := range overflowNames {
		if name == s {
			return Overflow(i), true
		}
	}
	return 0, false
}

// Spec is one neighbour count as declared in the configuration.
type Spec struct {
	Name     string
	Matrix   [][]float64
	ValueFn  string
	Type     string // "int" or "float"
	Overflow string // "wrap", "border" or "zero"
}

// Kernel is a validated neighbour count. Index is its layer in the weight
// texture.
type Kernel struct {
	Name     string
	Index    int
	Width    int
	Height   int
	Matrix   [][]float64
	Value    dsl.Expr // type-checked against a scope holding only `cell`
	Result   dsl.Type // Int or Float
	Overflow Overflow
}

// OffsetX is the column of the kernel centre.
func (k *Kernel) OffsetX() int { return k.Width / 2 }

// OffsetY is the row of the kernel centre.
func (k *Kernel) OffsetY() int { return k.Height / 2 }

// GLSLType is the shader spelling of the result type.
func (k *Kernel) GLSLType() string {
	if k.Result.Kind == dsl.Float {
		return "float"
	}
	return "int"
}

// Set is every kernel of a rule plus the shared weight table.
type Set struct {
	Kernels []*Kernel
	Width   int // max kernel width
	Height  int // max kernel height
	Weights []float32
}

// Weight returns the weight of kernel k at column x, row y. Cells outside the
// kernel's own matrix read as zero padding.
func (s *Set) Weight(k, x, y int) float32 {
	return s.Weights[s.Width*s.Height*k+s.Width*y+x]
}

// Lookup finds a kernel by name.
func (s *Set) Lookup(name string) (*Kernel, bool) {
	for _, k := range s.Kernels {
		if k.Name == name {
			return k, true
		}
	}
	return nil, false
}

// Scope binds every kernel name on top of parent as a read-only built-in of
// its result type.
func (s *Set) Scope(parent *dsl.Scope) *dsl.Scope {
	scope := parent
	for _, k := range s.Kernels {
		scope = scope.Builtin(k.Name, k.Result)
	}
	return scope
}

func (s *Set) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "weight table %dx%dx%d\n", s.Width, s.Height, len(s.Kernels))
	for _, k := range s.Kernels {
		fmt.Fprintf(&sb, "[%d] %s %dx%d %s %s value=%s\n",
			k.Index, k.Name, k.Width, k.Height, k.GLSLType(), k.Overflow, k.Value)
	}
	return sb.String()
}

// Compile validates specs in order and type-checks each value function
// against a scope that binds only `cell`.
func Compile(specs []Spec, cell dsl.Type) (*Set, error) {
	var empty *dsl.Scope
	cellScope := empty.Builtin(dsl.CellName, cell)

	set := &Set{}
	seen := make(map[string]bool)
	for i, spec := range specs {
		k, err := compileOne(i, spec, cellScope)
		if err != nil {
			return nil, err
		}
		if seen[k.Name] {
			return nil, dsl.ConfigErrorf(path(spec.Name), "duplicate neighbour count name %q", k.Name)
		}
		seen[k.Name] = true
		set.Kernels = append(set.Kernels, k)
		set.Width = max(set.Width, k.Width)
		set.Height = max(set.Height, k.Height)
	}

	set.Weights = make([]float32, set.Width*set.Height*len(set.Kernels))
	for _, k := range set.Kernels {
		base := set.Width * set.Height * k.Index
		for y, row := range k.Matrix {
			for x, w := range row {
				set.Weights[base+set.Width*y+x] = float32(w)
			}
		}
	}
	return set, nil
}

func path(name string) string { return "neighbourCounts." + name }

func compileOne(index int, spec Spec, cellScope *dsl.Scope) (*Kernel, error) {
	p := path(spec.Name)
	if !layout.ValidIdent(spec.Name) {
		return nil, dsl.ConfigErrorf(p, "invalid neighbour count name %q", spec.Name)
	}
	if spec.Name == dsl.CellName || spec.Name == dsl.PrevName {
		return nil, dsl.ConfigErrorf(p, "neighbour count name %q is reserved", spec.Name)
	}

	h := len(spec.Matrix)
	if h == 0 || len(spec.Matrix[0]) == 0 {
		return nil, dsl.ConfigErrorf(p+".matrix", "neighbour count matrix must not be empty")
	}
	w := len(spec.Matrix[0])
	for _, row := range spec.Matrix {
		if len(row) != w {
			return nil, dsl.ConfigErrorf(p+".matrix", "neighbour count matrix must be MxN with odd M and N: rows have different lengths")
		}
	}
	if h%2 != 1 || w%2 != 1 {
		return nil, dsl.ConfigErrorf(p+".matrix", "neighbour count matrix must be MxN with odd M and N, got %dx%d", h, w)
	}

	k := &Kernel{Name: spec.Name, Index: index, Width: w, Height: h, Matrix: spec.Matrix}
	switch spec.Type {
	case "int":
		k.Result = dsl.IntType
	case "float":
		k.Result = dsl.FloatType
	default:
		return nil, dsl.ConfigErrorf(p+".type", "unknown neighbour count type %q, expected int or float", spec.Type)
	}
	overflow, ok := ParseOverflow(spec.Overflow)
	if !ok {
		return nil, dsl.ConfigErrorf(p+".overflow", "unknown overflow policy %q, expected wrap, border or zero", spec.Overflow)
	}
	k.Overflow = overflow

	value, err := dsl.ParseExpression(spec.ValueFn)
	if err != nil {
		return nil, fmt.Errorf("%s.valuefn: %w", p, err)
	}
	if err := dsl.CheckExpr(value, cellScope); err != nil {
		return nil, fmt.Errorf("%s.valuefn: %w", p, err)
	}
	switch value.ExprType().Kind {
	case dsl.Int, dsl.Float, dsl.Boolean:
	default:
		return nil, dsl.ConfigErrorf(p+".valuefn", "value function must be Int, Float or Boolean, got %s", value.ExprType())
	}
	k.Value = value
	return k, nil
}

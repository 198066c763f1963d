// Package eval runs a compiled rule on the CPU. It mirrors the generated
// shader statement for statement and serves as its test oracle and as the
// engine behind `golt simulate`.
package eval

import (
	"golt/pkg/dsl"
	"golt/pkg/grid"
	"golt/pkg/kernel"
	"golt/pkg/layout"
)

// Board is one generation of cells in row-major order.
type Board struct {
	Width  int
	Height int
	Cells  []layout.Record
}

// NewBoard returns an all-zero board.
func NewBoard(width, height int) *Board {
	return &Board{Width: width, Height: height, Cells: make([]layout.Record, width*height)}
}

// At returns the cell at (x, y).
func (b *Board) At(x, y int) layout.Record {
	return b.Cells[grid.Index(x, y, b.Width)]
}

// Set stores the field f of the cell at (x, y).
func (b *Board) Set(x, y int, f *layout.Field, v uint32) {
	f.Set(&b.Cells[grid.Index(x, y, b.Width)], v)
}

// Count returns how many cells have a non-zero value in f.
func (b *Board) Count(f *layout.Field) int {
	n := 0
	for _, c := range b.Cells {
		if f.Get(c) != 0 {
			n++
		}
	}
	return n
}

// Machine evaluates one checked rule.
type Machine struct {
	layout  *layout.Layout
	kernels *kernel.Set
	program *dsl.Program
}

// New returns a machine for a rule that passed the checker.
func New(l *layout.Layout, ks *kernel.Set, p *dsl.Program) *Machine {
	return &Machine{layout: l, kernels: ks, program: p}
}

// Step computes the next generation. Every cell reads only b, which is left
// unchanged.
func (m *Machine) Step(b *Board) (*Board, error) {
	next := NewBoard(b.Width, b.Height)
	for i := range b.Cells {
		x, y := grid.GetGridCoords(i, b.Width)
		r, err := m.stepCell(b, x, y)
		if err != nil {
			return nil, err
		}
		next.Cells[i] = r
	}
	return next, nil
}

// Run applies Step n times.
func (m *Machine) Run(b *Board, n int) (*Board, error) {
	for i := 0; i < n; i++ {
		var err error
		if b, err = m.Step(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Counts evaluates every kernel at (x, y) without running the program.
func (m *Machine) Counts(b *Board, x, y int) (map[string]Value, error) {
	counts := make(map[string]Value, len(m.kernels.Kernels))
	for _, k := range m.kernels.Kernels {
		v, err := m.count(b, k, x, y)
		if err != nil {
			return nil, err
		}
		counts[k.Name] = v
	}
	return counts, nil
}

func (m *Machine) stepCell(b *Board, x, y int) (layout.Record, error) {
	counts, err := m.Counts(b, x, y)
	if err != nil {
		return layout.Record{}, err
	}

	prev := b.At(x, y)
	f := &frame{
		m:      m,
		cell:   prev,
		prev:   prev,
		counts: counts,
		locals: make(map[*dsl.Declaration]Value),
	}
	for _, s := range m.program.Body {
		if err := f.exec(s); err != nil {
			return layout.Record{}, err
		}
	}

	var next layout.Record
	for _, field := range m.layout.Fields {
		field.Set(&next, field.Get(f.cell))
	}
	return next, nil
}

// count mirrors count_neighbours_<k>: float32 accumulation in ix-major
// order, truncated for Int kernels.
func (m *Machine) count(b *Board, k *kernel.Kernel, x, y int) (Value, error) {
	var count float32
	for ix := 0; ix < k.Width; ix++ {
		for iy := 0; iy < k.Height; iy++ {
			cx := x + ix - k.OffsetX()
			cy := y + iy - k.OffsetY()
			switch k.Overflow {
			case kernel.Wrap:
				cx, cy = grid.Wrap(cx, b.Width), grid.Wrap(cy, b.Height)
			case kernel.Border:
				cx, cy = grid.Clamp(cx, b.Width), grid.Clamp(cy, b.Height)
			case kernel.Zero:
				if !grid.InBounds(cx, cy, b.Width, b.Height) {
					continue
				}
			}
			mult := m.kernels.Weight(k.Index, ix, iy)
			neighbour := &frame{m: m, cell: b.At(cx, cy)}
			v, err := neighbour.eval(k.Value)
			if err != nil {
				return Value{}, err
			}
			count += mult * v.Float()
		}
	}
	if k.Result.Kind == dsl.Float {
		return floatValue(count), nil
	}
	return intValue(int32(count)), nil
}

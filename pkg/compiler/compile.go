package compiler

import (
	"io"
	"log"

	"golt/pkg/config"
	"golt/pkg/dsl"
	"golt/pkg/kernel"
	"golt/pkg/layout"
)

// Result is everything a harness needs to run a compiled rule.
type Result struct {
	Shader  string
	Layout  *layout.Layout
	Kernels *kernel.Set
	Program *dsl.Program
}

// WeightTable is the payload of the neighbour_count_texture array texture:
// Depth layers of Width x Height single-channel floats.
type WeightTable struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Depth  int       `json:"depth"`
	Data   []float32 `json:"data"`
}

// WeightTable returns the texture data the shader samples kernel weights
// from.
func (r *Result) WeightTable() WeightTable {
	return WeightTable{
		Width:  r.Kernels.Width,
		Height: r.Kernels.Height,
		Depth:  len(r.Kernels.Kernels),
		Data:   r.Kernels.Weights,
	}
}

// Option configures Compile.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger reports each compilation stage to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// RootScope binds the identifiers visible to a rule program: `cell`, `prev`
// and every kernel name.
func RootScope(l *layout.Layout, ks *kernel.Set) *dsl.Scope {
	var s *dsl.Scope
	cell := l.CellType()
	s = s.Builtin(dsl.CellName, cell).Builtin(dsl.PrevName, cell)
	return ks.Scope(s)
}

// Compile runs the whole pipeline: layout packing, kernel compilation,
// parsing, type checking and code generation. Nothing is returned unless
// every stage succeeds.
func Compile(cfg *config.Config, opts ...Option) (*Result, error) {
	o := options{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(&o)
	}
	logf := o.logger.Printf

	fields, err := cfg.FieldSpecs()
	if err != nil {
		return nil, err
	}
	l, err := layout.Pack(fields)
	if err != nil {
		return nil, err
	}
	logf("layout: %d fields, %d/%d bits", len(l.Fields), l.Bits, layout.MaxBits)

	ks, err := kernel.Compile(cfg.KernelSpecs(), l.CellType())
	if err != nil {
		return nil, err
	}
	logf("kernels: %d, weight table %dx%d", len(ks.Kernels), ks.Width, ks.Height)

	prog, err := dsl.ParseProgram(cfg.Program)
	if err != nil {
		return nil, err
	}
	logf("parse: %d top-level statements", len(prog.Body))

	if err := dsl.CheckProgram(prog, RootScope(l, ks)); err != nil {
		return nil, err
	}
	logf("check: ok")

	shader, err := Generate(l, ks, prog)
	if err != nil {
		return nil, err
	}
	logf("generate: %d bytes of shader", len(shader))

	return &Result{Shader: shader, Layout: l, Kernels: ks, Program: prog}, nil
}

package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golt/pkg/dsl"
	"golt/pkg/kernel"
	"golt/pkg/layout"
)

// Names shared between the generated shader and the harness that runs it.
const (
	BoardUniform     = "board"
	WeightsUniform   = "neighbour_count_texture"
	BoardSizeUniform = "board_size"
	OutputName       = "next_state"
)

// CodeGen walks a checked rule and emits GLSL ES 3.00 fragment shader text.
type CodeGen struct {
	layout  *layout.Layout
	kernels *kernel.Set
	out     strings.Builder
	indent  int
}

func newCodeGen(l *layout.Layout, ks *kernel.Set) *CodeGen {
	return &CodeGen{layout: l, kernels: ks}
}

func (cg *CodeGen) line(format string, args ...any) {
	if format == "" {
		cg.out.WriteByte('\n')
		return
	}
	cg.out.WriteString(strings.Repeat("    ", cg.indent))
	fmt.Fprintf(&cg.out, format+"\n", args...)
}

func (cg *CodeGen) comment(format string, args ...any) {
	cg.line("// "+format, args...)
}

func (cg *CodeGen) open(format string, args ...any) {
	if format == "" {
		cg.line("{")
	} else {
		cg.line(format+" {", args...)
	}
	cg.indent++
}

func (cg *CodeGen) close() {
	cg.indent--
	cg.line("}")
}

func getterName(field string) string { return "get_cell_state_" + field }
func setterName(field string) string { return "set_cell_state_" + field }
func prevLocal(field string) string  { return "cell_state_" + field }
func countFunc(k string) string      { return "count_neighbours_" + k }
func countLocal(k string) string     { return "neighbour_count_" + k }
func userVar(name string) string     { return "user_var_" + name }

func glslType(t dsl.Type) string {
	switch t.Kind {
	case dsl.Boolean:
		return "bool"
	case dsl.Float:
		return "float"
	}
	return "int"
}

func zeroValue(t dsl.Type) string {
	switch t.Kind {
	case dsl.Boolean:
		return "false"
	case dsl.Float:
		return "0.0"
	}
	return "0"
}

func hexMask(bits int) string {
	return fmt.Sprintf("0x%x", (1<<bits)-1)
}

// intLiteral spells v in plain decimal. GLSL reads a leading zero as octal.
func intLiteral(v int32) string {
	switch {
	case v == math.MinInt32:
		return "(-2147483647 - 1)"
	case v < 0:
		return "(" + strconv.FormatInt(int64(v), 10) + ")"
	}
	return strconv.FormatInt(int64(v), 10)
}

//  Preamble

func (cg *CodeGen) genHeader() {
	cg.line("#version 300 es")
	cg.line("precision highp float;")
	cg.line("precision highp int;")
	cg.line("precision highp usampler2D;")
	cg.line("precision highp sampler2DArray;")
	cg.line("")
	cg.line("uniform usampler2D %s;", BoardUniform)
	cg.line("uniform sampler2DArray %s;", WeightsUniform)
	cg.line("uniform ivec2 %s;", BoardSizeUniform)
	cg.line("")
	cg.line("out uvec4 %s;", OutputName)
	cg.line("")
	cg.line("ivec2 coord;")
	cg.line("")
	cg.open("ivec4 get_cell_at(int x, int y)")
	cg.line("return ivec4(texelFetch(%s, ivec2(x, y), 0));", BoardUniform)
	cg.close()
}

func (cg *CodeGen) needsWrap() bool {
	for _, k := range cg.kernels.Kernels {
		if k.Overflow == kernel.Wrap {
			return true
		}
	}
	return false
}

// genWrapHelper emits a floor modulo; GLSL leaves % undefined for negative
// operands.
func (cg *CodeGen) genWrapHelper() {
	cg.line("")
	cg.open("int wrap_index(int i, int size)")
	cg.line("return i - size * int(floor(float(i) / float(size)));")
	cg.close()
}

//  State accessors

func (cg *CodeGen) genAccessors(f *layout.Field) {
	cg.line("")
	if f.Kind == layout.Flag {
		s := f.Spans[0]
		cg.open("bool %s(in ivec4 cell)", getterName(f.Name))
		cg.line("return ((cell[%d] >> %d) & 0x1) != 0;", s.Byte, s.From)
		cg.close()
		cg.line("")
		cg.open("void %s(inout ivec4 cell, in bool val)", setterName(f.Name))
		cg.line("cell[%d] = (cell[%d] & ~(0x1 << %d)) | ((val ? 1 : 0) << %d);", s.Byte, s.Byte, s.From, s.From)
		cg.close()
		return
	}

	cg.open("int %s(in ivec4 cell)", getterName(f.Name))
	if len(f.Spans) == 1 {
		s := f.Spans[0]
		cg.line("return (cell[%d] >> %d) & %s;", s.Byte, s.From, hexMask(s.Len()))
	} else {
		cg.line("int val = 0;")
		for _, s := range f.Spans {
			cg.line("val = (val << %d) | ((cell[%d] >> %d) & %s);", s.Len(), s.Byte, s.From, hexMask(s.Len()))
		}
		cg.line("return val;")
	}
	cg.close()
	cg.line("")

	// Least significant span is written first so val can be shifted down.
	cg.open("void %s(inout ivec4 cell, in int val)", setterName(f.Name))
	for i := len(f.Spans) - 1; i >= 0; i-- {
		s := f.Spans[i]
		m := hexMask(s.Len())
		cg.line("cell[%d] = (cell[%d] & ~(%s << %d)) | ((val & %s) << %d);", s.Byte, s.Byte, m, s.From, m, s.From)
		if i > 0 {
			cg.line("val = val >> %d;", s.Len())
		}
	}
	cg.close()
}

//  Neighbour counting

func (cg *CodeGen) genCountFunc(k *kernel.Kernel) error {
	value, err := cg.genExpr(k.Value)
	if err != nil {
		return err
	}
	cg.line("")
	cg.open("%s %s()", k.GLSLType(), countFunc(k.Name))
	cg.line("float count = 0.0;")
	cg.open("for (int ix = 0; ix < %d; ix++)", k.Width)
	cg.open("for (int iy = 0; iy < %d; iy++)", k.Height)
	cg.line("int cx = coord.x + ix - %d;", k.OffsetX())
	cg.line("int cy = coord.y + iy - %d;", k.OffsetY())
	switch k.Overflow {
	case kernel.Wrap:
		cg.line("cx = wrap_index(cx, %s.x);", BoardSizeUniform)
		cg.line("cy = wrap_index(cy, %s.y);", BoardSizeUniform)
	case kernel.Border:
		cg.line("cx = clamp(cx, 0, %s.x - 1);", BoardSizeUniform)
		cg.line("cy = clamp(cy, 0, %s.y - 1);", BoardSizeUniform)
	case kernel.Zero:
		cg.open("if (cx < 0 || cx >= %s.x || cy < 0 || cy >= %s.y)", BoardSizeUniform, BoardSizeUniform)
		cg.line("continue;")
		cg.close()
	}
	cg.line("float mult = texelFetch(%s, ivec3(ix, iy, %d), 0).x;", WeightsUniform, k.Index)
	cg.line("ivec4 cell = get_cell_at(cx, cy);")
	cg.line("float value = float(%s);", value)
	cg.line("count += mult * value;")
	cg.close()
	cg.close()
	if k.Result.Kind == dsl.Float {
		cg.line("return count;")
	} else {
		cg.line("return int(count);")
	}
	cg.close()
	return nil
}

//  Entry point

func (cg *CodeGen) genMain(p *dsl.Program) error {
	cg.line("")
	cg.open("void main()")
	cg.line("coord = ivec2(gl_FragCoord.xy);")

	for _, k := range cg.kernels.Kernels {
		cg.line("%s %s = %s();", k.GLSLType(), countLocal(k.Name), countFunc(k.Name))
	}

	cg.line("ivec4 cell = get_cell_at(coord.x, coord.y);")
	for _, f := range cg.layout.Fields {
		t := "int"
		if f.Kind == layout.Flag {
			t = "bool"
		}
		cg.line("%s %s = %s(cell);", t, prevLocal(f.Name), getterName(f.Name))
	}

	cg.comment("rule program")
	for _, s := range p.Body {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}

	cg.line("ivec4 next = ivec4(0);")
	for _, f := range cg.layout.Fields {
		cg.line("%s(next, %s(cell));", setterName(f.Name), getterName(f.Name))
	}
	cg.line("%s = uvec4(next);", OutputName)
	cg.close()
	return nil
}

//  Statements

func (cg *CodeGen) genStmt(s dsl.Stmt) error {
	switch n := s.(type) {
	case *dsl.Block:
		cg.open("")
		defer cg.close()
		return cg.genBody(n.Body)

	case *dsl.Declaration:
		init := zeroValue(n.VarType)
		if n.Init != nil {
			v, err := cg.genExpr(n.Init)
			if err != nil {
				return err
			}
			init = v
		}
		cg.line("%s %s = %s;", glslType(n.VarType), userVar(n.Name), init)
		return nil

	case *dsl.Assignment:
		return cg.genAssignment(n)

	case *dsl.Conditional:
		test, err := cg.genExpr(n.Test)
		if err != nil {
			return err
		}
		cg.open("if (%s)", test)
		if err := cg.genBranch(n.Consequent); err != nil {
			return err
		}
		if n.Alternate == nil {
			cg.close()
			return nil
		}
		cg.indent--
		cg.open("} else")
		if err := cg.genBranch(n.Alternate); err != nil {
			return err
		}
		cg.close()
		return nil
	}
	return dsl.InternalErrorf(s.Header().Pos, "no translation for statement %s", s)
}

// genBranch emits a branch body without doubling the braces of a block.
func (cg *CodeGen) genBranch(s dsl.Stmt) error {
	if b, ok := s.(*dsl.Block); ok {
		return cg.genBody(b.Body)
	}
	return cg.genStmt(s)
}

func (cg *CodeGen) genBody(body []dsl.Stmt) error {
	for _, s := range body {
		if err := cg.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (cg *CodeGen) genAssignment(a *dsl.Assignment) error {
	value, err := cg.genExpr(a.Value)
	if err != nil {
		return err
	}

	switch len(a.Target.Path) {
	case 1:
		cg.line("%s %s %s;", userVar(a.Target.Root()), a.Op, value)
		return nil
	case 2:
		if a.Target.Root() != dsl.CellName {
			break
		}
		field := a.Target.Path[1]
		if op := a.BinaryOp(); op != "" {
			value = fmt.Sprintf("(%s(cell) %s %s)", getterName(field), op, value)
		}
		cg.line("%s(cell, %s);", setterName(field), value)
		return nil
	}
	return dsl.InternalErrorf(a.Pos, "no translation for assignment to %s", a.Target)
}

//  Expressions

func (cg *CodeGen) genExpr(e dsl.Expr) (string, error) {
	switch n := e.(type) {
	case *dsl.Ternary:
		test, err := cg.genExpr(n.Test)
		if err != nil {
			return "", err
		}
		a, err := cg.genExpr(n.Consequent)
		if err != nil {
			return "", err
		}
		b, err := cg.genExpr(n.Alternate)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s ? %s : %s)", test, a, b), nil

	case *dsl.Binary:
		l, err := cg.genExpr(n.Left)
		if err != nil {
			return "", err
		}
		r, err := cg.genExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", l, n.Op, r), nil

	case *dsl.Unary:
		operand, err := cg.genExpr(n.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s%s)", n.Op, operand), nil

	case *dsl.Cast:
		operand, err := cg.genExpr(n.Operand)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", n.Target, operand), nil

	case *dsl.IntLiteral:
		return intLiteral(n.Value), nil
	case *dsl.FloatLiteral:
		return n.Text, nil
	case *dsl.BoolLiteral:
		return n.String(), nil

	case *dsl.Access:
		return cg.genAccess(n)
	}
	return "", dsl.InternalErrorf(e.Header().Pos, "no translation for expression %s", e)
}

func (cg *CodeGen) genAccess(a *dsl.Access) (string, error) {
	if a.ExprType().Kind == dsl.Struct {
		return "", dsl.InternalErrorf(a.Pos, "struct value %s can not be used as an expression", a)
	}
	entry, ok := a.Scope.Lookup(a.Root())
	if !ok {
		return "", dsl.InternalErrorf(a.Pos, "%s has no binding; was the program checked?", a.Root())
	}

	switch len(a.Path) {
	case 1:
		if !entry.ReadOnly() {
			return userVar(a.Root()), nil
		}
		if _, ok := cg.kernels.Lookup(a.Root()); ok {
			return countLocal(a.Root()), nil
		}
	case 2:
		if !entry.ReadOnly() {
			break
		}
		switch a.Root() {
		case dsl.CellName:
			return getterName(a.Path[1]) + "(cell)", nil
		case dsl.PrevName:
			return prevLocal(a.Path[1]), nil
		}
	}
	return "", dsl.InternalErrorf(a.Pos, "no translation for access to %s", a)
}

// Generate emits the complete fragment shader for a checked program.
func Generate(l *layout.Layout, ks *kernel.Set, p *dsl.Program) (string, error) {
	cg := newCodeGen(l, ks)

	cg.genHeader()
	if cg.needsWrap() {
		cg.genWrapHelper()
	}
	for _, f := range l.Fields {
		cg.genAccessors(f)
	}
	for _, k := range ks.Kernels {
		if err := cg.genCountFunc(k); err != nil {
			return "", err
		}
	}
	if err := cg.genMain(p); err != nil {
		return "", err
	}
	return cg.out.String(), nil
}

package kernel

import (
	"errors"
	"strings"
	"testing"

	"golt/pkg/dsl"
)

var lifeCell = dsl.StructOf(
	dsl.Prop{Name: "alive", Type: dsl.BoolType},
	dsl.Prop{Name: "age", Type: dsl.IntType},
)

func moore() [][]float64 {
	return [][]float64{{1, 1, 1}, {1, 0, 1}, {1, 1, 1}}
}

func TestCompile(t *testing.T) {
	set, err := Compile([]Spec{
		{Name: "direct", Matrix: moore(), ValueFn: "cell.alive", Type: "int", Overflow: "wrap"},
		{Name: "far", Matrix: [][]float64{{0.5, 0.25, 0.5, 0.25, 0.5}}, ValueFn: "float(cell.age) / 2.0", Type: "float", Overflow: "zero"},
	}, lifeCell)
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}

	if set.Width != 5 || set.Height != 3 {
		t.Fatalf("table size = %dx%d, want 5x3", set.Width, set.Height)
	}
	if len(set.Weights) != 5*3*2 {
		t.Fatalf("len(Weights) = %d, want 30", len(set.Weights))
	}

	direct, far := set.Kernels[0], set.Kernels[1]
	if direct.Index != 0 || far.Index != 1 {
		t.Errorf("indices = %d, %d", direct.Index, far.Index)
	}
	if direct.OffsetX() != 1 || direct.OffsetY() != 1 || far.OffsetX() != 2 || far.OffsetY() != 0 {
		t.Error("unexpected kernel centre offsets")
	}
	if direct.GLSLType() != "int" || far.GLSLType() != "float" {
		t.Error("unexpected result types")
	}
	if far.Overflow != Zero {
		t.Errorf("far overflow = %s, want zero", far.Overflow)
	}
	if far.Value.ExprType().Kind != dsl.Float {
		t.Errorf("far value type = %s", far.Value.ExprType())
	}

	tests := []struct {
		k, x, y int
		want    float32
	}{
		{0, 0, 0, 1},
		{0, 1, 1, 0},
		{0, 2, 2, 1},
		{0, 3, 0, 0}, // padding right of a 3-wide kernel
		{0, 0, 2, 1},
		{1, 0, 0, 0.5},
		{1, 1, 0, 0.25},
		{1, 4, 0, 0.5},
		{1, 0, 1, 0}, // padding below a 1-high kernel
	}
	for _, tt := range tests {
		if got := set.Weight(tt.k, tt.x, tt.y); got != tt.want {
			t.Errorf("Weight(%d, %d, %d) = %v, want %v", tt.k, tt.x, tt.y, got, tt.want)
		}
	}
	// Direct index formula: W*H*k + W*row + col.
	if set.Weights[5*3*1+5*0+1] != 0.25 {
		t.Error("weight table layout mismatch")
	}
}

func TestCompile_Scope(t *testing.T) {
	set, err := Compile([]Spec{
		{Name: "n", Matrix: moore(), ValueFn: "cell.alive", Type: "int", Overflow: "wrap"},
		{Name: "d", Matrix: moore(), ValueFn: "cell.age", Type: "float", Overflow: "border"},
	}, lifeCell)
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	scope := set.Scope(nil)
	for name, kind := range map[string]dsl.Kind{"n": dsl.Int, "d": dsl.Float} {
		e, ok := scope.Lookup(name)
		if !ok || e.Type.Kind != kind || !e.ReadOnly() {
			t.Errorf("%s bound as %+v", name, e)
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		msg  string
	}{
		{"even height", Spec{Name: "k", Matrix: [][]float64{{1, 1, 1}, {1, 1, 1}}, ValueFn: "1", Type: "int", Overflow: "wrap"}, "odd M and N"},
		{"even width", Spec{Name: "k", Matrix: [][]float64{{1, 1}}, ValueFn: "1", Type: "int", Overflow: "wrap"}, "odd M and N"},
		{"ragged", Spec{Name: "k", Matrix: [][]float64{{1, 1, 1}, {1}, {1, 1, 1}}, ValueFn: "1", Type: "int", Overflow: "wrap"}, "different lengths"},
		{"empty", Spec{Name: "k", ValueFn: "1", Type: "int", Overflow: "wrap"}, "must not be empty"},
		{"bad type", Spec{Name: "k", Matrix: moore(), ValueFn: "1", Type: "bool", Overflow: "wrap"}, "unknown neighbour count type"},
		{"bad overflow", Spec{Name: "k", Matrix: moore(), ValueFn: "1", Type: "int", Overflow: "mirror"}, "unknown overflow policy"},
		{"bad name", Spec{Name: "a-b", Matrix: moore(), ValueFn: "1", Type: "int", Overflow: "wrap"}, "invalid neighbour count name"},
		{"reserved name", Spec{Name: "cell", Matrix: moore(), ValueFn: "1", Type: "int", Overflow: "wrap"}, "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]Spec{tt.spec}, lifeCell)
			var ce *dsl.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *dsl.ConfigError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
		})
	}
}

func TestCompile_Duplicate(t *testing.T) {
	spec := Spec{Name: "k", Matrix: moore(), ValueFn: "1", Type: "int", Overflow: "wrap"}
	_, err := Compile([]Spec{spec, spec}, lifeCell)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestCompile_ValueFnErrors(t *testing.T) {
	tests := []struct {
		name    string
		valueFn string
		target  any
	}{
		{"syntax", "cell.alive &&", new(*dsl.SyntaxError)},
		{"unknown field", "cell.colour", new(*dsl.TypeError)},
		{"only cell is visible", "neighbours", new(*dsl.TypeError)},
		{"struct value", "cell", new(*dsl.ConfigError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]Spec{{Name: "k", Matrix: moore(), ValueFn: tt.valueFn, Type: "int", Overflow: "wrap"}}, lifeCell)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.As(err, tt.target) {
				t.Errorf("error %v (%T) has unexpected type", err, err)
			}
			if !strings.Contains(err.Error(), "neighbourCounts.k.valuefn") {
				t.Errorf("error %q should name the value function", err)
			}
		})
	}
}

package eval

import (
	"strconv"

	"golt/pkg/dsl"
)

// Value is a scalar rule-language value. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind dsl.Kind
	I    int32
	F    float32
	B    bool
}

func intValue(i int32) Value     { return Value{Kind: dsl.Int, I: i} }
func floatValue(f float32) Value { return Value{Kind: dsl.Float, F: f} }
func boolValue(b bool) Value     { return Value{Kind: dsl.Boolean, B: b} }

func zeroOf(t dsl.Type) Value { return Value{Kind: t.Kind} }

// Float converts v the way the shader's float() constructor does.
func (v Value) Float() float32 {
	switch v.Kind {
	case dsl.Int:
		return float32(v.I)
	case dsl.Boolean:
		if v.B {
			return 1
		}
		return 0
	}
	return v.F
}

// Int converts v the way the shader's int() constructor does, truncating
// floats toward zero.
func (v Value) Int() int32 {
	switch v.Kind {
	case dsl.Float:
		return int32(v.F)
	case dsl.Boolean:
		if v.B {
			return 1
		}
		return 0
	}
	return v.I
}

// Bool converts v the way the shader's bool() constructor does.
func (v Value) Bool() bool {
	switch v.Kind {
	case dsl.Int:
		return v.I != 0
	case dsl.Float:
		return v.F != 0
	}
	return v.B
}

func (v Value) String() string {
	switch v.Kind {
	case dsl.Int:
		return strconv.FormatInt(int64(v.I), 10)
	case dsl.Float:
		return strconv.FormatFloat(float64(v.F), 'g', -1, 32)
	case dsl.Boolean:
		return strconv.FormatBool(v.B)
	}
	return "<invalid>"
}

func convert(target string, v Value) Value {
	switch target {
	case "int":
		return intValue(v.Int())
	case "float":
		return floatValue(v.Float())
	}
	return boolValue(v.Bool())
}

// binary applies op to two values of the same kind. Integer division and
// modulo by zero yield 0.
func binary(op string, l, r Value) (Value, bool) {
	switch op {
	case "==":
		return boolValue(l == r), true
	case "!=":
		return boolValue(l != r), true
	}

	switch l.Kind {
	case dsl.Int:
		a, b := l.I, r.I
		switch op {
		case "+":
			return intValue(a + b), true
		case "-":
			return intValue(a - b), true
		case "*":
			return intValue(a * b), true
		case "/":
			if b == 0 {
				return intValue(0), true
			}
			return intValue(a / b), true
		case "%":
			if b == 0 {
				return intValue(0), true
			}
			return intValue(a % b), true
		case "<":
			return boolValue(a < b), true
		case "<=":
			return boolValue(a <= b), true
		case ">":
			return boolValue(a > b), true
		case ">=":
			return boolValue(a >= b), true
		}

	case dsl.Float:
		a, b := l.F, r.F
		switch op {
		case "+":
			return floatValue(a + b), true
		case "-":
			return floatValue(a - b), true
		case "*":
			return floatValue(a * b), true
		case "/":
			return floatValue(a / b), true
		case "<":
			return boolValue(a < b), true
		case "<=":
			return boolValue(a <= b), true
		case ">":
			return boolValue(a > b), true
		case ">=":
			return boolValue(a >= b), true
		}
	}
	return Value{}, false
}

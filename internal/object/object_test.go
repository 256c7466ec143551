package object

import "testing"

func TestNumberInspect(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{7, "7"},
		{7.5, "7.5"},
		{0, "0"},
		{-3, "-3"},
		{1000000, "1000000"},
		{0.1, "0.1"},
	}

	for _, tt := range tests {
		n := &Number{Value: tt.value}
		if n.Inspect() != tt.expected {
			t.Errorf("Number(%v).Inspect() = %q, want %q", tt.value, n.Inspect(), tt.expected)
		}
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		obj      Object
		expected string
	}{
		{NIL, "nil"},
		{TRUE, "true"},
		{FALSE, "false"},
		{&String{Value: "hello"}, "hello"},
		{&Function{FnName: "add", Parameters: []string{"x", "y"}}, "fun add(x, y)"},
		{&Native{NativeName: "clock"}, "<native clock>"},
		{&Error{Kind: DivisionByZero, Message: "cannot divide 1 by zero"}, "division by zero: cannot divide 1 by zero"},
	}

	for _, tt := range tests {
		if tt.obj.Inspect() != tt.expected {
			t.Errorf("Inspect() = %q, want %q", tt.obj.Inspect(), tt.expected)
		}
	}
}

func TestEqualsPrimitives(t *testing.T) {
	tests := []struct {
		a, b     Object
		expected bool
	}{
		{&Number{Value: 1}, &Number{Value: 1}, true},
		{&Number{Value: 1}, &Number{Value: 2}, false},
		{&String{Value: "a"}, &String{Value: "a"}, true},
		{&String{Value: "a"}, &String{Value: "b"}, false},
		{TRUE, &Boolean{Value: true}, true},
		{TRUE, FALSE, false},
		{NIL, &Nil{}, true},
		{NIL, FALSE, false},
		{&Number{Value: 0}, FALSE, false},
		{&Number{Value: 1}, &String{Value: "1"}, false},
		{&String{Value: ""}, NIL, false},
	}

	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.expected {
			t.Errorf("Equals(%s, %s) = %t, want %t",
				tt.a.Inspect(), tt.b.Inspect(), got, tt.expected)
		}
	}
}

func TestEqualsFunctionIdentity(t *testing.T) {
	fn1 := &Function{FnName: "f", Parameters: []string{"x"}}
	fn2 := &Function{FnName: "f", Parameters: []string{"x"}}

	if !Equals(fn1, fn1) {
		t.Errorf("a function must equal itself")
	}
	if Equals(fn1, fn2) {
		t.Errorf("structurally identical functions must not be equal")
	}
}

func TestCallableArity(t *testing.T) {
	var c Callable = &Function{FnName: "add", Parameters: []string{"x", "y"}}
	if c.Name() != "add" || c.Arity() != 2 {
		t.Errorf("Function Callable = (%q, %d), want (add, 2)", c.Name(), c.Arity())
	}

	c = &Native{NativeName: "clock", NumParams: 0}
	if c.Name() != "clock" || c.Arity() != 0 {
		t.Errorf("Native Callable = (%q, %d), want (clock, 0)", c.Name(), c.Arity())
	}
}

func TestReturnValueIsNotAnError(t *testing.T) {
	rv := &ReturnValue{Value: &Number{Value: 1}}
	if rv.Type() == ERROR_OBJ {
		t.Errorf("ReturnValue must not share the error type")
	}
	if rv.Inspect() != "1" {
		t.Errorf("ReturnValue.Inspect() = %q, want %q", rv.Inspect(), "1")
	}
}

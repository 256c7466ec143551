package object

import (
	"bytes"
	"fmt"
	"lox/internal/ast"
	"strconv"
	"strings"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	FUNCTION_OBJ = "FUNCTION"
	NATIVE_OBJ   = "NATIVE"

	RETURN_VALUE_OBJ = "RETURN_VALUE"
	ERROR_OBJ        = "ERROR"
)

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Callable is the contract shared by user functions and natives: a fixed
// arity and a name for error messages. Invocation itself is evaluator
// dispatch.
type Callable interface {
	Object
	Name() string
	Arity() int
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'f', -1, 64) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// Function is a user-defined function plus the environment captured at its
// definition site. Immutable after construction; equality is pointer
// identity, so two closures are equal only when they are the same allocation.
type Function struct {
	FnName     string
	Parameters []string
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Name() string     { return f.FnName }
func (f *Function) Arity() int       { return len(f.Parameters) }
func (f *Function) Inspect() string {
	var out bytes.Buffer

	out.WriteString("fun ")
	out.WriteString(f.FnName)
	out.WriteString("(")
	out.WriteString(strings.Join(f.Parameters, ", "))
	out.WriteString(")")

	return out.String()
}

// NativeFn receives already-evaluated arguments and returns a value or an
// *Error. Natives check their own arity.
type NativeFn func(args ...Object) Object

type Native struct {
	NativeName string
	NumParams  int
	Fn         NativeFn
}

func (n *Native) Type() ObjectType { return NATIVE_OBJ }
func (n *Native) Name() string     { return n.NativeName }
func (n *Native) Arity() int       { return n.NumParams }
func (n *Native) Inspect() string  { return fmt.Sprintf("<native %s>", n.NativeName) }

// ReturnValue carries a pending `return` up to the enclosing call boundary.
// It is deliberately not an Error: the call site unwraps it, while failures
// pass straight through.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

type ErrorKind string

const (
	UndefinedVariable   ErrorKind = "undefined variable"
	UnsupportedOperator ErrorKind = "unsupported operator"
	DivisionByZero      ErrorKind = "division by zero"
	ArityMismatch       ErrorKind = "arity mismatch"
	NotCallable         ErrorKind = "not callable"
	NativeFailure       ErrorKind = "native failure"
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Equals implements the language's equality rule: structural for primitives,
// pointer identity for function values.
func Equals(a, b Object) bool {
	switch a := a.(type) {
	case *Number:
		if b, ok := b.(*Number); ok {
			return a.Value == b.Value
		}
	case *String:
		if b, ok := b.(*String); ok {
			return a.Value == b.Value
		}
	case *Boolean:
		if b, ok := b.(*Boolean); ok {
			return a.Value == b.Value
		}
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Function:
		return a == b
	case *Native:
		return a == b
	}
	return false
}

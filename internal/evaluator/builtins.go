package evaluator

import (
	"lox/internal/object"
	"time"
)

var builtins = map[string]*object.Native{
	"clock": nativeClock(),
}

// NewRootEnvironment creates the parentless global scope with every
// registered native bound under its name.
func NewRootEnvironment() *object.Environment {
	env := object.NewEnvironment()
	for name, native := range builtins {
		env.Define(name, native)
	}
	return env
}

func nativeClock() *object.Native {
	return &object.Native{
		NativeName: "clock",
		NumParams:  0,
		Fn: func(args ...object.Object) object.Object {
			if len(args) != 0 {
				return newError(object.ArityMismatch, "too many arguments to clock: got %d, want 0",
					len(args))
			}

			return &object.Number{Value: float64(time.Now().UnixNano()) / 1e9}
		},
	}
}

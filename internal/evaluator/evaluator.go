package evaluator

import (
	"fmt"
	"log/slog"
	"lox/internal/ast"
	"lox/internal/object"
	"lox/internal/resolver"
)

var (
	NIL   = object.NIL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

// Evaluator walks the syntax tree depth-first. It owns no state beyond the
// output sink and the optional resolution side-table; the environment is
// threaded through every call, so nested and native re-entry are safe.
type Evaluator struct {
	out         Printer
	resolutions resolver.Bindings // nil means dynamic name lookup only
}

func New(out Printer) *Evaluator {
	return &Evaluator{out: out}
}

// WithResolutions installs the resolver's side-table. References whose nodes
// appear in the table walk exactly that many environment links; everything
// else still searches the chain dynamically.
func (e *Evaluator) WithResolutions(bindings resolver.Bindings) *Evaluator {
	e.resolutions = bindings
	return e
}

func (e *Evaluator) Eval(node ast.Node, env *object.Environment) object.Object {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalProgram(node, env)

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)

	case *ast.PrintStatement:
		val := e.Eval(node.Value, env)
		if isError(val) {
			return val
		}
		e.out.Print(val.Inspect())
		return NIL

	case *ast.VarStatement:
		var val object.Object = NIL
		if node.Value != nil {
			val = e.Eval(node.Value, env)
			if isError(val) {
				return val
			}
		}
		env.Define(node.Name.Value, val)
		return NIL

	case *ast.BlockStatement:
		blockEnv := object.NewEnclosedEnvironment(env)
		return e.evalStatements(node.Statements, blockEnv)

	case *ast.IfStatement:
		return e.evalIfStatement(node, env)

	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)

	case *ast.FunctionStatement:
		// The binding lands in the very environment the closure captures,
		// which is what makes direct and mutual recursion work.
		fn := &object.Function{
			FnName:     node.Name.Value,
			Parameters: paramNames(node.Parameters),
			Body:       node.Body,
			Env:        env,
		}
		env.Define(node.Name.Value, fn)
		return NIL

	case *ast.ReturnStatement:
		var val object.Object = NIL
		if node.ReturnValue != nil {
			val = e.Eval(node.ReturnValue, env)
			if isError(val) {
				return val
			}
		}
		return &object.ReturnValue{Value: val}

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}

	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)

	case *ast.NilLiteral:
		return NIL

	case *ast.GroupingExpression:
		return e.Eval(node.Expr, env)

	case *ast.Identifier:
		return e.evalIdentifier(node, env)

	case *ast.AssignExpression:
		return e.evalAssignExpression(node, env)

	case *ast.PrefixExpression:
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalPrefixExpression(node.Operator, right)

	case *ast.InfixExpression:
		left := e.Eval(node.Left, env)
		if isError(left) {
			return left
		}
		right := e.Eval(node.Right, env)
		if isError(right) {
			return right
		}
		return e.evalInfixExpression(node.Operator, left, right)

	case *ast.LogicalExpression:
		return e.evalLogicalExpression(node, env)

	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	}

	return nil
}

func (e *Evaluator) evalProgram(program *ast.Program, env *object.Environment) object.Object {
	var result object.Object = NIL

	for _, statement := range program.Statements {
		result = e.Eval(statement, env)

		switch result := result.(type) {
		case *object.ReturnValue:
			return result.Value
		case *object.Error:
			// Bindings made by earlier statements stay intact; the host
			// decides how to report and whether to carry on.
			return result
		}
	}

	return result
}

// evalStatements runs statements in the given environment, propagating the
// first pending return or failure immediately. Callers decide whether the
// environment is a fresh layer (blocks) or the parameter environment itself
// (function bodies, which get no extra block layer).
func (e *Evaluator) evalStatements(stmts []ast.Statement, env *object.Environment) object.Object {
	var result object.Object = NIL

	for _, statement := range stmts {
		result = e.Eval(statement, env)

		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}

	return result
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *object.Environment) object.Object {
	condition := e.Eval(node.Condition, env)
	if isError(condition) {
		return condition
	}

	if isTruthy(condition) {
		return e.Eval(node.ThenBranch, env)
	} else if node.ElseBranch != nil {
		return e.Eval(node.ElseBranch, env)
	}
	return NIL
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *object.Environment) object.Object {
	for {
		condition := e.Eval(node.Condition, env)
		if isError(condition) {
			return condition
		}
		if !isTruthy(condition) {
			return NIL
		}

		result := e.Eval(node.Body, env)
		if result != nil {
			rt := result.Type()
			if rt == object.RETURN_VALUE_OBJ || rt == object.ERROR_OBJ {
				return result
			}
		}
	}
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *object.Environment) object.Object {
	if e.resolutions != nil {
		if depth, ok := e.resolutions[node.ID]; ok {
			if val, ok := env.GetAt(depth, node.Value); ok {
				return val
			}
			slog.Debug("resolved depth missed, falling back to dynamic lookup",
				slog.String("name", node.Value),
				slog.Int("depth", depth))
		}
	}

	if val, ok := env.Get(node.Value); ok {
		return val
	}

	return newError(object.UndefinedVariable, "'%s' is not defined", node.Value)
}

func (e *Evaluator) evalAssignExpression(node *ast.AssignExpression, env *object.Environment) object.Object {
	val := e.Eval(node.Value, env)
	if isError(val) {
		return val
	}

	if e.resolutions != nil {
		if depth, ok := e.resolutions[node.ID]; ok {
			if env.AssignAt(depth, node.Name.Value, val) {
				return val
			}
		}
	}

	if env.Assign(node.Name.Value, val) {
		return val
	}

	return newError(object.UndefinedVariable, "cannot assign to '%s': not defined in any enclosing scope", node.Name.Value)
}

func (e *Evaluator) evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return nativeBoolToBooleanObject(!isTruthy(right))
	case "-":
		if num, ok := right.(*object.Number); ok {
			return &object.Number{Value: -num.Value}
		}
		return newError(object.UnsupportedOperator, "unknown operator: -%s", right.Type())
	default:
		return newError(object.UnsupportedOperator, "unknown operator: %s%s", operator, right.Type())
	}
}

func (e *Evaluator) evalInfixExpression(operator string, left, right object.Object) object.Object {
	switch {
	case operator == "==":
		return nativeBoolToBooleanObject(object.Equals(left, right))
	case operator == "!=":
		return nativeBoolToBooleanObject(!object.Equals(left, right))
	case left.Type() == object.NUMBER_OBJ && right.Type() == object.NUMBER_OBJ:
		return e.evalNumberInfixExpression(operator, left, right)
	case left.Type() == object.STRING_OBJ && right.Type() == object.STRING_OBJ:
		return e.evalStringInfixExpression(operator, left, right)
	default:
		return newError(object.UnsupportedOperator, "unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalNumberInfixExpression(operator string, left, right object.Object) object.Object {
	leftVal := left.(*object.Number).Value
	rightVal := right.(*object.Number).Value

	switch operator {
	case "+":
		return &object.Number{Value: leftVal + rightVal}
	case "-":
		return &object.Number{Value: leftVal - rightVal}
	case "*":
		return &object.Number{Value: leftVal * rightVal}
	case "/":
		if rightVal == 0 {
			return newError(object.DivisionByZero, "cannot divide %s by zero", left.Inspect())
		}
		return &object.Number{Value: leftVal / rightVal}
	case "<":
		return nativeBoolToBooleanObject(leftVal < rightVal)
	case "<=":
		return nativeBoolToBooleanObject(leftVal <= rightVal)
	case ">":
		return nativeBoolToBooleanObject(leftVal > rightVal)
	case ">=":
		return nativeBoolToBooleanObject(leftVal >= rightVal)
	default:
		return newError(object.UnsupportedOperator, "unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}
}

func (e *Evaluator) evalStringInfixExpression(operator string, left, right object.Object) object.Object {
	if operator != "+" {
		return newError(object.UnsupportedOperator, "unknown operator: %s %s %s",
			left.Type(), operator, right.Type())
	}

	leftVal := left.(*object.String).Value
	rightVal := right.(*object.String).Value
	return &object.String{Value: leftVal + rightVal}
}

func (e *Evaluator) evalLogicalExpression(node *ast.LogicalExpression, env *object.Environment) object.Object {
	left := e.Eval(node.Left, env)
	if isError(left) {
		return left
	}

	// Short-circuit keeps the operand value itself, not a coerced boolean.
	switch node.Operator {
	case "or":
		if isTruthy(left) {
			return left
		}
	case "and":
		if !isTruthy(left) {
			return left
		}
	}

	return e.Eval(node.Right, env)
}

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *object.Environment) object.Object {
	callee := e.Eval(node.Function, env)
	if isError(callee) {
		return callee
	}

	// Arguments evaluate left to right; the first failure abandons the call.
	var args []object.Object
	for _, arg := range node.Arguments {
		evaluated := e.Eval(arg, env)
		if isError(evaluated) {
			return evaluated
		}
		args = append(args, evaluated)
	}

	return e.applyFunction(callee, args)
}

// applyFunction is the call boundary: a pending return escaping the body is
// converted into the call's result here and nowhere else. Failures pass
// through untouched.
func (e *Evaluator) applyFunction(fnObj object.Object, args []object.Object) object.Object {
	switch fn := fnObj.(type) {
	case *object.Function:
		if len(args) < fn.Arity() {
			return newError(object.ArityMismatch, "too few arguments to %s: got %d, want %d",
				fn.Name(), len(args), fn.Arity())
		}
		if len(args) > fn.Arity() {
			return newError(object.ArityMismatch, "too many arguments to %s: got %d, want %d",
				fn.Name(), len(args), fn.Arity())
		}

		// One fresh layer on the captured closure; the parameter
		// environment doubles as the body's scope.
		callEnv := object.NewEnclosedEnvironment(fn.Env)
		for i, param := range fn.Parameters {
			callEnv.Define(param, args[i])
		}

		result := e.evalStatements(fn.Body.Statements, callEnv)
		if returnValue, ok := result.(*object.ReturnValue); ok {
			return returnValue.Value
		}
		if isError(result) {
			return result
		}
		return NIL

	case *object.Native:
		return fn.Fn(args...)

	default:
		return newError(object.NotCallable, "%s is not callable", fnObj.Type())
	}
}

func paramNames(params []*ast.Identifier) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Value
	}
	return names
}

func nativeBoolToBooleanObject(input bool) *object.Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// isTruthy: nil and false are falsy, everything else (zero and the empty
// string included) is truthy.
func isTruthy(obj object.Object) bool {
	switch obj := obj.(type) {
	case *object.Nil:
		return false
	case *object.Boolean:
		return obj.Value
	default:
		return true
	}
}

func newError(kind object.ErrorKind, format string, a ...interface{}) *object.Error {
	return &object.Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

func isError(obj object.Object) bool {
	if obj != nil {
		return obj.Type() == object.ERROR_OBJ
	}
	return false
}

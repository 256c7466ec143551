package resolver

import (
	"fmt"
	"lox/internal/ast"

	"github.com/google/uuid"
)

// Bindings maps a variable-reference or assignment node to the number of
// environment links between its use site and the scope that declares it.
// Names absent from the table are resolved dynamically at runtime.
type Bindings map[uuid.UUID]int

type variableState int

const (
	stateDeclared variableState = iota
	stateInitialized
)

type scope struct {
	parent    *scope
	variables map[string]variableState
}

func newScope(parent *scope) *scope {
	return &scope{
		parent:    parent,
		variables: make(map[string]variableState),
	}
}

// resolve returns the distance to the nearest scope with an initialized
// binding for name, or false when no static scope declares it.
func (s *scope) resolve(name string) (int, bool) {
	if state, ok := s.variables[name]; ok && state == stateInitialized {
		return 0, true
	}
	if s.parent != nil {
		if depth, ok := s.parent.resolve(name); ok {
			return depth + 1, true
		}
	}
	return 0, false
}

// Resolver walks the syntax tree once before evaluation and records lexical
// distances in a side-table keyed by node identity. The tree itself is never
// touched, so the pass composes with any evaluator and is independently
// testable.
type Resolver struct {
	bindings Bindings
}

func New() *Resolver {
	return &Resolver{bindings: make(Bindings)}
}

func Resolve(program *ast.Program) (Bindings, error) {
	r := New()
	root := newScope(nil)
	for _, stmt := range program.Statements {
		if err := r.resolveStatement(root, stmt); err != nil {
			return nil, err
		}
	}
	return r.bindings, nil
}

func (r *Resolver) resolveStatement(s *scope, stmt ast.Statement) error {
	switch stmt := stmt.(type) {
	case *ast.ExpressionStatement:
		return r.resolveExpression(s, stmt.Expression)

	case *ast.PrintStatement:
		return r.resolveExpression(s, stmt.Value)

	case *ast.VarStatement:
		if _, ok := s.variables[stmt.Name.Value]; ok {
			return fmt.Errorf("variable '%s' is already declared in this scope", stmt.Name.Value)
		}
		// Declared-but-uninitialized while the initializer runs, so
		// `var a = a;` cannot capture the variable mid-initialization.
		s.variables[stmt.Name.Value] = stateDeclared
		if stmt.Value != nil {
			if err := r.resolveExpression(s, stmt.Value); err != nil {
				return err
			}
		}
		s.variables[stmt.Name.Value] = stateInitialized
		return nil

	case *ast.BlockStatement:
		inner := newScope(s)
		for _, st := range stmt.Statements {
			if err := r.resolveStatement(inner, st); err != nil {
				return err
			}
		}
		return nil

	case *ast.IfStatement:
		if err := r.resolveExpression(s, stmt.Condition); err != nil {
			return err
		}
		if err := r.resolveStatement(s, stmt.ThenBranch); err != nil {
			return err
		}
		if stmt.ElseBranch != nil {
			return r.resolveStatement(s, stmt.ElseBranch)
		}
		return nil

	case *ast.WhileStatement:
		if err := r.resolveExpression(s, stmt.Condition); err != nil {
			return err
		}
		return r.resolveStatement(s, stmt.Body)

	case *ast.FunctionStatement:
		// The name is initialized before the body resolves, which is what
		// makes direct recursion work.
		s.variables[stmt.Name.Value] = stateInitialized

		// One scope for parameters and body alike; the evaluator runs the
		// body in the parameter environment, and the static distances must
		// count the same number of layers.
		fnScope := newScope(s)
		for _, param := range stmt.Parameters {
			fnScope.variables[param.Value] = stateInitialized
		}
		for _, st := range stmt.Body.Statements {
			if err := r.resolveStatement(fnScope, st); err != nil {
				return err
			}
		}
		return nil

	case *ast.ReturnStatement:
		if stmt.ReturnValue != nil {
			return r.resolveExpression(s, stmt.ReturnValue)
		}
		return nil
	}

	return nil
}

func (r *Resolver) resolveExpression(s *scope, expr ast.Expression) error {
	switch expr := expr.(type) {
	case *ast.Identifier:
		if depth, ok := s.resolve(expr.Value); ok {
			r.bindings[expr.ID] = depth
		}
		// Unresolved names (globals defined later, natives) fall back to
		// dynamic lookup at runtime.
		return nil

	case *ast.AssignExpression:
		if err := r.resolveExpression(s, expr.Value); err != nil {
			return err
		}
		if depth, ok := s.resolve(expr.Name.Value); ok {
			r.bindings[expr.ID] = depth
		}
		return nil

	case *ast.PrefixExpression:
		return r.resolveExpression(s, expr.Right)

	case *ast.InfixExpression:
		if err := r.resolveExpression(s, expr.Left); err != nil {
			return err
		}
		return r.resolveExpression(s, expr.Right)

	case *ast.LogicalExpression:
		if err := r.resolveExpression(s, expr.Left); err != nil {
			return err
		}
		return r.resolveExpression(s, expr.Right)

	case *ast.GroupingExpression:
		return r.resolveExpression(s, expr.Expr)

	case *ast.CallExpression:
		if err := r.resolveExpression(s, expr.Function); err != nil {
			return err
		}
		for _, arg := range expr.Arguments {
			if err := r.resolveExpression(s, arg); err != nil {
				return err
			}
		}
		return nil
	}

	// Literals carry no names.
	return nil
}

package object

import (
	"fmt"
	"sync"
	"testing"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", &Number{Value: 1})

	val, ok := env.Get("x")
	if !ok {
		t.Fatalf("expected x to be defined")
	}
	if val.(*Number).Value != 1 {
		t.Fatalf("expected 1, got %s", val.Inspect())
	}

	if _, ok := env.Get("y"); ok {
		t.Fatalf("expected y to be undefined")
	}
}

func TestGetWalksOuterChain(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	val, ok := inner.Get("x")
	if !ok || val.(*Number).Value != 1 {
		t.Fatalf("inner scope did not see outer binding")
	}
}

func TestDefineShadowsWithoutTouchingOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)
	inner.Define("x", &Number{Value: 2})

	val, _ := inner.Get("x")
	if val.(*Number).Value != 2 {
		t.Errorf("inner lookup should see the shadow, got %s", val.Inspect())
	}

	val, _ = outer.Get("x")
	if val.(*Number).Value != 1 {
		t.Errorf("outer binding must be untouched, got %s", val.Inspect())
	}
}

func TestAssignOverwritesNearestBinding(t *testing.T) {
	outer := NewEnvironment()
	outer.Define("x", &Number{Value: 1})
	inner := NewEnclosedEnvironment(outer)

	if !inner.Assign("x", &Number{Value: 2}) {
		t.Fatalf("assign to outer binding should succeed")
	}

	val, _ := outer.Get("x")
	if val.(*Number).Value != 2 {
		t.Errorf("assignment should land in the defining scope, got %s", val.Inspect())
	}

	if _, ok := inner.bindings["x"]; ok {
		t.Errorf("assignment must not create a binding in the inner scope")
	}
}

func TestAssignNeverCreates(t *testing.T) {
	env := NewEnvironment()
	if env.Assign("ghost", NIL) {
		t.Fatalf("assign to an undefined name must fail")
	}
	if _, ok := env.Get("ghost"); ok {
		t.Fatalf("failed assign must not create a binding")
	}
}

func TestGetAt(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", &Number{Value: 1})
	mid := NewEnclosedEnvironment(global)
	mid.Define("x", &Number{Value: 2})
	local := NewEnclosedEnvironment(mid)

	val, ok := local.GetAt(1, "x")
	if !ok || val.(*Number).Value != 2 {
		t.Errorf("GetAt(1) should hit the middle scope")
	}

	val, ok = local.GetAt(2, "x")
	if !ok || val.(*Number).Value != 1 {
		t.Errorf("GetAt(2) should hit the global scope")
	}

	// A depth is exact: it does not search further up.
	if _, ok := local.GetAt(0, "x"); ok {
		t.Errorf("GetAt(0) must not find a binding the local scope lacks")
	}

	if _, ok := local.GetAt(10, "x"); ok {
		t.Errorf("GetAt past the chain end must report a miss")
	}
}

func TestAssignAt(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", &Number{Value: 1})
	local := NewEnclosedEnvironment(global)

	if !local.AssignAt(1, "x", &Number{Value: 9}) {
		t.Fatalf("AssignAt(1) should succeed")
	}
	val, _ := global.Get("x")
	if val.(*Number).Value != 9 {
		t.Errorf("AssignAt should overwrite the global binding")
	}

	if local.AssignAt(0, "x", NIL) {
		t.Errorf("AssignAt must not create a binding at the wrong depth")
	}
}

// Two closures sharing one captured environment observe each other's writes
// through that environment.
func TestSharedEnvironmentVisibility(t *testing.T) {
	shared := NewEnvironment()
	shared.Define("count", &Number{Value: 0})

	holderA := NewEnclosedEnvironment(shared)
	holderB := NewEnclosedEnvironment(shared)

	holderA.Assign("count", &Number{Value: 1})

	val, _ := holderB.Get("count")
	if val.(*Number).Value != 1 {
		t.Fatalf("write through one holder must be visible through the other")
	}
}

func TestConcurrentAccess(t *testing.T) {
	env := NewEnvironment()
	env.Define("shared", &Number{Value: 0})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			env.Define(fmt.Sprintf("var%d", i), &Number{Value: float64(i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			env.Assign("shared", &Number{Value: float64(i)})
			env.Get("shared")
		}(i)
	}
	wg.Wait()

	if _, ok := env.Get("shared"); !ok {
		t.Fatalf("shared binding lost")
	}
	for i := 0; i < 16; i++ {
		if _, ok := env.Get(fmt.Sprintf("var%d", i)); !ok {
			t.Fatalf("var%d lost", i)
		}
	}
}

func TestEnvironmentIDsAreUnique(t *testing.T) {
	a := NewEnvironment()
	b := NewEnvironment()
	c := NewEnclosedEnvironment(a)

	if a.ID == b.ID || a.ID == c.ID || b.ID == c.ID {
		t.Fatalf("environment ids must be unique: %d %d %d", a.ID, b.ID, c.ID)
	}
}

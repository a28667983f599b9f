package flags

import "testing"

func TestStaticUnknownKeyIsDisabled(t *testing.T) {
	e := NewStatic(nil)
	if e.Enabled("anything", nil) {
		t.Fatal("expected unknown flag to default to disabled")
	}
}

func TestStaticHonorsInitialState(t *testing.T) {
	e := NewStatic(map[string]bool{"cart-recovery": true})
	if !e.Enabled("cart-recovery", nil) {
		t.Fatal("expected flag seeded true to evaluate true")
	}
}

func TestStaticSetFlipsAtRuntime(t *testing.T) {
	e := NewStatic(map[string]bool{"beta": false})
	if e.Enabled("beta", nil) {
		t.Fatal("expected beta to start disabled")
	}
	e.Set("beta", true)
	if !e.Enabled("beta", nil) {
		t.Fatal("expected beta to be enabled after Set")
	}
}

package cache

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryGetPutRoundTrip(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("expected miss for unknown key, got hit=%v err=%v", hit, err)
	}

	if err := c.Put(ctx, "k", map[string]any{"a": 1}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	v, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["a"] != 1 {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestInMemoryExpiry(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()

	if err := c.Put(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("put: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("expected entry to have expired")
	}
}

func TestInMemoryNoTTLNeverExpires(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()
	if err := c.Put(ctx, "k", "v", 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatalf("expected entry with zero TTL to remain cached")
	}
}

func TestInvalidateTag(t *testing.T) {
	c := NewInMemory()
	ctx := context.Background()

	if err := c.PutTagged(ctx, "a", 1, time.Minute, "grp"); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := c.PutTagged(ctx, "b", 2, time.Minute, "grp"); err != nil {
		t.Fatalf("put b: %v", err)
	}
	if err := c.Put(ctx, "c", 3, time.Minute); err != nil {
		t.Fatalf("put c: %v", err)
	}

	c.InvalidateTag("grp")

	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Fatalf("expected a invalidated")
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Fatalf("expected b invalidated")
	}
	if _, hit, _ := c.Get(ctx, "c"); !hit {
		t.Fatalf("expected c untouched")
	}
}

func TestKeyAnonymousFallback(t *testing.T) {
	got := Key("step", "s1", "", "wf1")
	want := "step:s1:anonymous:wf1"
	if got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
}

func TestKeyDefaultsPrefix(t *testing.T) {
	got := Key("", "s1", "u1", "wf1")
	want := "step:s1:u1:wf1"
	if got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
}

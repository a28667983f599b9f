package executor

import (
	"context"
	"testing"
	"time"

	"axonflow/workflow/engine/cache"
	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/dispatch"
	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/execctx"
	wf "axonflow/workflow/engine/workflow"
)

func newExecutor(t *testing.T, reg *dispatch.Registry, clk clock.Clock, c cache.Cache) *StepExecutor {
	t.Helper()
	return New(reg, c, clk, nil)
}

func TestExecuteCompletesOnSuccess(t *testing.T) {
	reg := dispatch.NewRegistry()
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"k": "v"}, nil
	})
	clk := clock.NewFake(time.Unix(0, 0))
	ex := newExecutor(t, reg, clk, nil)
	ectx := execctx.New("wf", "exec", nil)

	step := wf.Step{ID: "A", Service: "svc", Action: "act"}
	res := ex.Execute(context.Background(), step, ectx, time.Time{}, false)

	if res.Status != execctx.Completed {
		t.Fatalf("expected completed, got %v (%v)", res.Status, res.Err)
	}
	if res.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", res.Attempts)
	}
	if res.StartedAt.After(res.CompletedAt) {
		t.Fatalf("startedAt must be <= completedAt")
	}
}

func TestExecuteSkipsWhenConditionFalse(t *testing.T) {
	reg := dispatch.NewRegistry()
	called := false
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		called = true
		return map[string]any{}, nil
	})
	ex := newExecutor(t, reg, clock.NewFake(time.Unix(0, 0)), nil)
	ectx := execctx.New("wf", "exec", nil)

	step := wf.Step{
		ID: "B", Service: "svc", Action: "act",
		Conditions: []wf.Condition{{Field: "input.missing", Operator: wf.Exists}},
	}
	res := ex.Execute(context.Background(), step, ectx, time.Time{}, false)

	if res.Status != execctx.Skipped {
		t.Fatalf("expected skipped, got %v", res.Status)
	}
	if called {
		t.Fatal("dispatcher must not be called for a skipped step")
	}
	if res.Attempts != 0 {
		t.Fatalf("expected zero attempts for skipped step, got %d", res.Attempts)
	}
}

func TestExecuteCacheHitSkipsDispatch(t *testing.T) {
	reg := dispatch.NewRegistry()
	calls := 0
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"k": "v"}, nil
	})
	c := cache.NewInMemory()
	ex := newExecutor(t, reg, clock.NewFake(time.Unix(0, 0)), c)

	step := wf.Step{
		ID: "C", Service: "svc", Action: "act",
		Cache: wf.CacheSpec{Enabled: true, TTL: time.Minute},
	}
	ectx := execctx.New("wf", "exec", nil)

	first := ex.Execute(context.Background(), step, ectx, time.Time{}, false)
	if first.Status != execctx.Completed || first.Cached {
		t.Fatalf("expected first call to miss cache: %#v", first)
	}
	if calls != 1 {
		t.Fatalf("expected 1 dispatch, got %d", calls)
	}

	second := ex.Execute(context.Background(), step, execctx.New("wf", "exec2", nil), time.Time{}, false)
	if !second.Cached || second.Attempts != 0 {
		t.Fatalf("expected second call to be a cache hit with zero attempts: %#v", second)
	}
	if calls != 1 {
		t.Fatalf("expected no additional dispatch on cache hit, got %d calls", calls)
	}
}

func TestExecuteRetriesOnTransientThenSucceeds(t *testing.T) {
	reg := dispatch.NewRegistry()
	attempts := 0
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		attempts++
		if attempts < 3 {
			return nil, enginerr.New(enginerr.Transient, "THROTTLED", "slow down")
		}
		return map[string]any{"ok": true}, nil
	})
	clk := clock.NewFake(time.Unix(0, 0))
	ex := newExecutor(t, reg, clk, nil)
	ectx := execctx.New("wf", "exec", nil)

	step := wf.Step{
		ID: "D", Service: "svc", Action: "act",
		Retry: &wf.RetrySpec{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2},
	}
	res := ex.Execute(context.Background(), step, ectx, time.Time{}, false)

	if res.Status != execctx.Completed || res.Attempts != 3 {
		t.Fatalf("expected completed after 3 attempts, got %#v", res)
	}
}

func TestExecuteFailsAfterExhaustingRetries(t *testing.T) {
	reg := dispatch.NewRegistry()
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return nil, enginerr.New(enginerr.Transient, "THROTTLED", "slow down")
	})
	ex := newExecutor(t, reg, clock.NewFake(time.Unix(0, 0)), nil)
	ectx := execctx.New("wf", "exec", nil)

	step := wf.Step{
		ID: "E", Service: "svc", Action: "act",
		Retry: &wf.RetrySpec{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 1},
	}
	res := ex.Execute(context.Background(), step, ectx, time.Time{}, false)

	if res.Status != execctx.Failed || res.Err == nil {
		t.Fatalf("expected failed result with error, got %#v", res)
	}
	if res.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", res.Attempts)
	}
}

func TestExecuteDryRunSkipsCacheEvenOnPriorHit(t *testing.T) {
	reg := dispatch.NewRegistry()
	calls := 0
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		calls++
		return map[string]any{"k": "v"}, nil
	})
	c := cache.NewInMemory()
	ex := newExecutor(t, reg, clock.NewFake(time.Unix(0, 0)), c)

	step := wf.Step{
		ID: "G", Service: "svc", Action: "act",
		Cache: wf.CacheSpec{Enabled: true, TTL: time.Minute},
	}

	primed := ex.Execute(context.Background(), step, execctx.New("wf", "exec1", nil), time.Time{}, false)
	if primed.Cached || calls != 1 {
		t.Fatalf("expected the priming call to miss cache and dispatch once: %#v", primed)
	}

	dry := ex.Execute(context.Background(), step, execctx.New("wf", "exec2", nil), time.Time{}, true)
	if dry.Cached || dry.Output != nil {
		t.Fatalf("expected a dry run to synthesize a nil-output result even with a cache hit available, got %#v", dry)
	}
	if calls != 1 {
		t.Fatalf("expected dry run to never dispatch, got %d calls", calls)
	}
}

func TestExecuteDryRunNeverDispatches(t *testing.T) {
	reg := dispatch.NewRegistry()
	called := false
	reg.Register("svc", "act", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		called = true
		return map[string]any{}, nil
	})
	ex := newExecutor(t, reg, clock.NewFake(time.Unix(0, 0)), nil)
	ectx := execctx.New("wf", "exec", nil)

	step := wf.Step{ID: "F", Service: "svc", Action: "act"}
	res := ex.Execute(context.Background(), step, ectx, time.Time{}, true)

	if res.Status != execctx.Completed || res.Output != nil {
		t.Fatalf("expected synthetic completed result with nil output, got %#v", res)
	}
	if called {
		t.Fatal("dry run must never dispatch")
	}
}

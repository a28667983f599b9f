// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"context"
	"testing"
	"time"

	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/dispatch"
	"axonflow/workflow/engine/execctx"
	"axonflow/workflow/engine/flags"
	"axonflow/workflow/engine/registry"
	wf "axonflow/workflow/engine/workflow"
)

func newTestFacade(t *testing.T, flagEval flags.Evaluator) (*Facade, *dispatch.Registry) {
	t.Helper()
	reg := registry.New(nil)
	disp := dispatch.NewRegistry()
	f := New(reg, disp, nil, clock.New(), flagEval, nil)
	return f, disp
}

func TestExecuteWorkflowRunsRegisteredChain(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	disp.Register("svc", "step", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	w := &wf.Workflow{ID: "w1", Steps: []wf.Step{{ID: "a", Service: "svc", Action: "step"}}}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "w1", nil, Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != execctx.WorkflowCompleted {
		t.Fatalf("expected completed, got %v", res.Status)
	}
	if _, ok := f.ExecutionStatus(res.ExecutionID); ok {
		t.Fatalf("expected execution removed from the registry after completion")
	}
}

func TestExecuteWorkflowUnknownIDIsValidationError(t *testing.T) {
	f, _ := newTestFacade(t, nil)
	_, err := f.ExecuteWorkflow(context.Background(), "missing", nil, Options{})
	if err == nil {
		t.Fatal("expected an error for an unregistered workflow id")
	}
}

func TestExecuteWorkflowGatedByDisabledFlag(t *testing.T) {
	fe := flags.NewStatic(map[string]bool{"rollout": false})
	f, disp := newTestFacade(t, fe)
	disp.Register("svc", "step", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"called": true}, nil
	})
	w := &wf.Workflow{
		ID:    "gated",
		Flag:  &wf.FlagTrigger{Key: "rollout"},
		Steps: []wf.Step{{ID: "a", Service: "svc", Action: "step"}},
	}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "gated", nil, Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != execctx.WorkflowCancelled {
		t.Fatalf("expected cancelled status for a gated workflow, got %v", res.Status)
	}
	if res.Err == nil || res.Err.Code != "WORKFLOW_SKIPPED" {
		t.Fatalf("expected WORKFLOW_SKIPPED error code, got %#v", res.Err)
	}
	if len(res.Steps) != 0 {
		t.Fatalf("expected no steps executed when gated, got %d", len(res.Steps))
	}
}

func TestExecuteWorkflowEnabledFlagRunsNormally(t *testing.T) {
	fe := flags.NewStatic(map[string]bool{"rollout": true})
	f, disp := newTestFacade(t, fe)
	disp.Register("svc", "step", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"called": true}, nil
	})
	w := &wf.Workflow{
		ID:    "gated-on",
		Flag:  &wf.FlagTrigger{Key: "rollout"},
		Steps: []wf.Step{{ID: "a", Service: "svc", Action: "step"}},
	}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "gated-on", nil, Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != execctx.WorkflowCompleted {
		t.Fatalf("expected completed, got %v (%v)", res.Status, res.Err)
	}
}

func TestExecuteWorkflowDryRunNeverDispatches(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	called := false
	disp.Register("svc", "step", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		called = true
		return map[string]any{"ok": true}, nil
	})
	w := &wf.Workflow{ID: "dry", Steps: []wf.Step{{ID: "a", Service: "svc", Action: "step"}}}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "dry", nil, Options{DryRun: true})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if called {
		t.Fatal("expected dry run to never dispatch")
	}
	if res.Status != execctx.WorkflowCompleted {
		t.Fatalf("expected completed, got %v", res.Status)
	}
}

func TestExecuteWorkflowAlreadyExpiredTimeoutTimesOut(t *testing.T) {
	reg := registry.New(nil)
	disp := dispatch.NewRegistry()
	fakeClk := clock.NewFake(time.Unix(0, 0))
	// The first step's handler fast-forwards the shared fake clock past the
	// workflow's deadline before returning, so the interpreter's next
	// deadline check (before dispatching "b") observes an expired deadline
	// deterministically, off the same Clock the Façade computed it from.
	disp.Register("svc", "a", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		fakeClk.Advance(2 * time.Second)
		return map[string]any{"ok": true}, nil
	})
	disp.Register("svc", "b", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})
	f := New(reg, disp, nil, fakeClk, nil, nil)
	w := &wf.Workflow{ID: "slow", Steps: []wf.Step{
		{ID: "a", Service: "svc", Action: "a", OnSuccess: "b"},
		{ID: "b", Service: "svc", Action: "b"},
	}}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "slow", nil, Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != execctx.WorkflowTimedOut {
		t.Fatalf("expected timedOut, got %v", res.Status)
	}
	if len(res.Steps) != 1 {
		t.Fatalf("expected only step a to have run before the timeout was observed, got %d", len(res.Steps))
	}
}

func TestExecuteWorkflowAsyncReturnsImmediatelyThenCompletes(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	release := make(chan struct{})
	disp.Register("svc", "step", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		<-release
		return map[string]any{"ok": true}, nil
	})
	w := &wf.Workflow{ID: "async", Steps: []wf.Step{{ID: "a", Service: "svc", Action: "step"}}}
	if err := f.Register(w); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := f.ExecuteWorkflow(context.Background(), "async", nil, Options{Async: true})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != "" {
		t.Fatalf("expected an empty status placeholder for an async call, got %v", res.Status)
	}
	snap, ok := f.ExecutionStatus(res.ExecutionID)
	if !ok {
		t.Fatal("expected the execution to be tracked immediately after an async call")
	}
	if !snap.Running {
		t.Fatal("expected the execution to still be running")
	}

	close(release)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := f.ExecutionStatus(res.ExecutionID); !ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected the async execution to complete and be removed within the deadline")
}

func TestChainFeedsOutputForward(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	disp.Register("svc", "double", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		n, _ := input["n"].(int)
		return map[string]any{"n": n * 2}, nil
	})

	out, err := f.Chain(context.Background(), []ChainStep{
		{Service: "svc", Action: "double"},
		{Service: "svc", Action: "double"},
	}, map[string]any{"n": 3}, nil)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if out["n"] != 12 {
		t.Fatalf("expected 3 doubled twice to be 12, got %#v", out["n"])
	}
}

func TestChainPropagatesDispatchError(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	disp.Register("svc", "boom", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return nil, context.DeadlineExceeded
	})

	_, err := f.Chain(context.Background(), []ChainStep{{Service: "svc", Action: "boom"}}, nil, nil)
	if err == nil {
		t.Fatal("expected chain to propagate the dispatch error")
	}
}

func TestParallelPreservesOrderAndAwaitsAll(t *testing.T) {
	f, disp := newTestFacade(t, nil)
	disp.Register("svc", "echo", func(ctx context.Context, input map[string]any) (map[string]any, error) {
		return map[string]any{"v": input["v"]}, nil
	})

	tasks := []ChainStep{
		{Service: "svc", Action: "echo", Static: map[string]any{"v": 1}},
		{Service: "svc", Action: "echo", Static: map[string]any{"v": 2}},
		{Service: "svc", Action: "echo", Static: map[string]any{"v": 3}},
	}
	out, err := f.Parallel(context.Background(), tasks)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i, want := range []int{1, 2, 3} {
		if out[i]["v"] != want {
			t.Fatalf("expected out[%d][v] = %d, got %#v", i, want, out[i]["v"])
		}
	}
}

func TestExecutionStatusUnknownIDIsFalse(t *testing.T) {
	f, _ := newTestFacade(t, nil)
	if _, ok := f.ExecutionStatus("nope"); ok {
		t.Fatal("expected no snapshot for an unknown execution id")
	}
}

package resolve

import (
	"testing"

	"axonflow/workflow/engine/execctx"
	wf "axonflow/workflow/engine/workflow"
)

func TestResolvePrecedenceStaticThenContextThenStepThenWellKnown(t *testing.T) {
	ctx := execctx.New("wf1", "exec1", map[string]any{"k": "from-context"})
	ctx.UserID = "u1"
	ctx.RecordResult(execctx.StepResult{
		StepID: "A",
		Status: execctx.Completed,
		Output: map[string]any{"k": "from-step", "userId": "should-not-win"},
	})

	step := wf.Step{
		Input: wf.InputSpec{
			Static:      map[string]any{"k": "from-static"},
			FromContext: "k",
			FromStep:    "A",
		},
	}

	got := Resolve(step, ctx)
	if got["k"] != "from-step" {
		t.Fatalf("expected fromStep to beat fromContext and static, got %v", got["k"])
	}
	if got["userId"] != "u1" {
		t.Fatalf("expected well-known userId to beat step output, got %v", got["userId"])
	}
}

func TestResolveFromStepNotCompletedContributesNothing(t *testing.T) {
	ctx := execctx.New("wf1", "exec1", nil)
	ctx.RecordResult(execctx.StepResult{StepID: "A", Status: execctx.Skipped})

	step := wf.Step{Input: wf.InputSpec{FromStep: "A"}}
	got := Resolve(step, ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty input, got %#v", got)
	}
}

func TestResolveFromStepUnknownReferenceIsTotal(t *testing.T) {
	ctx := execctx.New("wf1", "exec1", nil)
	step := wf.Step{Input: wf.InputSpec{FromStep: "never-ran"}}
	got := Resolve(step, ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty input, got %#v", got)
	}
}

func TestResolveWellKnownFieldsOmittedWhenAbsent(t *testing.T) {
	ctx := execctx.New("wf1", "exec1", nil)
	got := Resolve(wf.Step{}, ctx)
	if _, ok := got["userId"]; ok {
		t.Fatal("expected userId omitted when absent")
	}
	if _, ok := got["sessionId"]; ok {
		t.Fatal("expected sessionId omitted when absent")
	}
	if _, ok := got["organizationId"]; ok {
		t.Fatal("expected organizationId omitted when absent")
	}
}

package executor

import (
	"context"
	"sync"
	"time"

	"axonflow/workflow/engine/execctx"
	wf "axonflow/workflow/engine/workflow"
)

// RunParallelGroup executes head plus its declared siblings concurrently,
// one task per step, and merges the results. Unlike the teacher's executor,
// the head step runs exactly once, inline with the group — it is never
// executed a second time outside it.
//
// Every individual sibling result is recorded into ectx under its own step
// id so later steps can reference it via fromStep. The head's own slot in
// ectx instead receives the merged record, since later steps addressing the
// group by the head's id expect the aligned output list.
func (e *StepExecutor) RunParallelGroup(ctx context.Context, head wf.Step, siblings []wf.Step, ectx *execctx.Context, workflowDeadline time.Time, dryRun bool) execctx.StepResult {
	tasks := append([]wf.Step{head}, siblings...)
	results := make([]execctx.StepResult, len(tasks))

	var wg sync.WaitGroup
	for i, s := range tasks {
		wg.Add(1)
		go func(idx int, step wf.Step) {
			defer wg.Done()
			results[idx] = e.Execute(ctx, step, ectx, workflowDeadline, dryRun)
		}(i, s)
	}
	wg.Wait()

	for i, r := range results {
		if i == 0 {
			continue // head's slot gets the merged record below
		}
		ectx.RecordResult(r)
	}

	allCompleted := true
	outputs := make([]any, len(results))
	var started, completed time.Time
	for i, r := range results {
		if r.Status != execctx.Completed {
			allCompleted = false
		}
		outputs[i] = r.Output
		if i == 0 || r.StartedAt.Before(started) {
			started = r.StartedAt
		}
		if r.CompletedAt.After(completed) {
			completed = r.CompletedAt
		}
	}

	status := execctx.Completed
	if !allCompleted {
		status = execctx.Failed
	}

	merged := execctx.StepResult{
		StepID:      head.ID,
		Status:      status,
		Output:      outputs,
		StartedAt:   started,
		CompletedAt: completed,
	}
	if !allCompleted {
		for _, r := range results {
			if r.Status != execctx.Completed && r.Err != nil {
				merged.Err = r.Err
				break
			}
		}
	}
	ectx.RecordResult(merged)
	return merged
}

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

// Package interpreter walks a workflow's step graph: one
// step at a time, following onSuccess/onFailure transitions, delegating
// execution of each step (or parallel group) to the Step Executor.
package interpreter

import (
	"context"
	"time"

	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/execctx"
	"axonflow/workflow/engine/executor"
	wf "axonflow/workflow/engine/workflow"
)

// Interpreter runs one workflow definition against one execution context.
type Interpreter struct {
	Executor *executor.StepExecutor
	Clock    clock.Clock
}

// New builds an Interpreter bound to a Step Executor and a Clock. clk may be
// nil, in which case it defaults to the real clock. Passing the same Clock
// given to the enclosing Façade (and so to the Step Executor it built) keeps
// the workflow-level deadline check and the per-step deadline check reading
// the same notion of "now" — a fake clock frozen in the past makes the
// workflow time out deterministically instead of racing real wall time.
func New(ex *executor.StepExecutor, clk clock.Clock) *Interpreter {
	if clk == nil {
		clk = clock.New()
	}
	return &Interpreter{Executor: ex, Clock: clk}
}

// Run walks w's step graph starting at its entry step until it reaches a
// step with no further transition, the workflow deadline expires, or ctx is
// cancelled. It always returns a terminal WorkflowResult; it never panics on
// a malformed graph because Validate is expected to have run at registration
// time — an interpreter encountering a dangling reference anyway just stops,
// treating it the same as "no next step".
func (in *Interpreter) Run(ctx context.Context, w *wf.Workflow, ectx *execctx.Context, deadline time.Time, dryRun bool) execctx.WorkflowResult {
	result := execctx.WorkflowResult{
		WorkflowID:  w.ID,
		ExecutionID: ectx.ExecutionID,
		StartedAt:   ectx.StartedAt,
	}

	currentID := w.EntryStepID()
	var lastOutput any
	failed := false

	for currentID != "" {
		if !deadline.IsZero() && !in.Clock.Now().Before(deadline) {
			result.Status = execctx.WorkflowTimedOut
			result.Err = enginerr.New(enginerr.Timeout, "WORKFLOW_TIMEOUT", "workflow exceeded its execution budget")
			result.CompletedAt = in.Clock.Now()
			result.Steps = ectx.OrderedResults()
			return result
		}
		if ctx.Err() != nil {
			result.Status = execctx.WorkflowCancelled
			result.Err = enginerr.New(enginerr.Cancelled, "CONTEXT_CANCELLED", ctx.Err().Error())
			result.CompletedAt = in.Clock.Now()
			result.Steps = ectx.OrderedResults()
			return result
		}

		step, ok := w.StepByID(currentID)
		if !ok {
			break
		}

		var stepResult execctx.StepResult
		if len(step.Parallel) > 0 {
			siblings := make([]wf.Step, 0, len(step.Parallel))
			for _, sibID := range step.Parallel {
				if sib, ok := w.StepByID(sibID); ok {
					siblings = append(siblings, sib)
				}
			}
			stepResult = in.Executor.RunParallelGroup(ctx, step, siblings, ectx, deadline, dryRun)
			ectx.RecordResult(stepResult)
		} else {
			stepResult = in.Executor.Execute(ctx, step, ectx, deadline, dryRun)
			ectx.RecordResult(stepResult)
		}

		switch stepResult.Status {
		case execctx.Completed:
			lastOutput = stepResult.Output
			failed = false
			currentID = step.OnSuccess
		case execctx.Skipped:
			currentID = step.OnSuccess
		case execctx.Failed:
			if step.OnFailure != "" {
				currentID = step.OnFailure
				continue
			}
			if w.EffectiveErrorAction() == wf.ErrorActionSkip {
				currentID = step.OnSuccess
				continue
			}
			failed = true
			result.Err = stepResult.Err
			currentID = ""
		default:
			currentID = ""
		}
	}

	result.Steps = ectx.OrderedResults()
	result.CompletedAt = in.Clock.Now()
	result.Output = lastOutput
	if failed {
		result.Status = execctx.WorkflowFailed
	} else {
		result.Status = execctx.WorkflowCompleted
	}
	return result
}

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

// Package executor implements the Step Executor and Parallel Group Executor
//: the component that turns one declarative Step into
// a terminal StepResult by composing the condition evaluator, the input
// resolver, the cache, the retry controller and the ServiceDispatcher.
package executor

import (
	"context"
	"time"

	"axonflow/workflow/engine/cache"
	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/condition"
	"axonflow/workflow/engine/dispatch"
	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/execctx"
	"axonflow/workflow/engine/resolve"
	"axonflow/workflow/engine/retry"
	wf "axonflow/workflow/engine/workflow"
	"axonflow/workflow/shared/logger"
)

// StepExecutor executes one step end to end.
type StepExecutor struct {
	Dispatcher dispatch.Dispatcher
	Cache      cache.Cache
	Clock      clock.Clock
	Logger     *logger.Logger
}

// New builds a StepExecutor. A nil Cache disables memoization for every
// step regardless of the step's own CacheSpec.
func New(d dispatch.Dispatcher, c cache.Cache, clk clock.Clock, log *logger.Logger) *StepExecutor {
	if clk == nil {
		clk = clock.New()
	}
	return &StepExecutor{Dispatcher: d, Cache: c, Clock: clk, Logger: log}
}

func conditionRoot(ectx *execctx.Context) condition.Root {
	return condition.Root{
		Input:     ectx.Input,
		Steps:     ectx.StepOutputs(),
		Variables: ectx.Variables(),
	}
}

// Execute runs one step. workflowDeadline is the absolute time the
// enclosing workflow run must finish by; the effective per-step deadline is
// the earlier of that and the step's own timeout.
func (e *StepExecutor) Execute(ctx context.Context, step wf.Step, ectx *execctx.Context, workflowDeadline time.Time, dryRun bool) execctx.StepResult {
	started := e.Clock.Now()

	if !condition.Evaluate(step.Conditions, conditionRoot(ectx)) {
		return execctx.StepResult{
			StepID:      step.ID,
			Status:      execctx.Skipped,
			StartedAt:   started,
			CompletedAt: started,
		}
	}

	if dryRun {
		return execctx.StepResult{
			StepID:      step.ID,
			Status:      execctx.Completed,
			Output:      nil,
			StartedAt:   started,
			CompletedAt: e.Clock.Now(),
		}
	}

	var cacheKey string
	if step.Cache.Enabled && e.Cache != nil {
		cacheKey = cache.Key(step.Cache.KeyPrefix, step.ID, ectx.UserID, ectx.WorkflowID)
		if v, hit, err := e.Cache.Get(ctx, cacheKey); err == nil && hit {
			return execctx.StepResult{
				StepID:      step.ID,
				Status:      execctx.Completed,
				Output:      v,
				StartedAt:   started,
				CompletedAt: e.Clock.Now(),
				Cached:      true,
			}
		}
	}

	input := resolve.Resolve(step, ectx)

	deadline := workflowDeadline
	if step.Timeout > 0 {
		stepDeadline := started.Add(step.Timeout)
		if stepDeadline.Before(deadline) || deadline.IsZero() {
			deadline = stepDeadline
		}
	}

	// deadline is a point on e.Clock, so the dispatch context gets the
	// remaining budget measured on that same clock rather than the absolute
	// time, which context would compare against wall time.
	dispatchCtx := ctx
	var cancel context.CancelFunc
	if !deadline.IsZero() {
		dispatchCtx, cancel = context.WithTimeout(ctx, deadline.Sub(e.Clock.Now()))
		defer cancel()
	}

	result := retry.Run(dispatchCtx, step.Retry, e.Clock, func(c context.Context, attemptNum int) (map[string]any, error) {
		out, err := e.Dispatcher.Invoke(c, step.Service, step.Action, input)
		if err != nil {
			return nil, classify(c, err)
		}
		return out, nil
	})

	if result.Err != nil {
		engErr, _ := enginerr.As(result.Err)
		if engErr == nil {
			engErr = enginerr.New(enginerr.Internal, "DISPATCH_ERROR", result.Err.Error())
		}
		return execctx.StepResult{
			StepID:      step.ID,
			Status:      execctx.Failed,
			Err:         engErr,
			StartedAt:   started,
			CompletedAt: e.Clock.Now(),
			Attempts:    result.Attempts,
		}
	}

	if cacheKey != "" {
		if err := e.Cache.Put(ctx, cacheKey, result.Output, step.Cache.TTL); err != nil && e.Logger != nil {
			e.Logger.Warn(ectx.OrganizationID, ectx.ExecutionID, "cache put failed", map[string]any{
				"step": step.ID, "error": err.Error(),
			})
		}
	}

	return execctx.StepResult{
		StepID:      step.ID,
		Status:      execctx.Completed,
		Output:      result.Output,
		StartedAt:   started,
		CompletedAt: e.Clock.Now(),
		Attempts:    result.Attempts,
	}
}

// classify maps a dispatch-time context deadline into a Timeout engine
// error without discarding an already-classified handler error.
func classify(ctx context.Context, err error) error {
	if _, ok := enginerr.As(err); ok {
		return err
	}
	if ctx.Err() == context.DeadlineExceeded {
		return enginerr.New(enginerr.Timeout, "STEP_TIMEOUT", err.Error())
	}
	if ctx.Err() == context.Canceled {
		return enginerr.New(enginerr.Cancelled, "CONTEXT_CANCELLED", err.Error())
	}
	return enginerr.New(enginerr.Internal, "DISPATCH_ERROR", err.Error())
}

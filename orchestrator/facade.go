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

// Package orchestrator is the Façade: the engine's one public entry point,
// wiring the Workflow Registry, the Step Executor and the Interpreter
// behind three operations (run by id, ad-hoc chain, ad-hoc fan-out) plus a
// live execution status query.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"axonflow/workflow/engine/cache"
	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/dispatch"
	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/execctx"
	"axonflow/workflow/engine/executor"
	"axonflow/workflow/engine/flags"
	"axonflow/workflow/engine/interpreter"
	"axonflow/workflow/engine/registry"
	wf "axonflow/workflow/engine/workflow"
	"axonflow/workflow/shared/logger"
)

// defaultWorkflowTimeout is the budget a workflow gets when neither the
// caller's Options nor the workflow definition itself names one.
const defaultWorkflowTimeout = 30 * time.Second

// Options configures one ExecuteWorkflow call. The zero value runs the
// workflow synchronously, undersigned by its own or the default timeout,
// with dry-run disabled and no feature-flag context.
type Options struct {
	// Timeout overrides the workflow's own configured timeout for this
	// execution.
	Timeout time.Duration
	// DryRun walks the real graph and evaluates real conditions but skips
	// every dispatch, synthesizing a completed result with nil output.
	DryRun bool
	// Priority is an opaque tag passed through to the execution context's
	// metadata; the engine never interprets it.
	Priority string
	// Async returns as soon as the execution is registered; the caller
	// observes completion via ExecutionStatus.
	Async bool
	// FeatureFlagContext is passed verbatim to FlagEvaluator.Enabled when
	// the workflow declares a flag trigger.
	FeatureFlagContext map[string]any
	// UserID, SessionID and OrganizationID seed the execution context's
	// well-known fields, which the Input Resolver injects into every step's
	// input as userId, sessionId and organizationId. Condition paths
	// (input.*) read the workflow input only and do not see them.
	UserID         string
	SessionID      string
	OrganizationID string
}

// Facade is the engine's public surface.
type Facade struct {
	Registry *registry.Registry
	Flags    flags.Evaluator
	Clock    clock.Clock
	Dispatch dispatch.Dispatcher
	Log      *logger.Logger
	interp   *interpreter.Interpreter
	execs    *execRegistry
}

// New wires a Façade from its four collaborators. flagEval may be nil, in
// which case every workflow declaring a flag trigger is always gated off
// (no trigger can fire true without an evaluator to ask); pass
// flags.NewStatic(nil) instead to run everything unconditionally.
func New(reg *registry.Registry, disp dispatch.Dispatcher, c cache.Cache, clk clock.Clock, flagEval flags.Evaluator, log *logger.Logger) *Facade {
	if clk == nil {
		clk = clock.New()
	}
	ex := executor.New(disp, c, clk, log)
	return &Facade{
		Registry: reg,
		Flags:    flagEval,
		Clock:    clk,
		Dispatch: disp,
		Log:      log,
		interp:   interpreter.New(ex, clk),
		execs:    newExecRegistry(),
	}
}

// Register adds a workflow definition to the Registry.
func (f *Facade) Register(w *wf.Workflow) error {
	return f.Registry.Register(w)
}

// ListWorkflows returns every registered workflow id, sorted.
func (f *Facade) ListWorkflows() []string {
	return f.Registry.List()
}

// ExecutionStatus returns a live or terminal snapshot of the named
// execution, or false if no such execution is currently tracked (it either
// never existed or has already been removed after completion).
func (f *Facade) ExecutionStatus(executionID string) (ExecutionSnapshot, bool) {
	return f.execs.status(executionID)
}

// ExecuteWorkflow runs the workflow registered under idOrTemplate. It
// consults the FlagEvaluator first if the workflow declares a flag
// trigger, then runs it under the effective timeout
// (opts.Timeout ?? workflow.Timeout ?? 30s). The execution is tracked in
// the Execution Registry from just before it starts until it reaches a
// terminal state, at which point it is removed — ExecutionStatus stops
// finding it, same as the spec's append-on-start/remove-on-end contract.
//
// In async mode, ExecuteWorkflow returns as soon as the execution is
// registered; its returned WorkflowResult carries only WorkflowID,
// ExecutionID and StartedAt (Status is empty) as a signal to poll
// ExecutionStatus for the real outcome.
func (f *Facade) ExecuteWorkflow(ctx context.Context, idOrTemplate string, input map[string]any, opts Options) (execctx.WorkflowResult, error) {
	w, ok := f.Registry.Get(idOrTemplate)
	if !ok {
		return execctx.WorkflowResult{}, enginerr.New(enginerr.Validation, "WORKFLOW_NOT_FOUND", fmt.Sprintf("no workflow registered under id %q", idOrTemplate))
	}

	ectx := execctx.New(w.ID, uuid.New().String(), input)
	ectx.UserID = opts.UserID
	ectx.SessionID = opts.SessionID
	ectx.OrganizationID = opts.OrganizationID
	if opts.Priority != "" {
		ectx.Metadata["priority"] = opts.Priority
	}

	if w.Flag != nil {
		enabled := f.Flags != nil && f.Flags.Enabled(w.Flag.Key, opts.FeatureFlagContext)
		if !enabled {
			promWorkflowsGated.WithLabelValues(w.ID).Inc()
			gatedErr := enginerr.New(enginerr.Gated, enginerr.WorkflowSkippedCode, fmt.Sprintf("flag %q disabled", w.Flag.Key))
			return execctx.WorkflowResult{
				WorkflowID:  w.ID,
				ExecutionID: ectx.ExecutionID,
				Status:      execctx.WorkflowCancelled,
				Err:         gatedErr,
				StartedAt:   ectx.StartedAt,
				CompletedAt: f.Clock.Now(),
			}, nil
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = w.Timeout
	}
	if timeout <= 0 {
		timeout = defaultWorkflowTimeout
	}
	deadline := f.Clock.Now().Add(timeout)

	f.execs.start(ectx)

	run := func(runCtx context.Context) execctx.WorkflowResult {
		result := f.interp.Run(runCtx, w, ectx, deadline, opts.DryRun)
		recordWorkflowMetrics(result)
		f.execs.finish(ectx.ExecutionID, result)
		f.execs.remove(ectx.ExecutionID)
		return result
	}

	if opts.Async {
		// The caller's ctx is typically request-scoped (an HTTP handler's
		// context) and is cancelled the moment ExecuteWorkflow returns below.
		// Strip that cancellation so the background run isn't killed before
		// it has a chance to do any real work; it still has its own
		// workflow/step deadlines via deadline above.
		go run(context.WithoutCancel(ctx))
		return execctx.WorkflowResult{WorkflowID: w.ID, ExecutionID: ectx.ExecutionID, StartedAt: ectx.StartedAt}, nil
	}

	return run(ctx), nil
}

// ChainStep is one ad-hoc invocation in a Chain call: no conditions, no
// retries, no caching, just a direct dispatch.
type ChainStep struct {
	Service string
	Action  string
	// Static is merged on top of the previous step's (possibly mapper-
	// transformed) output; Static keys win on collision.
	Static map[string]any
}

// ChainMapper transforms one step's output into the next step's input
// before Static is merged on top. A nil mapper is the identity.
type ChainMapper func(prevOutput map[string]any) map[string]any

// Chain runs steps in sequence, feeding each step's dispatch output (passed
// through mapper, if given) as the next step's input. It is a convenience
// path for callers that already hold their own wiring outside the
// registered-workflow system: no condition evaluation, no retry, no cache.
func (f *Facade) Chain(ctx context.Context, steps []ChainStep, initialInput map[string]any, mapper ChainMapper) (map[string]any, error) {
	current := initialInput
	for _, step := range steps {
		in := current
		if mapper != nil {
			in = mapper(current)
		}
		merged := make(map[string]any, len(in)+len(step.Static))
		for k, v := range in {
			merged[k] = v
		}
		for k, v := range step.Static {
			merged[k] = v
		}
		out, err := f.Dispatch.Invoke(ctx, step.Service, step.Action, merged)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

// Parallel runs every task concurrently and returns their outputs aligned
// with the input order. It awaits every task before returning (best-effort
// completion) and then propagates the first error found in input order, if
// any, to the caller.
func (f *Facade) Parallel(ctx context.Context, tasks []ChainStep) ([]map[string]any, error) {
	results := make([]map[string]any, len(tasks))
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, t := range tasks {
		go func(i int, t ChainStep) {
			defer wg.Done()
			out, err := f.Dispatch.Invoke(ctx, t.Service, t.Action, t.Static)
			results[i] = out
			errs[i] = err
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

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
	"sync"
	"time"

	"axonflow/workflow/engine/execctx"
)

// ExecutionSnapshot is the inspectable state of one in-flight or just-ended
// execution. Unlike execctx.WorkflowResult, which only exists once a run
// reaches a terminal state, a snapshot can be read at any time the
// execution is live.
type ExecutionSnapshot struct {
	WorkflowID  string
	ExecutionID string
	StartedAt   time.Time
	Running     bool
	Steps       []execctx.StepResult
	Result      *execctx.WorkflowResult
}

// execRegistry is the live map of in-flight executions: append on start,
// remove on terminal state. Status queries read a consistent snapshot built
// from the still-live execctx.Context, or the stored terminal result once
// one exists.
type execRegistry struct {
	mu      sync.RWMutex
	entries map[string]*execEntry
}

type execEntry struct {
	ectx   *execctx.Context
	result *execctx.WorkflowResult
}

func newExecRegistry() *execRegistry {
	return &execRegistry{entries: make(map[string]*execEntry)}
}

func (r *execRegistry) start(ectx *execctx.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[ectx.ExecutionID] = &execEntry{ectx: ectx}
	promExecutionsInFlight.Inc()
}

func (r *execRegistry) finish(executionID string, result execctx.WorkflowResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[executionID]; ok {
		e.result = &result
	}
}

func (r *execRegistry) remove(executionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[executionID]; ok {
		delete(r.entries, executionID)
		promExecutionsInFlight.Dec()
	}
}

func (r *execRegistry) status(executionID string) (ExecutionSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[executionID]
	if !ok {
		return ExecutionSnapshot{}, false
	}
	snap := ExecutionSnapshot{
		WorkflowID:  e.ectx.WorkflowID,
		ExecutionID: e.ectx.ExecutionID,
		StartedAt:   e.ectx.StartedAt,
		Running:     e.result == nil,
		Steps:       e.ectx.OrderedResults(),
		Result:      e.result,
	}
	return snap, true
}

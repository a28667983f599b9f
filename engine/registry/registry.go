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

// Package registry holds the set of known Workflow definitions by id.
// Definitions can be registered programmatically or loaded from YAML
// templates; registering under an id already in use replaces the prior
// definition rather than erroring, the same way the platform's agent
// configuration registry treats a reload.
package registry

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"axonflow/workflow/engine/dispatch"
	wf "axonflow/workflow/engine/workflow"
	"axonflow/workflow/shared/logger"
)

// Registry is a thread-safe map of workflow id to definition.
type Registry struct {
	mu        sync.RWMutex
	workflows map[string]*wf.Workflow
	log       *logger.Logger
}

// New builds an empty Registry. log may be nil to suppress the
// overwrite warning.
func New(log *logger.Logger) *Registry {
	return &Registry{
		workflows: make(map[string]*wf.Workflow),
		log:       log,
	}
}

// Register validates w and adds it to the registry, replacing any existing
// definition under the same id. Re-registration is logged at Warn, never
// rejected — templates are expected to be reloaded over a running process.
func (r *Registry) Register(w *wf.Workflow) error {
	if err := wf.Validate(w); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workflows[w.ID]; exists && r.log != nil {
		r.log.Warn("", "", "workflow re-registered, replacing prior definition", map[string]any{
			"workflowId": w.ID,
		})
	}
	r.workflows[w.ID] = w
	return nil
}

// RegisterChecked behaves like Register but additionally rejects a
// workflow if any step's (service, action) pair does not resolve against
// disp — the registration-time dispatch check called out as a Design Note.
func (r *Registry) RegisterChecked(w *wf.Workflow, disp *dispatch.Registry) error {
	for _, s := range w.Steps {
		if !disp.Resolves(s.Service, s.Action) {
			return fmt.Errorf("registry: workflow %s step %s: no handler registered for %s/%s", w.ID, s.ID, s.Service, s.Action)
		}
	}
	return r.Register(w)
}

// Get returns the workflow registered under id, if any.
func (r *Registry) Get(id string) (*wf.Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[id]
	return w, ok
}

// List returns every registered workflow id, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workflows))
	for id := range r.workflows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unregister removes a workflow definition by id.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workflows, id)
}

// LoadYAMLFile parses a single workflow template from a YAML file and
// registers it.
func (r *Registry) LoadYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("registry: read %s: %w", path, err)
	}
	var w wf.Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("registry: parse %s: %w", path, err)
	}
	return r.Register(&w)
}

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

// Package dispatch defines the ServiceDispatcher the engine invokes steps
// through, re-architected from the teacher's dynamic method-lookup
// (run.go's reflection-ish routing) into a typed dispatch table keyed by
// (service, action) strings. The engine never references a concrete
// service; it only ever calls Invoke.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"axonflow/workflow/engine/enginerr"
)

// Dispatcher is the interface the engine consumes.
type Dispatcher interface {
	Invoke(ctx context.Context, service, action string, input map[string]any) (map[string]any, error)
}

// Handler implements one (service, action) pair.
type Handler func(ctx context.Context, input map[string]any) (map[string]any, error)

// Registry is a typed dispatch table keyed by "<service>/<action>". Unknown
// pairs fail with a Validation error at dispatch time.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty dispatch registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func key(service, action string) string {
	return service + "/" + action
}

// Register binds a handler to a (service, action) pair, overwriting any
// prior registration.
func (r *Registry) Register(service, action string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[key(service, action)] = h
}

// Resolves reports whether a (service, action) pair has a registered
// handler, used by the workflow registry's optional registration-time check.
func (r *Registry) Resolves(service, action string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[key(service, action)]
	return ok
}

// Invoke dispatches to the registered handler. An unregistered pair is a
// Validation error, never retried.
func (r *Registry) Invoke(ctx context.Context, service, action string, input map[string]any) (map[string]any, error) {
	r.mu.RLock()
	h, ok := r.handlers[key(service, action)]
	r.mu.RUnlock()
	if !ok {
		return nil, enginerr.New(enginerr.Validation, "NO_SUCH_ACTION",
			fmt.Sprintf("no handler registered for %s.%s", service, action))
	}
	return h(ctx, input)
}

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

// Package resolve builds a step's effective input from static values,
// workflow input, prior step outputs, and well-known context fields.
package resolve

import (
	"axonflow/workflow/engine/execctx"
	wf "axonflow/workflow/engine/workflow"
)

// Resolve builds the input map per this precedence rule:
// static < fromContext < fromStep < well-known. It is total: a fromStep
// reference to a step that never completed (skipped, failed, or never
// reached) simply contributes nothing, never an error.
func Resolve(step wf.Step, ctx *execctx.Context) map[string]any {
	input := make(map[string]any)

	for k, v := range step.Input.Static {
		input[k] = v
	}

	if step.Input.FromContext != "" {
		if v, ok := ctx.Input[step.Input.FromContext]; ok {
			input[step.Input.FromContext] = v
		}
	}

	if step.Input.FromStep != "" {
		if r, ok := ctx.Result(step.Input.FromStep); ok && r.Status == execctx.Completed {
			if m, ok := r.Output.(map[string]any); ok {
				for k, v := range m {
					input[k] = v
				}
			}
		}
	}

	if ctx.UserID != "" {
		input["userId"] = ctx.UserID
	}
	if ctx.SessionID != "" {
		input["sessionId"] = ctx.SessionID
	}
	if ctx.OrganizationID != "" {
		input["organizationId"] = ctx.OrganizationID
	}

	return input
}

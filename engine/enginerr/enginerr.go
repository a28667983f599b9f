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

// Package enginerr defines the error kinds the orchestration engine surfaces
// to callers and uses internally to decide retry/propagation behavior.
package enginerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error. It is not a Go type switch target by
// design — callers branch on it as a plain value, the same way the retry
// controller consults a step's retryable-code whitelist.
type Kind string

const (
	// Validation covers malformed workflows, unknown service/action pairs,
	// and bad input shapes. Fatal; never retried.
	Validation Kind = "VALIDATION"
	// Transient covers retryable downstream failures (throttling, connection
	// reset, a 5xx marked retryable).
	Transient Kind = "TRANSIENT"
	// Timeout is a deadline exceeded. Non-retryable unless a step's
	// retryable set explicitly contains it.
	Timeout Kind = "TIMEOUT"
	// Cancelled covers workflow-level timeout or external cancellation.
	Cancelled Kind = "CANCELLED"
	// Gated marks a workflow skipped by a disabled feature flag.
	Gated Kind = "GATED"
	// Internal covers assertion violations inside the engine itself.
	Internal Kind = "INTERNAL"
)

// WorkflowSkippedCode is the workflow result error code used when a flag
// gate blocks execution.
const WorkflowSkippedCode = "WORKFLOW_SKIPPED"

// Error is the engine's error record: a stable code, a human message, a
// Kind used for retry/propagation decisions, and optional structured
// details for diagnostics.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithDetails attaches structured details and returns the receiver for
// chaining at the call site.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As reports whether err is (or wraps) an *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the Kind of err if it is an *Error, or Internal otherwise —
// an unclassified error inside the engine is itself an assertion violation.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	if err == nil {
		return ""
	}
	return Internal
}

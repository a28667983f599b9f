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

// Package retry implements the per-step attempt loop: a
// sequential driver — no goroutines of its own — that sleeps through the
// injected Clock so tests can fast-forward, grounded on the teacher's
// connectors/sdk.Backoff/RetryWithBackoff but adapted to the engine's
// Clock abstraction instead of time.After.
package retry

import (
	"context"
	"math"
	"time"

	"axonflow/workflow/engine/clock"
	"axonflow/workflow/engine/enginerr"
	wf "axonflow/workflow/engine/workflow"
)

// Attempt is one dispatch attempt. It returns the dispatch output or an
// engine error.
type Attempt func(ctx context.Context, attemptNum int) (map[string]any, error)

// Result carries the final outcome plus the number of dispatches performed:
// in [1, N] once the first attempt has run, exactly N when every attempt
// returns a retryable error, and 0 when ctx is already done before the first
// attempt.
type Result struct {
	Output   map[string]any
	Attempts int
	Err      error
}

// defaultSpec is used when a step declares no retry spec: a single attempt,
// no retries.
var defaultSpec = wf.RetrySpec{MaxAttempts: 1}

// Run drives the attempt loop: dispatch, and on a retryable error sleep for
// an exponentially growing backoff before trying again, until MaxAttempts is
// reached or the error is not in the retry whitelist.
func Run(ctx context.Context, spec *wf.RetrySpec, clk clock.Clock, attempt Attempt) Result {
	s := defaultSpec
	if spec != nil {
		s = *spec
	}
	if s.MaxAttempts < 1 {
		s.MaxAttempts = 1
	}
	multiplier := s.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	for n := 1; ; n++ {
		if ctx.Err() != nil {
			return Result{Attempts: n - 1, Err: enginerr.New(enginerr.Cancelled, "CONTEXT_CANCELLED", ctx.Err().Error())}
		}

		out, err := attempt(ctx, n)
		if err == nil {
			return Result{Output: out, Attempts: n}
		}

		if !retryable(err, s.RetryableCodes) || n == s.MaxAttempts {
			return Result{Attempts: n, Err: err}
		}

		delay := backoffDelay(s.InitialDelay, multiplier, n)
		clk.Sleep(delay)
	}
}

// backoffDelay computes initialDelay * multiplier^(attempt-1).
func backoffDelay(initial time.Duration, multiplier float64, attempt int) time.Duration {
	if attempt <= 1 {
		return initial
	}
	factor := math.Pow(multiplier, float64(attempt-1))
	return time.Duration(float64(initial) * factor)
}

// retryable reports whether err's code is in the step's whitelist. An empty
// whitelist defaults to retrying any Transient-kind error. A Timeout-kind
// error is only retried when the whitelist names it explicitly.
func retryable(err error, codes []string) bool {
	e, ok := enginerr.As(err)
	if !ok {
		return false
	}
	if len(codes) == 0 {
		return e.Kind == enginerr.Transient
	}
	for _, c := range codes {
		if c == e.Code {
			return true
		}
	}
	return false
}

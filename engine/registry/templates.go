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

package registry

import (
	"fmt"

	"gopkg.in/yaml.v3"

	wf "axonflow/workflow/engine/workflow"
)

// builtinTemplates holds the fixed set of representative workflow shapes
// seeded at startup: a single-threaded chain, a chain with
// a conditional guard and a fallback branch, and a fan-out that merges two
// parallel results downstream.
var builtinTemplates = []string{shoppingAssistantYAML, cartRecoveryYAML, personalizedFeedYAML, fraudCheckYAML}

// SeedBuiltins registers the built-in templates. Re-running it (e.g. after
// a redeploy) replaces each template in place and logs at Warn, never fails.
func (r *Registry) SeedBuiltins() error {
	for _, doc := range builtinTemplates {
		var w wf.Workflow
		if err := yaml.Unmarshal([]byte(doc), &w); err != nil {
			return fmt.Errorf("registry: seed builtin: %w", err)
		}
		if err := r.Register(&w); err != nil {
			return fmt.Errorf("registry: seed builtin %s: %w", w.ID, err)
		}
	}
	return nil
}

// shoppingAssistantYAML is a single-threaded chain: look up the product,
// then fetch the shopper's profile to personalize the reply. No guards, no
// fan-out — the simplest representative shape.
const shoppingAssistantYAML = `
id: shopping-assistant
name: Shopping Assistant
version: "1"
timeout: 15s
steps:
  - id: lookup-product
    service: catalog
    action: lookupProduct
    input:
      fromContext: productId
    onSuccess: fetch-profile
  - id: fetch-profile
    service: profile
    action: fetchUserProfile
    input:
      fromStep: lookup-product
    cache:
      enabled: true
      keyPrefix: shopping-profile
      ttl: 5m
`

// cartRecoveryYAML is a chain with a conditional guard and a fallback
// branch: only charge the saved card if the cart is still eligible for
// recovery, recording the fraud/analytics event either way.
const cartRecoveryYAML = `
id: cart-recovery
name: Cart Recovery
version: "1"
timeout: 20s
errorAction: skip
steps:
  - id: charge-saved-card
    service: billing
    action: chargeCard
    input:
      fromContext: cartId
    conditions:
      - field: input.cartEligible
        operator: equals
        value: true
    retry:
      maxAttempts: 3
      initialDelay: 200ms
      multiplier: 2
      retryableCodes: ["THROTTLED"]
    onSuccess: record-recovery
    onFailure: record-failure
  - id: record-recovery
    service: analytics
    action: recordEvent
    input:
      static:
        event: cart_recovered
  - id: record-failure
    service: analytics
    action: recordEvent
    input:
      static:
        event: cart_recovery_failed
`

// personalizedFeedYAML fans out to three independent lookups and merges
// them before ranking — the same shape as fraudCheckYAML but for a feed
// composition rather than a risk decision.
const personalizedFeedYAML = `
id: personalized-feed
name: Personalized Feed
version: "1"
timeout: 10s
steps:
  - id: fetch-profile
    service: profile
    action: fetchUserProfile
    input:
      fromContext: userId
    parallel:
      - fetch-recent-activity
      - fetch-trending-items
    onSuccess: rank-feed
  - id: fetch-recent-activity
    service: analytics
    action: recordEvent
    input:
      static:
        event: feed_activity_lookup
  - id: fetch-trending-items
    service: catalog
    action: lookupProduct
    input:
      static:
        trending: true
  - id: rank-feed
    service: ai-bedrock
    action: invokeModel
    input:
      fromStep: fetch-profile
`

// fraudCheckYAML runs two independent risk signals in parallel and merges
// them, then asks the model to make the final call — the fan-out/merge shape.
const fraudCheckYAML = `
id: fraud-check
name: Fraud Check
version: "1"
timeout: 8s
steps:
  - id: check-velocity
    service: analytics
    action: recordEvent
    input:
      fromContext: transactionId
    parallel:
      - check-device-reputation
    onSuccess: score-risk
    onFailure: score-risk
  - id: check-device-reputation
    service: analytics
    action: recordEvent
    input:
      fromContext: deviceId
  - id: score-risk
    service: ai-bedrock
    action: invokeModel
    input:
      fromStep: check-velocity
    timeout: 3s
`

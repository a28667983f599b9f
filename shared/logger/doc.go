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

/*
Package logger provides the structured JSON logging engine components share.
The workflow registry (re-registration overwrite) and the step executor
(failed cache write) log tolerated failures at Warn through a *Logger; the
dispatcher, cache, retry controller and interpreter do not log.

Each entry carries the engine's own correlation fields, OrganizationID and
ExecutionID, so every line one workflow execution produced across every
component it touched can be grouped in a log aggregator:

	log := logger.New("registry")
	log.Warn(orgID, execID, "workflow re-registered, replacing prior definition", map[string]interface{}{
	    "workflowId": w.ID,
	})

# Output format

One JSON line per entry, written to stdout:

	{"timestamp":"2025-01-15T10:30:00.123456789Z","level":"WARN",
	 "component":"registry","instanceId":"i-abc123","container":"orchestrator-xyz",
	 "organizationId":"org-123","executionId":"exec-456",
	 "message":"workflow re-registered, replacing prior definition","fields":{"workflowId":"billing-chain"}}

# Environment variables

  - INSTANCE_ID: deployment instance identifier

The container name is the process hostname as reported by os.Hostname.
*/
package logger

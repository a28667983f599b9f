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

// Command orchestrator starts the workflow orchestrator service: an HTTP
// process that registers the built-in workflow templates, wires whichever
// dispatch handlers their environment variables configure, and serves
// status and execution-query endpoints until killed.
//
// See orchestrator.Run for the full list of environment variables it reads.
package main

import "axonflow/workflow/orchestrator"

func main() {
	orchestrator.Run()
}

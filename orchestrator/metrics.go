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
	"github.com/prometheus/client_golang/prometheus"

	"axonflow/workflow/engine/execctx"
)

var (
	promStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axonflow_workflow_steps_total",
			Help: "Total number of workflow steps dispatched, by workflow id and terminal status",
		},
		[]string{"workflow", "status"},
	)
	promWorkflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "axonflow_workflow_duration_seconds",
			Help:    "Workflow execution duration in seconds, by workflow id and terminal status",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"workflow", "status"},
	)
	promWorkflowsGated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axonflow_workflow_gated_total",
			Help: "Total number of workflow executions skipped by a disabled feature flag",
		},
		[]string{"workflow"},
	)
	promExecutionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "axonflow_workflow_executions_in_flight",
			Help: "Number of workflow executions currently registered in the Execution Registry",
		},
	)
)

func init() {
	prometheus.MustRegister(promStepsTotal)
	prometheus.MustRegister(promWorkflowDuration)
	prometheus.MustRegister(promWorkflowsGated)
	prometheus.MustRegister(promExecutionsInFlight)
}

func recordWorkflowMetrics(result execctx.WorkflowResult) {
	status := string(result.Status)
	promStepsTotal.WithLabelValues(result.WorkflowID, status).Add(float64(len(result.Steps)))
	promWorkflowDuration.WithLabelValues(result.WorkflowID, status).Observe(result.CompletedAt.Sub(result.StartedAt).Seconds())
}

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
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter builds the read-only HTTP status surface: a health check, the
// list of registered workflows, a single execution's status, and a
// Prometheus scrape endpoint. Starting and polling executions over HTTP is
// left to a real deployment's own API layer; this surface only exists to
// give operators something to curl.
func (f *Facade) NewRouter() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", f.healthHandler).Methods("GET")
	r.HandleFunc("/workflows", f.listWorkflowsHandler).Methods("GET")
	r.HandleFunc("/executions/{id}", f.executionStatusHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("orchestrator: encode response: %v", err)
	}
}

func (f *Facade) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "axonflow-workflow-orchestrator",
		"timestamp": time.Now().UTC(),
		"workflows": len(f.Registry.List()),
	})
}

func (f *Facade) listWorkflowsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"workflows": f.ListWorkflows()})
}

func (f *Facade) executionStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	snap, ok := f.ExecutionStatus(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "no such execution", "executionId": id})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

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

package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"axonflow/workflow/engine/dispatch"
)

// AnalyticsHandler backs the "analytics" service against a Cassandra event
// log, grounded on connectors/cassandra/connector.go's cluster setup.
type AnalyticsHandler struct {
	session *gocql.Session
}

// NewAnalyticsHandler dials a Cassandra cluster with QUORUM consistency and
// a 5s timeout, the connector's own defaults.
func NewAnalyticsHandler(hosts []string, keyspace string) (*AnalyticsHandler, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 2

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("handlers: create cassandra session: %w", err)
	}
	return &AnalyticsHandler{session: session}, nil
}

// Register wires recordEvent into disp under the "analytics" service.
func (h *AnalyticsHandler) Register(disp *dispatch.Registry) {
	disp.Register("analytics", "recordEvent", h.recordEvent)
}

func (h *AnalyticsHandler) recordEvent(ctx context.Context, input map[string]any) (map[string]any, error) {
	event, _ := input["event"].(string)
	if event == "" {
		event = "unspecified"
	}
	eventID := uuid.New().String()

	err := h.session.Query(
		`INSERT INTO events (id, event, recorded_at) VALUES (?, ?, ?)`,
		eventID, event, time.Now().UTC(),
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, fmt.Errorf("handlers: recordEvent: %w", err)
	}

	return map[string]any{"eventId": eventID, "event": event}, nil
}

// Close shuts down the Cassandra session.
func (h *AnalyticsHandler) Close() {
	h.session.Close()
}

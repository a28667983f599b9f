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
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/dispatch"
)

// Connection pool defaults mirror connectors/mysql/connector.go's
// DefaultMaxOpenConns/DefaultMaxIdleConns/DefaultConnMaxLifetime.
const (
	billingMaxOpenConns    = 25
	billingMaxIdleConns    = 5
	billingConnMaxLifetime = 5 * time.Minute
)

// BillingHandler backs the "billing" service against a MySQL ledger table.
type BillingHandler struct {
	db *sql.DB
}

// NewBillingHandler opens a pooled MySQL connection and configures it the
// way the teacher's MySQL connector does.
func NewBillingHandler(dsn string) (*BillingHandler, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("handlers: open mysql: %w", err)
	}
	db.SetMaxOpenConns(billingMaxOpenConns)
	db.SetMaxIdleConns(billingMaxIdleConns)
	db.SetConnMaxLifetime(billingConnMaxLifetime)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("handlers: ping mysql: %w", err)
	}
	return &BillingHandler{db: db}, nil
}

// NewBillingHandlerFromDB wraps an already-open *sql.DB, letting tests wire
// in a go-sqlmock connection instead of a real MySQL instance.
func NewBillingHandlerFromDB(db *sql.DB) *BillingHandler {
	return &BillingHandler{db: db}
}

// Register wires chargeCard into disp under the "billing" service.
func (h *BillingHandler) Register(disp *dispatch.Registry) {
	disp.Register("billing", "chargeCard", h.chargeCard)
}

func (h *BillingHandler) chargeCard(ctx context.Context, input map[string]any) (map[string]any, error) {
	cartID, _ := input["cartId"].(string)
	if cartID == "" {
		return nil, enginerr.New(enginerr.Validation, "MISSING_CART_ID", "chargeCard requires cartId")
	}

	result, err := h.db.ExecContext(ctx,
		`INSERT INTO charges (cart_id, status, created_at) VALUES (?, 'charged', NOW())`, cartID)
	if err != nil {
		return nil, enginerr.New(enginerr.Transient, "CHARGE_FAILED", err.Error())
	}
	id, _ := result.LastInsertId()

	return map[string]any{"cartId": cartID, "chargeId": id, "status": "charged"}, nil
}

// Close releases the pooled connection.
func (h *BillingHandler) Close() error {
	return h.db.Close()
}

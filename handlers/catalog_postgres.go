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

// Package handlers provides example ServiceDispatcher handlers for the
// built-in workflow templates, each grounded on one of the
// teacher's storage/transport connectors. They exist to give the engine's
// Dispatcher interface a concrete, compiling surface to invoke; a real
// deployment wires its own handlers for its own services.
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"axonflow/workflow/engine/dispatch"
)

// CatalogHandler backs the "catalog" service against a Postgres product
// table, grounded on connectors/registry/postgres_storage.go.
type CatalogHandler struct {
	db *sql.DB
}

// NewCatalogHandler opens a pooled connection to dsn and verifies it with a
// Ping, the same two-step pattern as PostgreSQLStorage.
func NewCatalogHandler(dsn string) (*CatalogHandler, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("handlers: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("handlers: ping postgres: %w", err)
	}
	return &CatalogHandler{db: db}, nil
}

// NewCatalogHandlerFromDB wraps an already-open *sql.DB, letting tests wire
// in a go-sqlmock connection instead of a real Postgres instance.
func NewCatalogHandlerFromDB(db *sql.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// Register wires lookupProduct into disp under the "catalog" service.
func (h *CatalogHandler) Register(disp *dispatch.Registry) {
	disp.Register("catalog", "lookupProduct", h.lookupProduct)
}

func (h *CatalogHandler) lookupProduct(ctx context.Context, input map[string]any) (map[string]any, error) {
	productID, _ := input["productId"].(string)
	if productID == "" {
		return map[string]any{"found": false}, nil
	}

	var name string
	var priceCents int64
	row := h.db.QueryRowContext(ctx,
		`SELECT name, price_cents FROM products WHERE id = $1`, productID)
	if err := row.Scan(&name, &priceCents); err != nil {
		if err == sql.ErrNoRows {
			return map[string]any{"found": false, "productId": productID}, nil
		}
		return nil, fmt.Errorf("handlers: lookupProduct: %w", err)
	}

	return map[string]any{
		"found":      true,
		"productId":  productID,
		"name":       name,
		"priceCents": priceCents,
	}, nil
}

// Close releases the pooled connection.
func (h *CatalogHandler) Close() error {
	return h.db.Close()
}

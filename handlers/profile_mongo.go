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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"axonflow/workflow/engine/dispatch"
)

// Pool defaults mirror connectors/mongodb/connector.go's
// DefaultMaxPoolSize/DefaultMinPoolSize/DefaultConnectTimeout.
const (
	profileMaxPoolSize     = 100
	profileMinPoolSize     = 10
	profileConnectTimeout  = 10 * time.Second
)

// ProfileHandler backs the "profile" service against a MongoDB user
// profile collection.
type ProfileHandler struct {
	collection *mongo.Collection
}

// NewProfileHandler connects to uri and binds to dbName.profiles.
func NewProfileHandler(ctx context.Context, uri, dbName string) (*ProfileHandler, error) {
	connectCtx, cancel := context.WithTimeout(ctx, profileConnectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri).
		SetMaxPoolSize(profileMaxPoolSize).
		SetMinPoolSize(profileMinPoolSize)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("handlers: connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("handlers: ping mongo: %w", err)
	}

	return &ProfileHandler{collection: client.Database(dbName).Collection("profiles")}, nil
}

// Register wires fetchUserProfile into disp under the "profile" service.
func (h *ProfileHandler) Register(disp *dispatch.Registry) {
	disp.Register("profile", "fetchUserProfile", h.fetchUserProfile)
}

func (h *ProfileHandler) fetchUserProfile(ctx context.Context, input map[string]any) (map[string]any, error) {
	userID, _ := input["userId"].(string)
	if userID == "" {
		return map[string]any{"found": false}, nil
	}

	var doc bson.M
	err := h.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return map[string]any{"found": false, "userId": userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("handlers: fetchUserProfile: %w", err)
	}

	doc["found"] = true
	return doc, nil
}

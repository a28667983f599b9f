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

// Package cache defines the Cache abstraction the Step Executor consults
// for memoizable results, plus an in-memory reference implementation and a
// Redis-backed production implementation. The engine treats cache values as
// opaque; it does no expiration bookkeeping of its own.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache is the interface the engine consumes. Get errors are treated as
// misses by the caller; Put is always best-effort from the engine's point of
// view (a failed Put logs a warning but does not fail the step).
type Cache interface {
	Get(ctx context.Context, key string) (value any, hit bool, err error)
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Key builds the canonical step cache key:
// "<keyPrefix>:<stepId>:<userIdOrAnonymous>:<workflowId>".
func Key(keyPrefix, stepID, userID, workflowID string) string {
	if userID == "" {
		userID = "anonymous"
	}
	if keyPrefix == "" {
		keyPrefix = "step"
	}
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, stepID, userID, workflowID)
}

type entry struct {
	value     any
	expiresAt time.Time
}

// InMemory is a process-local Cache with TTL expiry, used as the default in
// tests and for single-process deployments without Redis configured.
type InMemory struct {
	mu      sync.Mutex
	entries map[string]entry
	// tags maps a tag to the set of keys invalidation should remove.
	tags map[string]map[string]struct{}
}

// NewInMemory creates an empty in-memory cache.
func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]entry),
		tags:    make(map[string]map[string]struct{}),
	}
}

func (c *InMemory) Get(_ context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *InMemory) Put(_ context.Context, key string, value any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.entries[key] = entry{value: value, expiresAt: exp}
	return nil
}

// PutTagged additionally associates key with tags for later bulk
// invalidation via InvalidateTag — the optional tag-based invalidation hook
// the cache component reserves.
func (c *InMemory) PutTagged(ctx context.Context, key string, value any, ttl time.Duration, tags ...string) error {
	if err := c.Put(ctx, key, value, ttl); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		set, ok := c.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			c.tags[tag] = set
		}
		set[key] = struct{}{}
	}
	return nil
}

// InvalidateTag removes every key ever tagged with tag.
func (c *InMemory) InvalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		delete(c.entries, key)
	}
	delete(c.tags, tag)
}

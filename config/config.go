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

// Package config resolves ambient configuration for the example dispatcher
// handlers and the engine's own Redis cache: environment variables first,
// falling back to AWS Secrets Manager when AWS_SECRETS_ENABLED=true. This
// mirrors connectors/config/secrets_manager.go's TTL-cached secrets client,
// generalized into a single small Resolver instead of the full multi-tenant
// connector-credential store the teacher builds around it.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// DefaultSecretCacheTTL matches the teacher's secrets manager cache window.
const DefaultSecretCacheTTL = 5 * time.Minute

// SecretsBackend fetches a named secret as a flat string map; a secret
// value is expected to be a JSON object or a single opaque value under
// the "value" key.
type SecretsBackend interface {
	GetSecret(ctx context.Context, id string) (map[string]string, error)
}

// Resolver resolves configuration values, preferring the environment and
// only consulting the secrets backend when AWS_SECRETS_ENABLED=true and the
// environment variable is unset.
type Resolver struct {
	secrets SecretsBackend
	enabled bool
}

// New builds a Resolver. secrets may be nil; it is only consulted when
// AWS_SECRETS_ENABLED=true and a lookup actually falls through to it.
func New(secrets SecretsBackend) *Resolver {
	return &Resolver{
		secrets: secrets,
		enabled: os.Getenv("AWS_SECRETS_ENABLED") == "true",
	}
}

// String resolves a config value by environment variable name, falling
// back to secretID/secretKey in the secrets backend, then to def.
func (r *Resolver) String(ctx context.Context, envVar, secretID, secretKey, def string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	if r.enabled && r.secrets != nil && secretID != "" {
		values, err := r.secrets.GetSecret(ctx, secretID)
		if err != nil {
			return "", fmt.Errorf("config: resolve %s: %w", envVar, err)
		}
		if v, ok := values[secretKey]; ok {
			return v, nil
		}
	}
	return def, nil
}

// AWSSecretsManager implements SecretsBackend over the real AWS Secrets
// Manager API, with an in-process TTL cache (connectors/config/secrets_manager.go).
type AWSSecretsManager struct {
	client *secretsmanager.Client
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]secretCacheEntry
}

type secretCacheEntry struct {
	value     map[string]string
	expiresAt time.Time
}

// NewAWSSecretsManager loads the default AWS config (region, credentials
// chain) and builds a Secrets Manager client.
func NewAWSSecretsManager(ctx context.Context, region string, ttl time.Duration) (*AWSSecretsManager, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("config: load AWS config: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultSecretCacheTTL
	}
	return &AWSSecretsManager{
		client: secretsmanager.NewFromConfig(cfg),
		ttl:    ttl,
		cache:  make(map[string]secretCacheEntry),
	}, nil
}

// GetSecret fetches and parses a secret, preferring the TTL cache.
func (s *AWSSecretsManager) GetSecret(ctx context.Context, id string) (map[string]string, error) {
	s.mu.RLock()
	entry, ok := s.cache[id]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("config: get secret %s: %w", id, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("config: secret %s has no string value", id)
	}

	values := make(map[string]string)
	if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
		values = map[string]string{"value": *out.SecretString}
	}

	s.mu.Lock()
	s.cache[id] = secretCacheEntry{value: values, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return values, nil
}

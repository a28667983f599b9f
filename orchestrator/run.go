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
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"axonflow/workflow/config"
	"axonflow/workflow/engine/cache"
	"axonflow/workflow/engine/dispatch"
	"axonflow/workflow/engine/flags"
	"axonflow/workflow/engine/registry"
	"axonflow/workflow/handlers"
	"axonflow/workflow/shared/logger"
)

// Run is the exported entry point for the workflow orchestrator service.
// It builds the Registry, dispatch targets and cache from environment
// configuration, seeds the built-in workflow templates, wires a Façade and
// serves its HTTP status surface. The function blocks until the server is
// shut down.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8081)
//   - AWS_SECRETS_ENABLED, AWS_SECRETS_REGION: when "true", every DSN and
//     credential below falls back to AWS Secrets Manager if its environment
//     variable is unset
//   - REDIS_ADDR: Redis address (secret "axonflow/redis" key "addr" as
//     fallback); when unresolved the Façade runs with an in-process cache
//     instead
//   - REDIS_PASSWORD: Redis auth (secret "axonflow/redis" key "password")
//   - REDIS_DB: Redis logical database index (default: 0)
//   - CATALOG_DSN: Postgres DSN enabling the "catalog" service (secret
//     "axonflow/catalog" key "dsn")
//   - BILLING_DSN: MySQL DSN enabling the "billing" service (secret
//     "axonflow/billing" key "dsn")
//   - PROFILE_MONGO_URI: Mongo URI enabling the "profile" service (secret
//     "axonflow/profile" key "uri"); PROFILE_MONGO_DB selects the database
//   - ANALYTICS_CASSANDRA_HOSTS: comma separated Cassandra hosts enabling the
//     "analytics" service (secret "axonflow/analytics" key "hosts");
//     ANALYTICS_CASSANDRA_KEYSPACE selects the keyspace
//   - BEDROCK_REGION, BEDROCK_DEFAULT_MODEL: enables the "ai-bedrock" service
//   - ASSETS_AWS_S3, ASSETS_GCS, ASSETS_AZURE_ACCOUNT_URL: independently
//     enable the matching "assets" backend
//   - ENABLED_FLAGS: comma-separated list of feature flag keys considered
//     enabled by the static flag evaluator
func Run() {
	log.Println("starting workflow orchestrator")
	ctx := context.Background()
	log4 := logger.New("orchestrator")

	reg := registry.New(log4)
	if err := reg.SeedBuiltins(); err != nil {
		log.Fatalf("orchestrator: seed builtin workflows: %v", err)
	}

	resolver := newConfigResolver(ctx)

	disp := dispatch.NewRegistry()
	registerHandlers(ctx, resolver, disp)

	c := newCache(ctx, resolver)
	flagEval := flags.NewStatic(parseEnabledFlags(os.Getenv("ENABLED_FLAGS")))

	f := New(reg, disp, c, nil, flagEval, log4)

	port := getEnv("PORT", "8081")
	log.Printf("workflow orchestrator listening on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, f.NewRouter()))
}

// newConfigResolver builds the Resolver every DSN and credential below is
// read through. It only builds the AWS Secrets Manager backend when
// AWS_SECRETS_ENABLED=true; otherwise the Resolver falls through to its
// default (usually empty, meaning "this handler is disabled") same as a
// bare os.Getenv would.
func newConfigResolver(ctx context.Context) *config.Resolver {
	if os.Getenv("AWS_SECRETS_ENABLED") != "true" {
		return config.New(nil)
	}
	secrets, err := config.NewAWSSecretsManager(ctx, os.Getenv("AWS_SECRETS_REGION"), 0)
	if err != nil {
		log.Printf("orchestrator: AWS Secrets Manager unavailable, falling back to environment only: %v", err)
		return config.New(nil)
	}
	return config.New(secrets)
}

func registerHandlers(ctx context.Context, resolver *config.Resolver, disp *dispatch.Registry) {
	if dsn, err := resolver.String(ctx, "CATALOG_DSN", "axonflow/catalog", "dsn", ""); err != nil {
		log.Printf("orchestrator: resolve CATALOG_DSN: %v", err)
	} else if dsn != "" {
		h, err := handlers.NewCatalogHandler(dsn)
		if err != nil {
			log.Printf("orchestrator: catalog handler disabled: %v", err)
		} else {
			h.Register(disp)
		}
	}

	if dsn, err := resolver.String(ctx, "BILLING_DSN", "axonflow/billing", "dsn", ""); err != nil {
		log.Printf("orchestrator: resolve BILLING_DSN: %v", err)
	} else if dsn != "" {
		h, err := handlers.NewBillingHandler(dsn)
		if err != nil {
			log.Printf("orchestrator: billing handler disabled: %v", err)
		} else {
			h.Register(disp)
		}
	}

	if uri, err := resolver.String(ctx, "PROFILE_MONGO_URI", "axonflow/profile", "uri", ""); err != nil {
		log.Printf("orchestrator: resolve PROFILE_MONGO_URI: %v", err)
	} else if uri != "" {
		h, err := handlers.NewProfileHandler(ctx, uri, getEnv("PROFILE_MONGO_DB", "axonflow"))
		if err != nil {
			log.Printf("orchestrator: profile handler disabled: %v", err)
		} else {
			h.Register(disp)
		}
	}

	if hosts, err := resolver.String(ctx, "ANALYTICS_CASSANDRA_HOSTS", "axonflow/analytics", "hosts", ""); err != nil {
		log.Printf("orchestrator: resolve ANALYTICS_CASSANDRA_HOSTS: %v", err)
	} else if hosts != "" {
		h, err := handlers.NewAnalyticsHandler(strings.Split(hosts, ","), getEnv("ANALYTICS_CASSANDRA_KEYSPACE", "axonflow"))
		if err != nil {
			log.Printf("orchestrator: analytics handler disabled: %v", err)
		} else {
			h.Register(disp)
		}
	}

	if region := os.Getenv("BEDROCK_REGION"); region != "" {
		h, err := handlers.NewBedrockHandler(ctx, region, getEnv("BEDROCK_DEFAULT_MODEL", "anthropic.claude-v2"))
		if err != nil {
			log.Printf("orchestrator: bedrock handler disabled: %v", err)
		} else {
			h.Register(disp)
		}
	}

	var assetOpts []handlers.AssetsHandlerOption
	if os.Getenv("ASSETS_AWS_S3") == "true" {
		opt, err := handlers.WithS3(ctx)
		if err != nil {
			log.Printf("orchestrator: assets S3 backend disabled: %v", err)
		} else {
			assetOpts = append(assetOpts, opt)
		}
	}
	if os.Getenv("ASSETS_GCS") == "true" {
		opt, err := handlers.WithGCS(ctx)
		if err != nil {
			log.Printf("orchestrator: assets GCS backend disabled: %v", err)
		} else {
			assetOpts = append(assetOpts, opt)
		}
	}
	if accountURL := os.Getenv("ASSETS_AZURE_ACCOUNT_URL"); accountURL != "" {
		opt, err := handlers.WithAzure(accountURL)
		if err != nil {
			log.Printf("orchestrator: assets Azure backend disabled: %v", err)
		} else {
			assetOpts = append(assetOpts, opt)
		}
	}
	if len(assetOpts) > 0 {
		handlers.NewAssetsHandler(assetOpts...).Register(disp)
	}
}

func newCache(ctx context.Context, resolver *config.Resolver) cache.Cache {
	addr, err := resolver.String(ctx, "REDIS_ADDR", "axonflow/redis", "addr", "")
	if err != nil {
		log.Printf("orchestrator: resolve REDIS_ADDR: %v, using in-process cache", err)
		return cache.NewInMemory()
	}
	if addr == "" {
		log.Println("orchestrator: REDIS_ADDR unset, using in-process cache")
		return cache.NewInMemory()
	}
	password, err := resolver.String(ctx, "REDIS_PASSWORD", "axonflow/redis", "password", "")
	if err != nil {
		log.Printf("orchestrator: resolve REDIS_PASSWORD: %v, using in-process cache", err)
		return cache.NewInMemory()
	}
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		log.Printf("orchestrator: invalid REDIS_DB, defaulting to 0: %v", err)
		db = 0
	}
	r, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: addr, Password: password, DB: db})
	if err != nil {
		log.Printf("orchestrator: redis unavailable, falling back to in-process cache: %v", err)
		return cache.NewInMemory()
	}
	return r
}

func parseEnabledFlags(csv string) map[string]bool {
	flags := make(map[string]bool)
	for _, key := range strings.Split(csv, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			flags[key] = true
		}
	}
	return flags
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

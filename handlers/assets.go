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
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"cloud.google.com/go/storage"

	"axonflow/workflow/engine/dispatch"
)

// AssetsHandler backs the "assets" service across three object-store
// backends, one action per cloud, each grounded on the matching teacher
// connector's PutObject path (connectors/s3, connectors/gcs,
// connectors/azureblob).
type AssetsHandler struct {
	s3Client    *s3.Client
	gcsClient   *storage.Client
	azureClient *azblob.Client
}

// AssetsHandlerOption configures which backends NewAssetsHandler wires;
// a deployment only pays for the SDKs it actually configures.
type AssetsHandlerOption func(*AssetsHandler)

// WithS3 enables putObjectS3 using an AWS config loaded from the default
// credential chain.
func WithS3(ctx context.Context) (AssetsHandlerOption, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("handlers: load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return func(h *AssetsHandler) { h.s3Client = client }, nil
}

// WithGCS enables putObjectGCS using application-default credentials.
func WithGCS(ctx context.Context) (AssetsHandlerOption, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("handlers: new GCS client: %w", err)
	}
	return func(h *AssetsHandler) { h.gcsClient = client }, nil
}

// WithAzure enables putObjectAzure against accountURL using the default
// Azure credential chain.
func WithAzure(accountURL string) (AssetsHandlerOption, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("handlers: azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("handlers: new azure client: %w", err)
	}
	return func(h *AssetsHandler) { h.azureClient = client }, nil
}

// NewAssetsHandler builds an AssetsHandler with zero or more backends
// enabled.
func NewAssetsHandler(opts ...AssetsHandlerOption) *AssetsHandler {
	h := &AssetsHandler{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register wires whichever putObject* actions this handler has backends
// configured for.
func (h *AssetsHandler) Register(disp *dispatch.Registry) {
	if h.s3Client != nil {
		disp.Register("assets", "putObjectS3", h.putObjectS3)
	}
	if h.gcsClient != nil {
		disp.Register("assets", "putObjectGCS", h.putObjectGCS)
	}
	if h.azureClient != nil {
		disp.Register("assets", "putObjectAzure", h.putObjectAzure)
	}
}

func assetParams(input map[string]any) (bucket, key, content string) {
	bucket, _ = input["bucket"].(string)
	key, _ = input["key"].(string)
	content, _ = input["content"].(string)
	return
}

func (h *AssetsHandler) putObjectS3(ctx context.Context, input map[string]any) (map[string]any, error) {
	bucket, key, content := assetParams(input)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("handlers: putObjectS3 requires bucket and key")
	}
	out, err := h.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader([]byte(content)),
	})
	if err != nil {
		return nil, fmt.Errorf("handlers: putObjectS3: %w", err)
	}
	return map[string]any{"bucket": bucket, "key": key, "etag": strings.Trim(aws.ToString(out.ETag), `"`)}, nil
}

func (h *AssetsHandler) putObjectGCS(ctx context.Context, input map[string]any) (map[string]any, error) {
	bucket, key, content := assetParams(input)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("handlers: putObjectGCS requires bucket and key")
	}
	w := h.gcsClient.Bucket(bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, strings.NewReader(content)); err != nil {
		w.Close()
		return nil, fmt.Errorf("handlers: putObjectGCS write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("handlers: putObjectGCS close: %w", err)
	}
	return map[string]any{"bucket": bucket, "key": key}, nil
}

func (h *AssetsHandler) putObjectAzure(ctx context.Context, input map[string]any) (map[string]any, error) {
	bucket, key, content := assetParams(input)
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("handlers: putObjectAzure requires bucket (container) and key")
	}
	_, err := h.azureClient.UploadBuffer(ctx, bucket, key, []byte(content), nil)
	if err != nil {
		return nil, fmt.Errorf("handlers: putObjectAzure: %w", err)
	}
	return map[string]any{"bucket": bucket, "key": key}, nil
}

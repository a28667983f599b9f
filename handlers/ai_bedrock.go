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
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"axonflow/workflow/engine/enginerr"
	"axonflow/workflow/engine/dispatch"
)

// BedrockHandler backs the "ai-bedrock" service, standing in for the
// opaque downstream AI services the core engine treats as just another
// dispatch target. Grounded on orchestrator/llm_router.go's BedrockProvider.
type BedrockHandler struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// NewBedrockHandler loads the default AWS config and binds a Bedrock
// runtime client for defaultModel.
func NewBedrockHandler(ctx context.Context, region, defaultModel string) (*BedrockHandler, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("handlers: load AWS config: %w", err)
	}
	return &BedrockHandler{
		client:       bedrockruntime.NewFromConfig(cfg),
		defaultModel: defaultModel,
	}, nil
}

// Register wires invokeModel into disp under the "ai-bedrock" service.
func (h *BedrockHandler) Register(disp *dispatch.Registry) {
	disp.Register("ai-bedrock", "invokeModel", h.invokeModel)
}

type bedrockRequestBody struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens_to_sample"`
}

func (h *BedrockHandler) invokeModel(ctx context.Context, input map[string]any) (map[string]any, error) {
	model, _ := input["model"].(string)
	if model == "" {
		model = h.defaultModel
	}
	prompt, _ := input["prompt"].(string)
	if prompt == "" {
		prompt = fmt.Sprintf("%v", input)
	}

	body, err := json.Marshal(bedrockRequestBody{Prompt: prompt, MaxTokens: 512})
	if err != nil {
		return nil, enginerr.New(enginerr.Internal, "BEDROCK_ENCODE", err.Error())
	}

	out, err := h.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, enginerr.New(enginerr.Transient, "BEDROCK_CALL_FAILED", err.Error())
	}

	var parsed map[string]any
	if err := json.Unmarshal(out.Body, &parsed); err != nil {
		return map[string]any{"model": model, "raw": string(out.Body)}, nil
	}
	parsed["model"] = model
	return parsed, nil
}

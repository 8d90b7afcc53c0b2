package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockClient implements Client on the AWS Bedrock runtime InvokeModel
// API for Anthropic Claude models. Credentials come from the standard AWS
// chain (env, shared config, instance role); Bedrock signs with SigV4, so
// no API key is configured here.
type BedrockClient struct {
	client *bedrockruntime.Client
	model  string
	region string
}

// NewBedrock creates a Bedrock-backed client. region defaults to us-east-1.
func NewBedrock(ctx context.Context, model, region string) (*BedrockClient, error) {
	if region == "" {
		region = "us-east-1"
	}
	if !strings.HasPrefix(model, "anthropic.") {
		return nil, fmt.Errorf("unsupported bedrock model %q: anthropic.* models only", model)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &BedrockClient{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  model,
		region: region,
	}, nil
}

// Name returns the provider name.
func (c *BedrockClient) Name() string { return "bedrock" }

// Model returns the configured model identifier.
func (c *BedrockClient) Model() string { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
	Temperature      float64            `json:"temperature"`
	System           string             `json:"system,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Generate invokes the configured Claude model and returns its text.
func (c *BedrockClient) Generate(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        maxTokens,
		Messages:         []anthropicMessage{{Role: "user", Content: req.User}},
		Temperature:      req.Temperature,
		System:           req.System,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal bedrock request: %w", err)
	}

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(output.Body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal bedrock response: %w", err)
	}

	var text strings.Builder
	for _, part := range parsed.Content {
		if part.Type == "text" {
			text.WriteString(part.Text)
		}
	}

	return &Response{
		Text:         strings.TrimSpace(text.String()),
		InputTokens:  parsed.Usage.InputTokens,
		OutputTokens: parsed.Usage.OutputTokens,
	}, nil
}

package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient implements Client using the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &AuthError{Provider: ProviderOpenAI, Message: "API key is required"}
	}

	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		config: config,
	}, nil
}

// Complete generates free-form text for the prompt
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, false)
}

// CompleteJSON generates a response constrained to a JSON object
func (c *OpenAIClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(c.config.Temperature)),
	}
	if jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Provider: ProviderOpenAI, Message: "empty choices"}
	}

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *OpenAIClient) Close() error {
	return nil
}

// classifyOpenAIError maps transport errors onto the gateway error taxonomy
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: ProviderOpenAI, Cause: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Provider: ProviderOpenAI, Message: "credential rejected", Cause: err}
		case http.StatusTooManyRequests:
			return &RateLimitError{Provider: ProviderOpenAI, Cause: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &TimeoutError{Provider: ProviderOpenAI, Cause: err}
		}
	}

	return err
}

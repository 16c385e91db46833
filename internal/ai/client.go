package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	ErrEmptyCompletion = errors.New("model returned no choices")
	ErrEmptyInput      = errors.New("embedding input is empty")
)

// ChatConfig configures the chat completion endpoint. Any OpenAI-compatible
// server works (OpenAI, Groq, Ollama, vLLM).
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Client wraps the openai-go SDK for single-prompt completions and embeddings.
type Client struct {
	sdk         openai.Client
	model       string
	temperature float64
}

func NewClient(cfg ChatConfig) *Client {
	return &Client{
		sdk:         openai.NewClient(requestOptions(cfg.BaseURL, cfg.APIKey, cfg.Timeout, cfg.MaxRetries)...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.sdk.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Model() string {
	return c.model
}

// EmbeddingConfig configures the embeddings endpoint.
type EmbeddingConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type EmbeddingClient struct {
	sdk   openai.Client
	model string
}

func NewEmbeddingClient(cfg EmbeddingConfig) *EmbeddingClient {
	return &EmbeddingClient{
		sdk:   openai.NewClient(requestOptions(cfg.BaseURL, cfg.APIKey, cfg.Timeout, cfg.MaxRetries)...),
		model: cfg.Model,
	}
}

// Embed returns one vector per input, in input order.
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	inputs := make([]string, len(texts))
	for i, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			// the API rejects empty strings
			text = " "
		}
		inputs[i] = text
	}

	resp, err := c.sdk.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, item := range resp.Data {
		idx := int(item.Index)
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		out[idx] = vec
	}
	return out, nil
}

func (c *EmbeddingClient) Model() string {
	return c.model
}

func requestOptions(baseURL, apiKey string, timeout time.Duration, maxRetries int) []option.RequestOption {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	if maxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(maxRetries))
	}
	return opts
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/frosty865/VOFC-Engine-sub003/internal/errs"
	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

const (
	defaultTimeout     = 60 * time.Second
	healthCheckTimeout = 3 * time.Second
)

// OllamaClient talks to an Ollama server through its OpenAI-compatible /v1
// endpoint. Ollama ignores the API key but the client library requires one.
type OllamaClient struct {
	client     openai.Client
	httpClient *http.Client
	baseURL    string
	model      string
	timeout    time.Duration
}

func NewOllamaClient(baseURL string, model string, timeout time.Duration) (*OllamaClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("ollama base url is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("ollama model is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &OllamaClient{
		client: openai.NewClient(
			option.WithBaseURL(trimmed+"/v1"),
			option.WithAPIKey("ollama"),
		),
		httpClient: &http.Client{Timeout: healthCheckTimeout},
		baseURL:    trimmed,
		model:      model,
		timeout:    timeout,
	}, nil
}

func (c *OllamaClient) Chat(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if len(messages) == 0 {
		return "", errors.New("at least one message is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errs.Wrapf(err, "ollama chat completion (model %s)", c.model)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ollama returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping hits the native tag listing, which answers even while a model loads.
func (c *OllamaClient) Ping(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return errs.Wrap(err, "build ollama health request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.Wrap(err, "ollama unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *OllamaClient) BaseURL() string {
	return c.baseURL
}

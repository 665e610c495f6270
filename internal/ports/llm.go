package ports

import "context"

type ChatMessage struct {
	Role    string
	Content string
}

// ChatClient is the inference backend used by enrichment. The production
// adapter talks to Ollama; tests stub it.
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	Ping(ctx context.Context) error
	BaseURL() string
}

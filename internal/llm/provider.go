package llm

import "context"

// Role tags a message in a prompt
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a prompt
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains chat-completion parameters
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	TopP        float64
	N           int
}

// Client submits chat completions to an OpenAI-compatible endpoint
type Client interface {
	// Complete returns the text of the first choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Factory produces a completion client. Implementations are chosen once at
// startup; Client may be called for every request.
type Factory interface {
	Client(ctx context.Context) (Client, error)
}

// FactoryFunc adapts a function to Factory
type FactoryFunc func(ctx context.Context) (Client, error)

func (f FactoryFunc) Client(ctx context.Context) (Client, error) {
	return f(ctx)
}

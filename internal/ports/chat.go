package ports

import "context"

// ChatModel is the generative model used by the assistant.
type ChatModel interface {
	// Open a conversation primed with the system prompt.
	StartConversation(ctx context.Context, systemPrompt string) (Conversation, error)
	// One-shot generation for structured output.
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Conversation keeps the model-side history of one chat.
type Conversation interface {
	SendMessage(ctx context.Context, text string) (string, error)
}

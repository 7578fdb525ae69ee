package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-khonkaen-travel-planner/config"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/ports"
	"github.com/FACorreiaa/go-khonkaen-travel-planner/internal/types"
)

const (
	defaultModel = "gemini-2.0-flash"
	roleUser     = "user"
	roleModel    = "model"
)

var (
	_ ports.ChatModel    = (*AIClient)(nil)
	_ ports.Conversation = (*ChatSession)(nil)
)

// ErrMissingAPIKey is returned when the Gemini key is not configured.
var ErrMissingAPIKey = errors.New("GOOGLE_GEMINI_API_KEY is not set")

type AIClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
}

type ChatSession struct {
	chat *genai.Chat
}

func NewAIClient(ctx context.Context, cfg config.Gemini, logger *slog.Logger) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if cfg.APIKey == "" {
		span.SetStatus(codes.Error, "API key not set")
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	genCfg := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(cfg.Temperature)
	}

	span.SetStatus(codes.Ok, "AI client created successfully")
	return &AIClient{
		client: client,
		model:  model,
		config: genCfg,
		logger: logger,
	}, nil
}

// GenerateContent runs a single prompt without history.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
		attribute.String("model", ai.model),
	))
	defer span.End()

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), ai.config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate content")
		return "", fmt.Errorf("generate content: %w: %v", types.ErrProviderFailure, err)
	}

	responseText := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(responseText)))
	span.SetStatus(codes.Ok, "Content generated successfully")
	return responseText, nil
}

// StartConversation opens a chat whose history is primed with the system
// prompt as a user turn followed by the model's acknowledgement.
func (ai *AIClient) StartConversation(ctx context.Context, systemPrompt string) (ports.Conversation, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "StartConversation", trace.WithAttributes(
		attribute.String("model", ai.model),
	))
	defer span.End()

	history := []*genai.Content{
		{Role: roleUser, Parts: []*genai.Part{{Text: systemPrompt}}},
		{Role: roleModel, Parts: []*genai.Part{{Text: SystemPromptAck}}},
	}
	chat, err := ai.client.Chats.Create(ctx, ai.model, ai.config, history)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create chat session")
		return nil, fmt.Errorf("create chat: %w: %v", types.ErrProviderFailure, err)
	}

	span.SetStatus(codes.Ok, "Chat session created successfully")
	return &ChatSession{chat: chat}, nil
}

func (cs *ChatSession) SendMessage(ctx context.Context, message string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.Int("message.length", len(message)),
	))
	defer span.End()

	result, err := cs.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return "", fmt.Errorf("send message: %w: %v", types.ErrProviderFailure, err)
	}

	responseText := result.Text()
	span.SetAttributes(attribute.Int("response.length", len(responseText)))
	span.SetStatus(codes.Ok, "Message sent successfully")
	return responseText, nil
}

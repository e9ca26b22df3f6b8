package completion

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/promptly-app/promptly/backend/internal/config"
)

const arkSystemPrompt = "You are Promptly, a friendly general-purpose assistant. Answer the user's message directly and concisely."

// ArkClient runs completions through an eino chain backed by an Ark model.
type ArkClient struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArk compiles the prompt template and chat model into a runnable chain.
func NewArk(ctx context.Context, cfg config.ArkConfig) (*ArkClient, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkClient{chain: runnable}, nil
}

// Complete 转发用户消息并返回模型回复。
func (c *ArkClient) Complete(ctx context.Context, promptText string) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{
		"system": arkSystemPrompt,
		"query":  promptText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	if response.Content == "" {
		return Fallback, nil
	}

	log.Printf("[ai] ark completion length=%d", len(response.Content))
	return response.Content, nil
}

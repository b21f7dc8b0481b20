package agents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentlance/agentlance/pkg/models"
)

// CompletionClient is the text completion backend shared by the
// roster. Every provider sends a system prompt plus one user message
// and consumes a single text response.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// AnthropicClient backs completions with the Anthropic Messages API.
type AnthropicClient struct {
	inner anthropic.Client
	model anthropic.Model
}

// AnthropicConfig contains configuration for creating an AnthropicClient.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY env var.
	APIKey string
	// Model is the model to use. If empty, a default is chosen.
	Model string
}

// NewAnthropicClient creates a completion client against the Anthropic API.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaude3_5Haiku20241022
	}

	return &AnthropicClient{
		inner: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() anthropic.Model {
	return c.model
}

// Complete sends one user message under the system prompt and returns
// the concatenated text blocks of the response.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("completion returned no text content")
	}
	return out, nil
}

// buildUserMessage assembles the user message every specialist sends:
// the subtask, then any inputs received from completed dependencies.
func buildUserMessage(subtask *models.Subtask, execCtx Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n\nDescription: %s", subtask.Title, subtask.Description)
	if execCtx.InputText != "" {
		fmt.Fprintf(&sb, "\n\nReference material:\n%s", execCtx.InputText)
	}
	if execCtx.Requirements != "" {
		fmt.Fprintf(&sb, "\n\nAdditional requirements: %s", execCtx.Requirements)
	}
	return sb.String()
}

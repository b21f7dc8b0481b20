package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

const writerSystemPrompt = `You are a professional content writer working on the AgentLance marketplace.
You specialize in creating high-quality blog posts, marketing copy, product descriptions, and scripts.
Always deliver polished, engaging content. Format output in Markdown when appropriate.
If given context from other agents (e.g., code documentation to write about), incorporate it naturally.`

// Writer produces blog posts, copy, and scripts.
type Writer struct {
	client CompletionClient
}

// NewWriter creates a writing provider backed by the given client.
func NewWriter(client CompletionClient) *Writer {
	return &Writer{client: client}
}

func (w *Writer) Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error) {
	content, err := w.client.Complete(ctx, writerSystemPrompt, buildUserMessage(subtask, execCtx))
	if err != nil {
		return nil, err
	}
	return &models.Deliverable{
		Kind:    models.DeliverableText,
		Content: content,
		Metadata: map[string]string{
			"agent":      "Writer",
			"subtask_id": subtask.ID,
		},
	}, nil
}

func (w *Writer) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillWriting
}

func (w *Writer) Estimate(subtask *models.Subtask) int { return 15 }

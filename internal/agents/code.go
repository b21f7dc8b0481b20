package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

const codeSystemPrompt = `You are an expert software developer working on the AgentLance marketplace.
You write clean, well-documented, production-quality code.
When generating code, include comments explaining key decisions.
When reviewing code, provide specific, actionable feedback.
Format all code output in proper markdown code blocks with language identifiers.`

// CodeDeveloper generates and reviews code.
type CodeDeveloper struct {
	client CompletionClient
}

// NewCodeDeveloper creates a code provider backed by the given client.
func NewCodeDeveloper(client CompletionClient) *CodeDeveloper {
	return &CodeDeveloper{client: client}
}

func (c *CodeDeveloper) Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error) {
	content, err := c.client.Complete(ctx, codeSystemPrompt, buildUserMessage(subtask, execCtx))
	if err != nil {
		return nil, err
	}
	return &models.Deliverable{
		Kind:    models.DeliverableCode,
		Content: content,
		Metadata: map[string]string{
			"agent":      "Code Developer",
			"subtask_id": subtask.ID,
		},
	}, nil
}

func (c *CodeDeveloper) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillCode
}

func (c *CodeDeveloper) Estimate(subtask *models.Subtask) int { return 20 }

package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

const decomposeSystemPrompt = `You are an expert project manager and task decomposer for the AgentLance marketplace.
You analyze complex job requests and break them into concrete, actionable subtasks.

Available skills for agents:
- "writing": Blog posts, copy, scripts, documentation
- "voice": Voiceovers, narration, audio content
- "image": Logos, banners, illustrations, visual content
- "code": Code generation, review, debugging

Rules:
1. Each subtask must require exactly ONE skill
2. Identify dependencies between subtasks (e.g., voice narration depends on written script)
3. Maximize parallelism — only add dependencies where output from one task is input to another
4. Be specific in subtask descriptions so agents know exactly what to produce
5. Dependencies are specified as zero-based indices into the subtasks list

Return a JSON object with this exact structure:
{
  "reasoning": "Brief explanation of decomposition strategy",
  "subtasks": [
    {"title": "...", "description": "...", "required_skill": "writing|voice|image|code", "dependencies": []},
    ...
  ],
  "estimated_total_minutes": 5
}
Return ONLY the JSON object, no surrounding prose or code fences.`

// Orchestrator decomposes multi-skill jobs. Its deliverable is the raw
// structured plan; the router parses and validates it.
type Orchestrator struct {
	client CompletionClient
}

// NewOrchestrator creates an orchestration provider backed by the
// given client.
func NewOrchestrator(client CompletionClient) *Orchestrator {
	return &Orchestrator{client: client}
}

func (o *Orchestrator) Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error) {
	content, err := o.client.Complete(ctx, decomposeSystemPrompt, subtask.Description)
	if err != nil {
		return nil, err
	}
	return &models.Deliverable{
		Kind:    models.DeliverableText,
		Content: content,
		Metadata: map[string]string{
			"agent":      "Orchestrator",
			"subtask_id": subtask.ID,
		},
	}, nil
}

func (o *Orchestrator) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillOrchestration
}

func (o *Orchestrator) Estimate(subtask *models.Subtask) int { return 10 }

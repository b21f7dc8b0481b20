package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/agentlance/agentlance/pkg/models"
)

// ScriptedClient is an offline CompletionClient. Queued responses are
// returned in order; once the queue is empty the generate function
// produces a response from the prompts. Used for demos without API
// credentials and for tests.
type ScriptedClient struct {
	mu       sync.Mutex
	queue    []string
	generate func(systemPrompt, userPrompt string) string
}

// NewScriptedClient creates a scripted client. A nil generate function
// falls back to echoing the user prompt.
func NewScriptedClient(generate func(systemPrompt, userPrompt string) string) *ScriptedClient {
	if generate == nil {
		generate = func(systemPrompt, userPrompt string) string {
			return fmt.Sprintf("[scripted] %s", userPrompt)
		}
	}
	return &ScriptedClient{generate: generate}
}

// Enqueue appends canned responses returned before the generate
// function is consulted.
func (c *ScriptedClient) Enqueue(responses ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, responses...)
}

// Complete returns the next queued response, or a generated one.
func (c *ScriptedClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		out := c.queue[0]
		c.queue = c.queue[1:]
		return out, nil
	}
	return c.generate(systemPrompt, userPrompt), nil
}

// ScriptedPlan returns a generate function that answers every
// decomposition request with a fixed single-subtask plan, so an
// offline orchestrator still produces a parseable result.
func ScriptedPlan(skill models.Skill) func(systemPrompt, userPrompt string) string {
	return func(systemPrompt, userPrompt string) string {
		plan := models.Decomposition{
			Reasoning: "offline plan: single subtask covering the whole job",
			Subtasks: []models.SubtaskSpec{
				{
					Title:         "Complete the job",
					Description:   userPrompt,
					RequiredSkill: skill,
				},
			},
			EstimatedTotalMinutes: 1,
		}
		data, err := json.Marshal(plan)
		if err != nil {
			return "{}"
		}
		return string(data)
	}
}

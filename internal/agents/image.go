package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

const promptEnhanceSystem = `You are an expert at writing prompts for AI image generation models.
Take the user's description and transform it into a detailed, vivid image generation prompt.
Include style, lighting, composition, and mood details.
Output ONLY the enhanced prompt, nothing else. Keep it under 200 words.`

// ImageCreator produces image generation prompts. No diffusion backend
// is wired; the deliverable carries the enhanced prompt a rendering
// service would consume.
type ImageCreator struct {
	client CompletionClient
}

// NewImageCreator creates an image provider backed by the given client.
func NewImageCreator(client CompletionClient) *ImageCreator {
	return &ImageCreator{client: client}
}

func (i *ImageCreator) Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error) {
	description := subtask.Description
	if execCtx.Requirements != "" {
		description += " " + execCtx.Requirements
	}

	enhanced, err := i.client.Complete(ctx, promptEnhanceSystem, description)
	if err != nil {
		return nil, err
	}
	return &models.Deliverable{
		Kind:    models.DeliverableImage,
		Content: enhanced,
		Metadata: map[string]string{
			"agent":           "Image Creator",
			"subtask_id":      subtask.ID,
			"enhanced_prompt": enhanced,
		},
	}, nil
}

func (i *ImageCreator) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillImage
}

func (i *ImageCreator) Estimate(subtask *models.Subtask) int { return 30 }

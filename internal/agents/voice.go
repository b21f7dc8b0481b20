package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

const scriptPolishPrompt = `You are a voice-over script editor. Take the following text and adapt it
for natural spoken narration. Keep it concise, conversational, and engaging.
Remove any markdown formatting, links, or visual-only elements.
Output ONLY the polished script text, nothing else.`

// VoiceArtist produces narration scripts polished for speech. No
// synthesis backend is wired; the deliverable carries the finished
// script and records it in metadata the way a rendered audio artifact
// would reference it.
type VoiceArtist struct {
	client CompletionClient
}

// NewVoiceArtist creates a voice provider backed by the given client.
func NewVoiceArtist(client CompletionClient) *VoiceArtist {
	return &VoiceArtist{client: client}
}

func (v *VoiceArtist) Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error) {
	// Narrate the handed-off input when present, otherwise the subtask
	// description itself.
	raw := subtask.Description
	if execCtx.InputText != "" {
		raw = execCtx.InputText
	}

	script, err := v.client.Complete(ctx, scriptPolishPrompt, raw)
	if err != nil {
		return nil, err
	}
	return &models.Deliverable{
		Kind:     models.DeliverableAudio,
		Content:  script,
		Filename: "narration.txt",
		MimeType: "text/plain",
		Metadata: map[string]string{
			"agent":      "Voice Artist",
			"subtask_id": subtask.ID,
			"script":     script,
		},
	}, nil
}

func (v *VoiceArtist) CanHandle(subtask *models.Subtask) bool {
	return subtask.RequiredSkill == models.SkillVoice
}

func (v *VoiceArtist) Estimate(subtask *models.Subtask) int { return 20 }

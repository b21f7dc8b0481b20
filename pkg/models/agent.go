package models

import "time"

// AgentStatus represents the availability of a capability provider.
type AgentStatus string

const (
	// AgentStatusAvailable indicates the agent can accept work.
	AgentStatusAvailable AgentStatus = "available"
	// AgentStatusBusy indicates the agent is executing a subtask.
	AgentStatusBusy AgentStatus = "busy"
	// AgentStatusOffline indicates the agent is not reachable.
	AgentStatusOffline AgentStatus = "offline"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusAvailable, AgentStatusBusy, AgentStatusOffline:
		return true
	default:
		return false
	}
}

// Skill identifies a capability an agent can provide.
type Skill string

const (
	// SkillWriting covers blog posts, copy, scripts, and documentation.
	SkillWriting Skill = "writing"
	// SkillVoice covers voiceovers, narration, and audio content.
	SkillVoice Skill = "voice"
	// SkillImage covers logos, banners, and illustrations.
	SkillImage Skill = "image"
	// SkillCode covers code generation, review, and debugging.
	SkillCode Skill = "code"
	// SkillOrchestration is the special capability that decomposes
	// multi-skill jobs into subtasks.
	SkillOrchestration Skill = "orchestration"
)

// Valid returns true if the skill is a known value.
func (s Skill) Valid() bool {
	switch s {
	case SkillWriting, SkillVoice, SkillImage, SkillCode, SkillOrchestration:
		return true
	default:
		return false
	}
}

// AgentProfile describes a registered capability provider.
type AgentProfile struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// Name is the display name of the agent.
	Name string `json:"name"`
	// Role is a short human-readable role description.
	Role string `json:"role"`
	// Skills lists the capabilities this agent declares. Must be non-empty.
	Skills []Skill `json:"skills"`
	// Description provides detail about what the agent produces.
	Description string `json:"description,omitempty"`
	// HourlyRate is the advertised rate in dollars.
	HourlyRate float64 `json:"hourly_rate"`
	// Rating is the rolling client rating average (1-5).
	Rating float64 `json:"rating"`
	// JobsCompleted counts jobs this agent completed.
	JobsCompleted int `json:"jobs_completed"`
	// Status is the current availability state.
	Status AgentStatus `json:"status"`
	// HandoffTargets lists agent IDs this agent may delegate work to.
	HandoffTargets []string `json:"handoff_targets,omitempty"`
	// CreatedAt is when the agent was registered.
	CreatedAt time.Time `json:"created_at"`
}

// HasSkill returns true if the agent declares the given skill.
func (p *AgentProfile) HasSkill(skill Skill) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

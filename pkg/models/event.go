package models

import "time"

// EventType identifies a kind of mesh event.
type EventType string

const (
	// EventAgentRegistered is published when an agent joins the registry.
	EventAgentRegistered EventType = "agent_registered"
	// EventAgentStatusChanged is published when an agent's availability flips.
	EventAgentStatusChanged EventType = "agent_status_changed"
	// EventJobCreated is published when a job is submitted.
	EventJobCreated EventType = "job_created"
	// EventJobDecomposed is published when a job is split into subtasks.
	EventJobDecomposed EventType = "job_decomposed"
	// EventSubtaskAssigned is published when a subtask gets an agent.
	EventSubtaskAssigned EventType = "subtask_assigned"
	// EventSubtaskStarted is published when subtask execution begins.
	EventSubtaskStarted EventType = "subtask_started"
	// EventSubtaskCompleted is published when a subtask produces its deliverable.
	EventSubtaskCompleted EventType = "subtask_completed"
	// EventSubtaskFailed is published when subtask execution fails.
	EventSubtaskFailed EventType = "subtask_failed"
	// EventHandoff is published when work is delegated between agents.
	EventHandoff EventType = "handoff"
	// EventJobCompleted is published when every subtask completed.
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is published when a job reaches the failed state.
	EventJobFailed EventType = "job_failed"
)

// Valid returns true if the event type is a known value.
func (t EventType) Valid() bool {
	switch t {
	case EventAgentRegistered, EventAgentStatusChanged, EventJobCreated,
		EventJobDecomposed, EventSubtaskAssigned, EventSubtaskStarted,
		EventSubtaskCompleted, EventSubtaskFailed, EventHandoff,
		EventJobCompleted, EventJobFailed:
		return true
	default:
		return false
	}
}

// EventData is implemented by the closed set of event payload types.
// Producers and consumers share these structs instead of agreeing on
// string keys by convention.
type EventData interface {
	eventData()
}

// AgentRegisteredData is the payload for EventAgentRegistered.
type AgentRegisteredData struct {
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	Skills []Skill `json:"skills"`
}

// AgentStatusChangedData is the payload for EventAgentStatusChanged.
type AgentStatusChangedData struct {
	Status AgentStatus `json:"status"`
}

// JobCreatedData is the payload for EventJobCreated.
type JobCreatedData struct {
	Title  string  `json:"title"`
	Skills []Skill `json:"skills"`
}

// SubtaskSummary is a compact subtask description carried in
// JobDecomposedData.
type SubtaskSummary struct {
	Title string `json:"title"`
	Skill Skill  `json:"skill"`
}

// JobDecomposedData is the payload for EventJobDecomposed.
type JobDecomposedData struct {
	Reasoning    string           `json:"reasoning"`
	SubtaskCount int              `json:"subtask_count"`
	Subtasks     []SubtaskSummary `json:"subtasks"`
}

// SubtaskAssignedData is the payload for EventSubtaskAssigned.
type SubtaskAssignedData struct {
	Skill     Skill  `json:"skill"`
	AgentName string `json:"agent_name"`
}

// SubtaskStartedData is the payload for EventSubtaskStarted.
type SubtaskStartedData struct {
	Title string `json:"title"`
}

// SubtaskCompletedData is the payload for EventSubtaskCompleted.
type SubtaskCompletedData struct {
	Title           string          `json:"title"`
	DeliverableKind DeliverableKind `json:"deliverable_kind"`
}

// SubtaskFailedData is the payload for EventSubtaskFailed.
type SubtaskFailedData struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// HandoffData is the payload for EventHandoff.
type HandoffData struct {
	SourceAgentID string `json:"source_agent_id"`
	TargetAgentID string `json:"target_agent_id"`
}

// JobCompletedData is the payload for EventJobCompleted.
type JobCompletedData struct {
	DeliverableCount int `json:"deliverables_count"`
}

// JobFailedData is the payload for EventJobFailed.
type JobFailedData struct {
	Error          string   `json:"error,omitempty"`
	FailedSubtasks []string `json:"failed_subtasks,omitempty"`
}

func (AgentRegisteredData) eventData()    {}
func (AgentStatusChangedData) eventData() {}
func (JobCreatedData) eventData()         {}
func (JobDecomposedData) eventData()      {}
func (SubtaskAssignedData) eventData()    {}
func (SubtaskStartedData) eventData()     {}
func (SubtaskCompletedData) eventData()   {}
func (SubtaskFailedData) eventData()      {}
func (HandoffData) eventData()            {}
func (JobCompletedData) eventData()       {}
func (JobFailedData) eventData()          {}

// Event is a single mesh event. Events are append-only and never
// mutated after publication.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`
	// Type is one of the eleven event kinds.
	Type EventType `json:"type"`
	// JobID correlates the event with a job, if any.
	JobID string `json:"job_id,omitempty"`
	// AgentID correlates the event with an agent, if any.
	AgentID string `json:"agent_id,omitempty"`
	// SubtaskID correlates the event with a subtask, if any.
	SubtaskID string `json:"subtask_id,omitempty"`
	// Data is the typed payload for this event kind.
	Data EventData `json:"data"`
	// Timestamp is when the event was published.
	Timestamp time.Time `json:"timestamp"`
}

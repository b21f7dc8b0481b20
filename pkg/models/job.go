package models

import "time"

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job has been submitted but not routed.
	JobStatusPending JobStatus = "pending"
	// JobStatusDecomposing indicates the job is being broken into subtasks.
	JobStatusDecomposing JobStatus = "decomposing"
	// JobStatusInProgress indicates subtasks are executing.
	JobStatusInProgress JobStatus = "in_progress"
	// JobStatusCompleted indicates every subtask completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed and will not be retried.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusDecomposing, JobStatusInProgress,
		JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SubtaskStatus represents the lifecycle state of a subtask.
type SubtaskStatus string

const (
	// SubtaskStatusPending indicates the subtask has no unmet dependencies
	// but has not started.
	SubtaskStatusPending SubtaskStatus = "pending"
	// SubtaskStatusWaitingDependency indicates at least one dependency has
	// not completed yet.
	SubtaskStatusWaitingDependency SubtaskStatus = "waiting_dependency"
	// SubtaskStatusInProgress indicates an agent is executing the subtask.
	SubtaskStatusInProgress SubtaskStatus = "in_progress"
	// SubtaskStatusCompleted indicates the subtask produced its deliverable.
	SubtaskStatusCompleted SubtaskStatus = "completed"
	// SubtaskStatusFailed indicates execution failed.
	SubtaskStatusFailed SubtaskStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s SubtaskStatus) Valid() bool {
	switch s {
	case SubtaskStatusPending, SubtaskStatusWaitingDependency,
		SubtaskStatusInProgress, SubtaskStatusCompleted, SubtaskStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s SubtaskStatus) Terminal() bool {
	return s == SubtaskStatusCompleted || s == SubtaskStatusFailed
}

// DeliverableKind identifies the content type of a deliverable.
type DeliverableKind string

const (
	// DeliverableText is inline text content (markdown, scripts, copy).
	DeliverableText DeliverableKind = "text"
	// DeliverableAudio is a reference to generated audio.
	DeliverableAudio DeliverableKind = "audio"
	// DeliverableImage is a reference to a generated image.
	DeliverableImage DeliverableKind = "image"
	// DeliverableCode is inline source code.
	DeliverableCode DeliverableKind = "code"
)

// Valid returns true if the kind is a known value.
func (k DeliverableKind) Valid() bool {
	switch k {
	case DeliverableText, DeliverableAudio, DeliverableImage, DeliverableCode:
		return true
	default:
		return false
	}
}

// Deliverable is the output artifact produced by completing a subtask.
// It is immutable once produced.
type Deliverable struct {
	// ID is the unique identifier for this deliverable.
	ID string `json:"id"`
	// Kind is the content type of the deliverable.
	Kind DeliverableKind `json:"kind"`
	// Content is inline text or a reference to an external artifact.
	Content string `json:"content"`
	// Filename is the suggested filename, if any.
	Filename string `json:"filename,omitempty"`
	// MimeType is the MIME type of the content, if known.
	MimeType string `json:"mime_type,omitempty"`
	// Metadata carries originating-agent info and intermediate values
	// worth exposing (e.g. an enhanced prompt or polished script).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Subtask is one skill-homogeneous unit of work within a job.
type Subtask struct {
	// ID is the unique identifier for this subtask.
	ID string `json:"id"`
	// JobID is the ID of the owning job.
	JobID string `json:"job_id"`
	// Title is the short description of the subtask.
	Title string `json:"title"`
	// Description provides detailed instructions for the agent.
	Description string `json:"description,omitempty"`
	// RequiredSkill is the single capability this subtask needs.
	RequiredSkill Skill `json:"required_skill"`
	// AssignedAgentID is the agent assigned to this subtask, if any.
	AssignedAgentID string `json:"assigned_agent_id,omitempty"`
	// Status is the current state of the subtask.
	Status SubtaskStatus `json:"status"`
	// Dependencies lists subtask IDs within the same job that must
	// complete before this one can start.
	Dependencies []string `json:"dependencies,omitempty"`
	// Deliverable is the produced artifact, set on completion.
	Deliverable *Deliverable `json:"deliverable,omitempty"`
	// StartedAt is when execution began.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// CompletedAt is when execution finished.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Job is a unit of client-requested work, possibly spanning multiple skills.
type Job struct {
	// ID is the unique identifier for this job.
	ID string `json:"id"`
	// Title is the short description of the job.
	Title string `json:"title"`
	// Description provides detailed information about the work.
	Description string `json:"description,omitempty"`
	// RequiredSkills lists the capabilities the job needs.
	RequiredSkills []Skill `json:"required_skills"`
	// Budget is the client budget in dollars.
	Budget float64 `json:"budget"`
	// ClientName is the submitting client's display name.
	ClientName string `json:"client_name,omitempty"`
	// Status is the current state of the job.
	Status JobStatus `json:"status"`
	// AssignedAgentID is the agent assigned on the simple path, if any.
	AssignedAgentID string `json:"assigned_agent_id,omitempty"`
	// Subtasks is the ordered list of subtasks this job owns.
	Subtasks []*Subtask `json:"subtasks,omitempty"`
	// Deliverables aggregates the deliverables of completed subtasks.
	Deliverables []*Deliverable `json:"deliverables,omitempty"`
	// Rating is the client rating, set via RateJob after completion.
	Rating *float64 `json:"rating,omitempty"`
	// Review is the optional client review text accompanying the rating.
	Review string `json:"review,omitempty"`
	// CreatedAt is when the job was submitted.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the job reached a terminal success state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RatingMin and RatingMax bound client ratings.
const (
	RatingMin = 1.0
	RatingMax = 5.0
)

// ValidRating returns true if the rating is within [RatingMin, RatingMax].
func ValidRating(rating float64) bool {
	return rating >= RatingMin && rating <= RatingMax
}

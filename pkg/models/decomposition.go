package models

// SubtaskSpec is one entry of a decomposition: a subtask to
// materialize. Dependencies are zero-based indices into the spec list
// the entry belongs to.
type SubtaskSpec struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	RequiredSkill Skill  `json:"required_skill"`
	Dependencies  []int  `json:"dependencies"`
}

// Decomposition is the structured result of an orchestration agent
// analyzing a multi-skill job.
type Decomposition struct {
	// Reasoning is a short explanation of the decomposition strategy.
	Reasoning string `json:"reasoning"`
	// Subtasks is the ordered list of subtask specifications.
	Subtasks []SubtaskSpec `json:"subtasks"`
	// EstimatedTotalMinutes is the agent's effort estimate.
	EstimatedTotalMinutes int `json:"estimated_total_minutes"`
}

// Package router owns the job lifecycle: routing decisions,
// decomposition, subtask assignment, and the dependency-wave
// scheduling loop.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentlance/agentlance/internal/agents"
	"github.com/agentlance/agentlance/internal/mesh"
	"github.com/agentlance/agentlance/internal/registry"
	"github.com/agentlance/agentlance/pkg/models"
)

// ErrInvalidRating indicates a rating outside the accepted bounds.
var ErrInvalidRating = errors.New("rating must be between 1.0 and 5.0")

// ErrNotRatable indicates the job does not exist or is not COMPLETED.
var ErrNotRatable = errors.New("job not found or not ratable")

// Router routes jobs to agents and drives them to completion or
// failure. Each submitted job runs on its own goroutine; a job is
// mutated only by the goroutine driving it.
type Router struct {
	registry *registry.Registry
	mesh     *mesh.Mesh

	mu sync.RWMutex
	// jobs maps job ID to the job.
	jobs map[string]*models.Job
	// order preserves submission order for listings.
	order []string
	// done maps job ID to a channel closed when the job goroutine
	// finishes.
	done map[string]chan struct{}

	// ctx is passed to capability executions. There is no cancellation
	// or timeout enforcement; a hung capability call stalls its wave.
	ctx context.Context

	// logf is an optional debug logging function.
	logf func(format string, args ...interface{})
}

// New creates a Router using the given registry and mesh.
func New(reg *registry.Registry, m *mesh.Mesh) *Router {
	return &Router{
		registry: reg,
		mesh:     m,
		jobs:     make(map[string]*models.Job),
		done:     make(map[string]chan struct{}),
		ctx:      context.Background(),
		logf:     func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (r *Router) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		r.logf = fn
	}
}

// Job returns the job for an ID, or nil if unknown.
func (r *Router) Job(jobID string) *models.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobs[jobID]
}

// ListJobs returns all jobs in submission order.
func (r *Router) ListJobs() []*models.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id])
	}
	return out
}

// Done returns a channel closed when the job's goroutine finishes.
// Returns a closed channel for unknown jobs.
func (r *Router) Done(jobID string) <-chan struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ch, ok := r.done[jobID]; ok {
		return ch
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

// SubmitJob accepts a job and returns immediately; the job continues
// asynchronously. A job with more than one required skill takes the
// orchestration path, otherwise the simple path.
func (r *Router) SubmitJob(job *models.Job) *models.Job {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	job.Status = models.JobStatusPending

	done := make(chan struct{})
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.order = append(r.order, job.ID)
	r.done[job.ID] = done
	r.mu.Unlock()

	r.mesh.Publish(models.Event{
		Type:  models.EventJobCreated,
		JobID: job.ID,
		Data:  models.JobCreatedData{Title: job.Title, Skills: job.RequiredSkills},
	})

	go func() {
		defer close(done)
		if len(job.RequiredSkills) > 1 {
			r.orchestrateJob(job)
		} else {
			r.routeSimpleJob(job)
		}
	}()

	return job
}

// routeSimpleJob routes a single-skill job directly to the first
// available agent. No retry and no queueing: if no agent is available
// the job fails immediately.
func (r *Router) routeSimpleJob(job *models.Job) {
	skill := models.SkillWriting
	if len(job.RequiredSkills) > 0 {
		skill = job.RequiredSkills[0]
	}

	subtask := &models.Subtask{
		ID:            uuid.New().String(),
		JobID:         job.ID,
		Title:         job.Title,
		Description:   job.Description,
		RequiredSkill: skill,
		Status:        models.SubtaskStatusPending,
	}
	job.Subtasks = []*models.Subtask{subtask}

	candidates := r.registry.FindBySkill(skill)
	if len(candidates) == 0 {
		r.failJob(job, fmt.Sprintf("no available agent for skill: %s", skill), nil)
		return
	}

	profile := candidates[0]
	subtask.AssignedAgentID = profile.ID
	job.AssignedAgentID = profile.ID
	job.Status = models.JobStatusInProgress

	r.mesh.Publish(models.Event{
		Type:      models.EventSubtaskAssigned,
		JobID:     job.ID,
		AgentID:   profile.ID,
		SubtaskID: subtask.ID,
		Data:      models.SubtaskAssignedData{Skill: skill, AgentName: profile.Name},
	})

	r.executeSubtask(job, subtask, profile.ID, agents.Context{})

	if subtask.Status == models.SubtaskStatusCompleted && subtask.Deliverable != nil {
		job.Deliverables = []*models.Deliverable{subtask.Deliverable}
		r.completeJob(job, []string{profile.ID})
	} else {
		r.failJob(job, "", []string{subtask.Title})
	}
}

// orchestrateJob decomposes a multi-skill job via an orchestration
// agent, then executes the resulting subtask graph. Decomposition
// failures fail the whole job and are not retried.
func (r *Router) orchestrateJob(job *models.Job) {
	job.Status = models.JobStatusDecomposing

	orchestrators := r.registry.FindBySkill(models.SkillOrchestration)
	if len(orchestrators) == 0 {
		// No orchestrator registered: fall back to the simple path.
		r.logf("[router] job %s: no orchestration agent, routing as simple job", job.ID)
		r.routeSimpleJob(job)
		return
	}
	orch := orchestrators[0]

	decomposition, err := r.decompose(job, orch)
	if err != nil {
		r.failJob(job, fmt.Sprintf("decomposition failed: %v", err), nil)
		return
	}

	subtasks, err := materializeSubtasks(job, decomposition)
	if err != nil {
		r.failJob(job, fmt.Sprintf("decomposition failed: %v", err), nil)
		return
	}
	job.Subtasks = subtasks
	job.Status = models.JobStatusInProgress

	summaries := make([]models.SubtaskSummary, len(subtasks))
	for i, st := range subtasks {
		summaries[i] = models.SubtaskSummary{Title: st.Title, Skill: st.RequiredSkill}
	}
	r.mesh.Publish(models.Event{
		Type:  models.EventJobDecomposed,
		JobID: job.ID,
		Data: models.JobDecomposedData{
			Reasoning:    decomposition.Reasoning,
			SubtaskCount: len(subtasks),
			Subtasks:     summaries,
		},
	})

	// Assign an agent per subtask, first available match. A subtask
	// with no available agent stays unassigned and can never become
	// ready; the job is judged failed once the loop runs dry.
	for _, st := range subtasks {
		candidates := r.registry.FindBySkill(st.RequiredSkill)
		if len(candidates) == 0 {
			r.logf("[router] job %s: no agent for subtask %s (skill %s)", job.ID, st.ID, st.RequiredSkill)
			continue
		}
		st.AssignedAgentID = candidates[0].ID
		r.mesh.Publish(models.Event{
			Type:      models.EventSubtaskAssigned,
			JobID:     job.ID,
			AgentID:   candidates[0].ID,
			SubtaskID: st.ID,
			Data:      models.SubtaskAssignedData{Skill: st.RequiredSkill, AgentName: candidates[0].Name},
		})
	}

	r.executeGraph(job)
}

// decompose asks the orchestration agent to break the job into
// subtask specifications.
func (r *Router) decompose(job *models.Job, orch *models.AgentProfile) (*models.Decomposition, error) {
	instance := r.registry.Instance(orch.ID)
	if instance == nil {
		return nil, fmt.Errorf("orchestration agent %s has no instance", orch.ID)
	}

	decomposeSubtask := &models.Subtask{
		ID:              uuid.New().String(),
		JobID:           job.ID,
		Title:           "Decompose job",
		Description:     fmt.Sprintf("Decompose this job: %s\n\n%s", job.Title, job.Description),
		RequiredSkill:   models.SkillOrchestration,
		AssignedAgentID: orch.ID,
		Status:          models.SubtaskStatusPending,
	}

	deliverable, err := instance.Execute(r.ctx, decomposeSubtask, agents.Context{})
	if err != nil {
		return nil, err
	}
	return parseDecomposition(deliverable.Content)
}

// parseDecomposition parses and validates the structured decomposition
// result produced by an orchestration agent.
func parseDecomposition(content string) (*models.Decomposition, error) {
	var d models.Decomposition
	if err := json.Unmarshal([]byte(content), &d); err != nil {
		return nil, fmt.Errorf("parse decomposition: %w", err)
	}
	if len(d.Subtasks) == 0 {
		return nil, errors.New("decomposition contains no subtasks")
	}
	for i, spec := range d.Subtasks {
		if !spec.RequiredSkill.Valid() {
			return nil, fmt.Errorf("subtask %d has unknown skill %q", i, spec.RequiredSkill)
		}
	}
	return &d, nil
}

// materializeSubtasks turns the ordered specification list into
// subtask entities, translating dependency indices into the IDs of
// the corresponding materialized subtasks. The resulting graph is
// validated; a cycle fails the job at decomposition time instead of
// silently stalling the scheduling loop.
func materializeSubtasks(job *models.Job, d *models.Decomposition) ([]*models.Subtask, error) {
	subtasks := make([]*models.Subtask, len(d.Subtasks))
	for i, spec := range d.Subtasks {
		subtasks[i] = &models.Subtask{
			ID:            uuid.New().String(),
			JobID:         job.ID,
			Title:         spec.Title,
			Description:   spec.Description,
			RequiredSkill: spec.RequiredSkill,
			Status:        models.SubtaskStatusPending,
		}
	}
	for i, spec := range d.Subtasks {
		for _, depIdx := range spec.Dependencies {
			if depIdx < 0 || depIdx >= len(subtasks) {
				continue
			}
			subtasks[i].Dependencies = append(subtasks[i].Dependencies, subtasks[depIdx].ID)
			subtasks[i].Status = models.SubtaskStatusWaitingDependency
		}
	}
	if err := validateGraph(subtasks); err != nil {
		return nil, err
	}
	return subtasks, nil
}

// executeGraph drives the job's subtask graph to completion. Each
// iteration fans out all ready subtasks concurrently and joins before
// recomputing readiness, so parallelism is bounded to one dependency
// wave at a time. The loop exits when no subtask is ready; the job is
// judged completed only if every subtask completed.
func (r *Router) executeGraph(job *models.Job) {
	completed := make(map[string]bool)
	deliverables := make(map[string]*models.Deliverable)

	for {
		ready := readySubtasks(job.Subtasks, completed)
		if len(ready) == 0 {
			break
		}
		r.logf("[router] job %s: executing wave of %d subtasks", job.ID, len(ready))

		var wg sync.WaitGroup
		for _, st := range ready {
			// Build the execution context from completed dependencies.
			// Dependencies are visited in declaration order, so the most
			// recent one providing input wins.
			var execCtx agents.Context
			for _, depID := range st.Dependencies {
				d, ok := deliverables[depID]
				if !ok {
					continue
				}
				execCtx.InputText = d.Content
				if src := subtaskByID(job, depID); src != nil && src.AssignedAgentID != "" && st.AssignedAgentID != "" {
					r.mesh.Publish(models.Event{
						Type:      models.EventHandoff,
						JobID:     job.ID,
						AgentID:   src.AssignedAgentID,
						SubtaskID: st.ID,
						Data: models.HandoffData{
							SourceAgentID: src.AssignedAgentID,
							TargetAgentID: st.AssignedAgentID,
						},
					})
				}
			}

			wg.Add(1)
			go func(st *models.Subtask, execCtx agents.Context) {
				defer wg.Done()
				r.executeSubtask(job, st, st.AssignedAgentID, execCtx)
			}(st, execCtx)
		}
		wg.Wait()

		for _, st := range ready {
			if st.Status == models.SubtaskStatusCompleted {
				completed[st.ID] = true
				if st.Deliverable != nil {
					deliverables[st.ID] = st.Deliverable
				}
			}
		}
	}

	// Aggregate deliverables of completed subtasks in subtask order.
	job.Deliverables = nil
	var participants []string
	seen := make(map[string]bool)
	for _, st := range job.Subtasks {
		if st.Status == models.SubtaskStatusCompleted && st.Deliverable != nil {
			job.Deliverables = append(job.Deliverables, st.Deliverable)
			if st.AssignedAgentID != "" && !seen[st.AssignedAgentID] {
				seen[st.AssignedAgentID] = true
				participants = append(participants, st.AssignedAgentID)
			}
		}
	}

	allCompleted := true
	var failed []string
	for _, st := range job.Subtasks {
		if st.Status != models.SubtaskStatusCompleted {
			allCompleted = false
		}
		if st.Status == models.SubtaskStatusFailed {
			failed = append(failed, st.Title)
		}
	}

	if allCompleted {
		r.completeJob(job, participants)
		return
	}
	reason := ""
	if len(failed) == 0 {
		// Stuck graph: unassigned subtasks left the loop with nothing
		// ready while non-terminal subtasks remain.
		reason = "no runnable subtasks remain"
	}
	r.failJob(job, reason, failed)
}

// subtaskByID returns the job's subtask with the given ID, or nil.
func subtaskByID(job *models.Job, id string) *models.Subtask {
	for _, st := range job.Subtasks {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// executeSubtask runs one subtask on its assigned agent, publishing
// started/completed/failed events. The agent's availability is
// acquired before execution and always released afterwards.
func (r *Router) executeSubtask(job *models.Job, subtask *models.Subtask, agentID string, execCtx agents.Context) {
	instance := r.registry.Instance(agentID)
	profile := r.registry.Profile(agentID)
	if instance == nil || profile == nil {
		subtask.Status = models.SubtaskStatusFailed
		return
	}

	subtask.Status = models.SubtaskStatusInProgress
	now := time.Now().UTC()
	subtask.StartedAt = &now

	// First-match assignment ignores load by design, so another job may
	// hold the same agent; the acquire/release pair only guarantees the
	// two cannot corrupt each other's availability flip.
	acquired := r.registry.Acquire(agentID)
	if acquired {
		r.mesh.Publish(models.Event{
			Type:    models.EventAgentStatusChanged,
			AgentID: agentID,
			Data:    models.AgentStatusChangedData{Status: models.AgentStatusBusy},
		})
	}
	defer func() {
		if acquired {
			r.registry.Release(agentID)
			r.mesh.Publish(models.Event{
				Type:    models.EventAgentStatusChanged,
				AgentID: agentID,
				Data:    models.AgentStatusChangedData{Status: models.AgentStatusAvailable},
			})
		}
	}()

	r.mesh.Publish(models.Event{
		Type:      models.EventSubtaskStarted,
		JobID:     job.ID,
		AgentID:   agentID,
		SubtaskID: subtask.ID,
		Data:      models.SubtaskStartedData{Title: subtask.Title},
	})

	deliverable, err := instance.Execute(r.ctx, subtask, execCtx)
	if err != nil {
		subtask.Status = models.SubtaskStatusFailed
		r.mesh.Publish(models.Event{
			Type:      models.EventSubtaskFailed,
			JobID:     job.ID,
			AgentID:   agentID,
			SubtaskID: subtask.ID,
			Data:      models.SubtaskFailedData{Title: subtask.Title, Error: err.Error()},
		})
		return
	}

	subtask.Deliverable = deliverable
	subtask.Status = models.SubtaskStatusCompleted
	doneAt := time.Now().UTC()
	subtask.CompletedAt = &doneAt

	r.mesh.Publish(models.Event{
		Type:      models.EventSubtaskCompleted,
		JobID:     job.ID,
		AgentID:   agentID,
		SubtaskID: subtask.ID,
		Data:      models.SubtaskCompletedData{Title: subtask.Title, DeliverableKind: deliverable.Kind},
	})
}

// completeJob marks the job completed, bumps the completed-job count
// of every participating agent, and publishes the terminal event.
func (r *Router) completeJob(job *models.Job, agentIDs []string) {
	job.Status = models.JobStatusCompleted
	now := time.Now().UTC()
	job.CompletedAt = &now
	for _, id := range agentIDs {
		r.registry.AddJobCompleted(id)
	}
	r.mesh.Publish(models.Event{
		Type:  models.EventJobCompleted,
		JobID: job.ID,
		Data:  models.JobCompletedData{DeliverableCount: len(job.Deliverables)},
	})
}

// failJob marks the job failed and publishes the terminal event.
// Failed jobs are never retried.
func (r *Router) failJob(job *models.Job, reason string, failedSubtasks []string) {
	job.Status = models.JobStatusFailed
	r.mesh.Publish(models.Event{
		Type:  models.EventJobFailed,
		JobID: job.ID,
		Data:  models.JobFailedData{Error: reason, FailedSubtasks: failedSubtasks},
	})
}

// RateJob stores a client rating on a COMPLETED job and folds it into
// the assigned agent's rolling average. Ratings outside [1.0, 5.0]
// and jobs that are missing or not completed are rejected without
// mutating state.
func (r *Router) RateJob(jobID string, rating float64, review string) (*models.Job, error) {
	if !models.ValidRating(rating) {
		return nil, ErrInvalidRating
	}

	r.mu.RLock()
	job := r.jobs[jobID]
	r.mu.RUnlock()
	if job == nil || job.Status != models.JobStatusCompleted {
		return nil, ErrNotRatable
	}

	job.Rating = &rating
	job.Review = review
	if job.AssignedAgentID != "" {
		r.registry.FoldRating(job.AssignedAgentID, rating)
	}
	return job, nil
}

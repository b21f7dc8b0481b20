// Package registry tracks registered capability providers, their
// declared skills, availability, and handoff targets.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentlance/agentlance/internal/agents"
	"github.com/agentlance/agentlance/pkg/models"
)

// ErrNoSkills indicates a registration attempt with an empty skill set.
var ErrNoSkills = errors.New("agent declares no skills")

// Registry manages agent profiles and their runtime instances. State
// lives only for the process lifetime; agents are never deleted
// within a run.
type Registry struct {
	mu sync.RWMutex
	// profiles maps agent ID to its profile.
	profiles map[string]*models.AgentProfile
	// instances maps agent ID to its runtime instance.
	instances map[string]agents.Agent
	// order preserves registration order for skill lookups.
	order []string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		profiles:  make(map[string]*models.AgentProfile),
		instances: make(map[string]agents.Agent),
	}
}

// Register adds a provider with its profile and runtime instance.
// A missing ID, status, or creation time is filled in. Fails only on
// malformed input (empty skill set).
func (r *Registry) Register(profile *models.AgentProfile, instance agents.Agent) (string, error) {
	if len(profile.Skills) == 0 {
		return "", ErrNoSkills
	}
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.Status == "" {
		profile.Status = models.AgentStatusAvailable
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[profile.ID]; !exists {
		r.order = append(r.order, profile.ID)
	}
	r.profiles[profile.ID] = profile
	r.instances[profile.ID] = instance
	return profile.ID, nil
}

// Profile returns the profile for an agent ID, or nil if unknown.
func (r *Registry) Profile(agentID string) *models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles[agentID]
}

// Instance returns the runtime instance for an agent ID, or nil.
func (r *Registry) Instance(agentID string) agents.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instances[agentID]
}

// ListProfiles returns all profiles in registration order.
func (r *Registry) ListProfiles() []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.AgentProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// FindBySkill returns all AVAILABLE agents declaring the skill, in
// registration order. Callers consistently pick the first match; no
// load-balancing or rating-based ranking is applied. Known
// limitation: registration order decides ties.
func (r *Registry) FindBySkill(skill models.Skill) []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AgentProfile
	for _, id := range r.order {
		p := r.profiles[id]
		if p.Status == models.AgentStatusAvailable && p.HasSkill(skill) {
			out = append(out, p)
		}
	}
	return out
}

// FindBySkills returns all AVAILABLE agents declaring at least one of
// the skills, in registration order.
func (r *Registry) FindBySkills(skills []models.Skill) []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AgentProfile
	for _, id := range r.order {
		p := r.profiles[id]
		if p.Status != models.AgentStatusAvailable {
			continue
		}
		for _, s := range skills {
			if p.HasSkill(s) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// SetStatus overwrites the agent's availability unconditionally.
// Unknown IDs are ignored.
func (r *Registry) SetStatus(agentID string, status models.AgentStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[agentID]; ok {
		p.Status = status
	}
}

// Acquire flips the agent from AVAILABLE to BUSY. Returns false if
// the agent is unknown or not AVAILABLE. The compare-and-swap runs
// under the registry lock so concurrent jobs cannot race on the flip.
func (r *Registry) Acquire(agentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[agentID]
	if !ok || p.Status != models.AgentStatusAvailable {
		return false
	}
	p.Status = models.AgentStatusBusy
	return true
}

// Release flips the agent from BUSY back to AVAILABLE. An OFFLINE
// agent stays offline.
func (r *Registry) Release(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[agentID]; ok && p.Status == models.AgentStatusBusy {
		p.Status = models.AgentStatusAvailable
	}
}

// HandoffTargets resolves the agent's declared handoff IDs to live
// profiles, dropping any that no longer exist.
func (r *Registry) HandoffTargets(agentID string) []*models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[agentID]
	if !ok {
		return nil
	}
	var out []*models.AgentProfile
	for _, tid := range p.HandoffTargets {
		if target, ok := r.profiles[tid]; ok {
			out = append(out, target)
		}
	}
	return out
}

// AddJobCompleted increments the agent's completed-job counter.
func (r *Registry) AddJobCompleted(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[agentID]; ok {
		p.JobsCompleted++
	}
}

// FoldRating folds a client rating into the agent's rolling average,
// weighted by the completed-job count prior to the rated job.
func (r *Registry) FoldRating(agentID string, rating float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[agentID]
	if !ok {
		return
	}
	prior := p.JobsCompleted - 1
	if prior < 0 {
		prior = 0
	}
	p.Rating = (p.Rating*float64(prior) + rating) / float64(prior+1)
}

package router

import (
	"errors"
	"fmt"

	"github.com/agentlance/agentlance/pkg/models"
)

// ErrCycleDetected indicates a circular dependency in a job's subtask
// graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// validateGraph checks a job's materialized subtasks: every dependency
// must reference another subtask of the same job, and the dependency
// relation must be acyclic. A decomposition that fails validation
// fails the whole job rather than stalling the scheduling loop.
func validateGraph(subtasks []*models.Subtask) error {
	nodes := make(map[string]*models.Subtask, len(subtasks))
	for _, st := range subtasks {
		nodes[st.ID] = st
	}
	for _, st := range subtasks {
		for _, depID := range st.Dependencies {
			if _, ok := nodes[depID]; !ok {
				return fmt.Errorf("subtask %s depends on unknown subtask %s", st.ID, depID)
			}
		}
	}
	if hasCycle(subtasks) {
		return ErrCycleDetected
	}
	return nil
}

// hasCycle runs a depth-first search with coloring to detect back
// edges in the dependency relation.
func hasCycle(subtasks []*models.Subtask) bool {
	// Color states: 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(subtasks))
	deps := make(map[string][]string, len(subtasks))
	for _, st := range subtasks {
		colors[st.ID] = 0
		deps[st.ID] = st.Dependencies
	}

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1
		for _, depID := range deps[id] {
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}
		colors[id] = 2
		return false
	}

	for _, st := range subtasks {
		if colors[st.ID] == 0 && visit(st.ID) {
			return true
		}
	}
	return false
}

// readySubtasks returns the subtasks that can execute now: status
// PENDING or WAITING_DEPENDENCY, an agent assigned, and every
// dependency in the completed set. Subtasks without an assigned agent
// can never become ready.
func readySubtasks(subtasks []*models.Subtask, completed map[string]bool) []*models.Subtask {
	var ready []*models.Subtask
	for _, st := range subtasks {
		if st.Status != models.SubtaskStatusPending && st.Status != models.SubtaskStatusWaitingDependency {
			continue
		}
		if st.AssignedAgentID == "" {
			continue
		}
		satisfied := true
		for _, depID := range st.Dependencies {
			if !completed[depID] {
				satisfied = false
				break
			}
		}
		if satisfied {
			ready = append(ready, st)
		}
	}
	return ready
}

package router

import (
	"errors"
	"testing"

	"github.com/agentlance/agentlance/pkg/models"
)

func TestValidateGraphLinear(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
	}
	if err := validateGraph(subtasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateGraphUnknownDependency(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Dependencies: []string{"ghost"}},
	}
	if err := validateGraph(subtasks); err == nil {
		t.Fatal("expected error for unknown dependency")
	}
}

func TestValidateGraphDirectCycle(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"a"}},
	}
	if err := validateGraph(subtasks); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestValidateGraphThreeNodeCycle(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Dependencies: []string{"b"}},
		{ID: "b", Dependencies: []string{"c"}},
		{ID: "c", Dependencies: []string{"a"}},
	}
	if err := validateGraph(subtasks); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestValidateGraphSelfLoop(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Dependencies: []string{"a"}},
	}
	if err := validateGraph(subtasks); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestReadySubtasks(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Status: models.SubtaskStatusPending, AssignedAgentID: "ag1"},
		{ID: "b", Status: models.SubtaskStatusWaitingDependency, AssignedAgentID: "ag2", Dependencies: []string{"a"}},
		{ID: "c", Status: models.SubtaskStatusPending}, // unassigned
	}

	ready := readySubtasks(subtasks, map[string]bool{})
	if len(ready) != 1 || ready[0].ID != "a" {
		t.Fatalf("expected only a to be ready, got %v", ready)
	}

	ready = readySubtasks(subtasks, map[string]bool{"a": true})
	// a is still pending in status, so it shows up again until marked;
	// simulate the driver having moved it along.
	subtasks[0].Status = models.SubtaskStatusCompleted
	ready = readySubtasks(subtasks, map[string]bool{"a": true})
	if len(ready) != 1 || ready[0].ID != "b" {
		t.Fatalf("expected only b to be ready, got %v", ready)
	}
}

func TestReadySubtasksNeverIncludesUnassigned(t *testing.T) {
	subtasks := []*models.Subtask{
		{ID: "a", Status: models.SubtaskStatusPending},
	}
	if ready := readySubtasks(subtasks, map[string]bool{}); len(ready) != 0 {
		t.Fatalf("expected no ready subtasks, got %d", len(ready))
	}
}

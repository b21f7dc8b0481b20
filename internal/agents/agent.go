// Package agents defines the capability provider interface and the
// default roster of providers backing the marketplace skills.
package agents

import (
	"context"

	"github.com/agentlance/agentlance/pkg/models"
)

// Context carries the inputs a subtask execution receives from its
// completed dependencies. A typed struct instead of a string-keyed
// map, so producers and consumers are checked at compile time.
type Context struct {
	// InputText is the deliverable content of a dependency, used as
	// reference material. When several dependencies provide input, the
	// most recent one wins.
	InputText string
	// Requirements carries additional free-form constraints.
	Requirements string
}

// Empty returns true if the context carries no inputs.
func (c Context) Empty() bool {
	return c.InputText == "" && c.Requirements == ""
}

// Agent is implemented by every capability provider. The router only
// calls Execute; CanHandle and Estimate are part of the registry's
// skill-matching contract and kept for transport collaborators.
type Agent interface {
	// Execute runs the subtask and returns its deliverable. The
	// returned error is provider-specific and fails only this subtask.
	Execute(ctx context.Context, subtask *models.Subtask, execCtx Context) (*models.Deliverable, error)
	// CanHandle reports whether this agent can take the subtask.
	CanHandle(subtask *models.Subtask) bool
	// Estimate returns the estimated execution time in seconds.
	Estimate(subtask *models.Subtask) int
}

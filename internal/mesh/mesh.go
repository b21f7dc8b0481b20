// Package mesh provides the event bus distributing state-transition
// events to observers: an append-only ordered log plus broadcast to
// global and per-job subscriber scopes.
package mesh

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentlance/agentlance/pkg/models"
)

// Scope identifies a subscription scope: the global scope or one job.
type Scope string

// GlobalScope receives every event published to the mesh.
const GlobalScope Scope = "mesh"

// JobScope returns the scope receiving only events for the given job.
func JobScope(jobID string) Scope {
	return Scope("job:" + jobID)
}

// Subscriber receives events for a scope. Send is called once per
// event in publish order; returning an error removes the subscriber
// from its scope.
type Subscriber interface {
	Send(event models.Event) error
}

// Mesh is the event bus. It keeps the ordered event log, the
// subscriber sets per scope, and the agent handoff topology.
type Mesh struct {
	mu sync.RWMutex
	// events is the append-only ordered log, retained for the process
	// lifetime.
	events []models.Event
	// subscribers maps scope to its subscriber set in subscribe order.
	subscribers map[Scope][]Subscriber
	// handoffs maps agent ID to the agent IDs it may delegate to.
	handoffs map[string][]string
	// logf is an optional debug logging function.
	logf func(format string, args ...interface{})
}

// New creates an empty Mesh.
func New() *Mesh {
	return &Mesh{
		subscribers: make(map[Scope][]Subscriber),
		handoffs:    make(map[string][]string),
		logf:        func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (m *Mesh) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		m.logf = fn
	}
}

// Publish appends the event to the log and delivers it best-effort to
// the event's job scope and to all global subscribers. A subscriber
// whose Send fails is dropped from its scope; publishing itself never
// fails.
func (m *Mesh) Publish(event models.Event) models.Event {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	m.events = append(m.events, event)

	// Snapshot the delivery targets so Send runs outside the lock.
	type target struct {
		scope Scope
		sub   Subscriber
	}
	var targets []target
	if event.JobID != "" {
		scope := JobScope(event.JobID)
		for _, sub := range m.subscribers[scope] {
			targets = append(targets, target{scope, sub})
		}
	}
	for _, sub := range m.subscribers[GlobalScope] {
		targets = append(targets, target{GlobalScope, sub})
	}
	m.mu.Unlock()

	for _, t := range targets {
		if err := t.sub.Send(event); err != nil {
			m.logf("[mesh] dropping subscriber from scope %s: %v", t.scope, err)
			m.Unsubscribe(t.scope, t.sub)
		}
	}
	return event
}

// Subscribe adds a subscriber to the given scope.
func (m *Mesh) Subscribe(scope Scope, sub Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[scope] = append(m.subscribers[scope], sub)
}

// Unsubscribe removes a subscriber from the given scope.
func (m *Mesh) Unsubscribe(scope Scope, sub Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subscribers[scope]
	filtered := subs[:0]
	for _, s := range subs {
		if s != sub {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		delete(m.subscribers, scope)
	} else {
		m.subscribers[scope] = filtered
	}
}

// SubscriberCount returns the number of subscribers in the scope.
func (m *Mesh) SubscriberCount(scope Scope) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[scope])
}

// History returns the most recent limit events in publish order. If
// jobID is non-empty, only events for that job are considered. A
// non-positive limit returns all matching events.
func (m *Mesh) History(jobID string, limit int) []models.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.events
	if jobID != "" {
		filtered := make([]models.Event, 0, len(events))
		for _, e := range events {
			if e.JobID == jobID {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	out := make([]models.Event, len(events))
	copy(out, events)
	return out
}

// RegisterHandoffs records the handoff targets for an agent.
func (m *Mesh) RegisterHandoffs(agentID string, targets []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handoffs[agentID] = append([]string(nil), targets...)
}

// HandoffGraph returns a copy of the agent handoff adjacency map.
func (m *Mesh) HandoffGraph() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.handoffs))
	for id, targets := range m.handoffs {
		out[id] = append([]string(nil), targets...)
	}
	return out
}

// Edge is one directed handoff edge in the mesh topology.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Topology returns the handoff graph as node and edge lists for
// visualization clients.
func (m *Mesh) Topology() (nodes []string, edges []Edge) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for src, targets := range m.handoffs {
		if !seen[src] {
			seen[src] = true
			nodes = append(nodes, src)
		}
		for _, tgt := range targets {
			if !seen[tgt] {
				seen[tgt] = true
				nodes = append(nodes, tgt)
			}
			edges = append(edges, Edge{Source: src, Target: tgt})
		}
	}
	return nodes, edges
}

package main

import (
	"fmt"
	"strings"

	"github.com/agentlance/agentlance/internal/agents"
	"github.com/agentlance/agentlance/internal/config"
	"github.com/agentlance/agentlance/internal/mesh"
	"github.com/agentlance/agentlance/internal/registry"
	"github.com/agentlance/agentlance/internal/roster"
	"github.com/agentlance/agentlance/internal/router"
	"github.com/agentlance/agentlance/internal/state"
	"github.com/agentlance/agentlance/pkg/models"
)

// services holds the wired-up marketplace for one CLI invocation.
type services struct {
	cfg      *config.Config
	registry *registry.Registry
	mesh     *mesh.Mesh
	router   *router.Router
	archiver *state.Archiver
	db       *state.DB
}

// buildServices loads configuration, seeds the roster, and wires the
// mesh, registry, router, and event archive together. With offline set
// the completion backend is scripted and no API key is required.
func buildServices(offline bool) (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var client agents.CompletionClient
	if offline {
		client = offlineClient()
	} else {
		client, err = agents.NewAnthropicClient(agents.AnthropicConfig{
			APIKey: cfg.Anthropic.APIKey,
			Model:  cfg.Anthropic.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (use --offline to run without an API key)", err)
		}
	}

	reg := registry.New()
	m := mesh.New()

	svc := &services{
		cfg:      cfg,
		registry: reg,
		mesh:     m,
		router:   router.New(reg, m),
	}

	if cfg.Archive.Enabled {
		db, err := state.Open(cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open event archive: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate event archive: %w", err)
		}
		svc.db = db
		svc.archiver = state.NewArchiver(db)
		m.Subscribe(mesh.GlobalScope, svc.archiver)
	}

	var entries []roster.Entry
	if cfg.Roster.Path != "" {
		f, err := roster.Load(cfg.Roster.Path)
		if err != nil {
			svc.Close()
			return nil, err
		}
		entries = f.Agents
	}
	if _, err := roster.Seed(entries, reg, m, client); err != nil {
		svc.Close()
		return nil, fmt.Errorf("seed roster: %w", err)
	}

	return svc, nil
}

// Close releases the archive database, if open.
func (s *services) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// offlineClient returns a scripted completion backend: decomposition
// requests get a minimal valid plan, everything else is echoed.
func offlineClient() agents.CompletionClient {
	return agents.NewScriptedClient(func(systemPrompt, userPrompt string) string {
		if strings.Contains(systemPrompt, "task decomposer") {
			return agents.ScriptedPlan(models.SkillWriting)(systemPrompt, userPrompt)
		}
		return "[offline] " + userPrompt
	})
}

// openArchive opens the configured archive read-only for inspection
// commands, without seeding a roster.
func openArchive() (*state.Archiver, *state.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Archive.Enabled {
		return nil, nil, fmt.Errorf("event archive is disabled in configuration")
	}
	db, err := state.Open(cfg.Archive.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open event archive: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate event archive: %w", err)
	}
	return state.NewArchiver(db), db, nil
}

// Package roster seeds the default provider lineup and applies
// optional roster overrides from a YAML file.
package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentlance/agentlance/internal/agents"
	"github.com/agentlance/agentlance/internal/mesh"
	"github.com/agentlance/agentlance/internal/registry"
	"github.com/agentlance/agentlance/pkg/models"
)

// Entry describes one provider in a roster file. Zero values fall back
// to the built-in defaults for the matching name.
type Entry struct {
	Name          string         `yaml:"name"`
	Role          string         `yaml:"role"`
	Skills        []models.Skill `yaml:"skills"`
	Description   string         `yaml:"description"`
	HourlyRate    float64        `yaml:"hourly_rate"`
	Rating        float64        `yaml:"rating"`
	JobsCompleted int            `yaml:"jobs_completed"`
	// Handoffs lists target provider names; they are resolved to IDs
	// once the whole roster is registered.
	Handoffs []string `yaml:"handoffs"`
}

// File is the top-level roster file structure.
type File struct {
	Agents []Entry `yaml:"agents"`
}

// Load reads a roster file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	for i, e := range f.Agents {
		if e.Name == "" {
			return nil, fmt.Errorf("roster entry %d has no name", i)
		}
		for _, s := range e.Skills {
			if !s.Valid() {
				return nil, fmt.Errorf("roster entry %q declares unknown skill %q", e.Name, s)
			}
		}
	}
	return &f, nil
}

// Default returns the built-in five-provider lineup: one specialist
// per skill plus the orchestration coordinator.
func Default() []Entry {
	return []Entry{
		{
			Name:          "Nova",
			Role:          "Content Writer",
			Skills:        []models.Skill{models.SkillWriting},
			Description:   "Expert content writer specializing in blog posts, marketing copy, product descriptions, and creative scripts.",
			HourlyRate:    25.0,
			Rating:        4.9,
			JobsCompleted: 142,
			Handoffs:      []string{"Echo"},
		},
		{
			Name:          "Echo",
			Role:          "Voice Artist",
			Skills:        []models.Skill{models.SkillVoice},
			Description:   "Professional voice artist creating natural-sounding voiceovers, narrations, and audio content.",
			HourlyRate:    35.0,
			Rating:        4.8,
			JobsCompleted: 89,
		},
		{
			Name:          "Pixel",
			Role:          "Image Creator",
			Skills:        []models.Skill{models.SkillImage},
			Description:   "Creative visual designer producing logos, banners, illustrations, and hero images.",
			HourlyRate:    30.0,
			Rating:        4.7,
			JobsCompleted: 203,
		},
		{
			Name:          "Cipher",
			Role:          "Code Developer",
			Skills:        []models.Skill{models.SkillCode},
			Description:   "Senior software developer handling code generation, reviews, debugging, and technical architecture.",
			HourlyRate:    45.0,
			Rating:        4.9,
			JobsCompleted: 167,
			Handoffs:      []string{"Nova"},
		},
		{
			Name:          "Nexus",
			Role:          "Orchestrator",
			Skills:        []models.Skill{models.SkillOrchestration},
			Description:   "Master coordinator that decomposes complex projects into subtasks and routes them to specialist agents.",
			HourlyRate:    40.0,
			Rating:        5.0,
			JobsCompleted: 56,
			Handoffs:      []string{"Nova", "Echo", "Pixel", "Cipher"},
		},
	}
}

// Seed registers the roster's providers, wires the handoff topology
// into the mesh, and publishes one agent_registered event per
// provider. The runtime instance for each entry is chosen from its
// first declared skill. Returns the registered IDs in roster order.
func Seed(entries []Entry, reg *registry.Registry, m *mesh.Mesh, client agents.CompletionClient) ([]string, error) {
	if len(entries) == 0 {
		entries = Default()
	}

	ids := make(map[string]string, len(entries))
	profiles := make([]*models.AgentProfile, 0, len(entries))

	for _, e := range entries {
		instance, err := instanceForSkill(e.Skills, client)
		if err != nil {
			return nil, fmt.Errorf("roster entry %q: %w", e.Name, err)
		}

		profile := &models.AgentProfile{
			Name:          e.Name,
			Role:          e.Role,
			Skills:        e.Skills,
			Description:   e.Description,
			HourlyRate:    e.HourlyRate,
			Rating:        e.Rating,
			JobsCompleted: e.JobsCompleted,
		}
		id, err := reg.Register(profile, instance)
		if err != nil {
			return nil, fmt.Errorf("register %q: %w", e.Name, err)
		}
		ids[e.Name] = id
		profiles = append(profiles, profile)
	}

	// Handoffs are declared by name and resolved once every provider
	// has an ID. Unknown names are rejected rather than dropped.
	for i, e := range entries {
		for _, target := range e.Handoffs {
			tid, ok := ids[target]
			if !ok {
				return nil, fmt.Errorf("roster entry %q hands off to unknown provider %q", e.Name, target)
			}
			profiles[i].HandoffTargets = append(profiles[i].HandoffTargets, tid)
		}
		m.RegisterHandoffs(profiles[i].ID, profiles[i].HandoffTargets)
	}

	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
		m.Publish(models.Event{
			Type:    models.EventAgentRegistered,
			AgentID: p.ID,
			Data: models.AgentRegisteredData{
				Name:   p.Name,
				Role:   p.Role,
				Skills: p.Skills,
			},
		})
	}
	return out, nil
}

// instanceForSkill builds the runtime provider for an entry's primary
// skill.
func instanceForSkill(skills []models.Skill, client agents.CompletionClient) (agents.Agent, error) {
	if len(skills) == 0 {
		return nil, fmt.Errorf("no skills declared")
	}
	switch skills[0] {
	case models.SkillWriting:
		return agents.NewWriter(client), nil
	case models.SkillVoice:
		return agents.NewVoiceArtist(client), nil
	case models.SkillImage:
		return agents.NewImageCreator(client), nil
	case models.SkillCode:
		return agents.NewCodeDeveloper(client), nil
	case models.SkillOrchestration:
		return agents.NewOrchestrator(client), nil
	default:
		return nil, fmt.Errorf("unknown skill %q", skills[0])
	}
}

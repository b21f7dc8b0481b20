package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the provider roster and its handoff topology",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices(true)
		if err != nil {
			return err
		}
		defer svc.Close()

		bold := color.New(color.Bold)
		for _, p := range svc.registry.ListProfiles() {
			skills := make([]string, len(p.Skills))
			for i, s := range p.Skills {
				skills[i] = string(s)
			}
			fmt.Printf("%s  %s\n", bold.Sprint(p.Name), color.New(color.Faint).Sprint(p.Role))
			fmt.Printf("  skills: %s\n", strings.Join(skills, ", "))
			fmt.Printf("  rate: $%.0f/hr  rating: %.1f  jobs: %d  status: %s\n",
				p.HourlyRate, p.Rating, p.JobsCompleted, p.Status)
			if p.Description != "" {
				fmt.Printf("  %s\n", p.Description)
			}
			fmt.Println()
		}

		_, edges := svc.mesh.Topology()
		if len(edges) > 0 {
			fmt.Println(bold.Sprint("Handoffs"))
			for _, e := range edges {
				fmt.Printf("  %s → %s\n", agentName(svc, e.Source), agentName(svc, e.Target))
			}
		}
		return nil
	},
}

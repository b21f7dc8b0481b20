package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentlance",
	Short: "AI freelance marketplace orchestrator",
	Long: `AgentLance routes client jobs to a roster of AI provider agents.

Single-skill jobs go straight to the first available provider. Jobs
spanning several skills are decomposed by an orchestration agent into a
dependency graph of subtasks, executed wave by wave with outputs handed
off between dependent providers. Every state transition is published on
the event mesh and archived locally.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}

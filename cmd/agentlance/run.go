package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentlance/agentlance/internal/mesh"
	"github.com/agentlance/agentlance/pkg/models"
)

var (
	runDescription string
	runSkills      []string
	runBudget      float64
	runClientName  string
	runOffline     bool
	runRate        float64
	runReview      string
)

var runCmd = &cobra.Command{
	Use:   "run <title>",
	Short: "Submit a job and stream its events until it finishes",
	Long: `Submit a job to the marketplace and watch it execute.

A job declaring one skill is routed directly to the first available
provider. A job declaring several skills is decomposed into a subtask
dependency graph and executed wave by wave.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(strings.Join(args, " "))
	},
}

func init() {
	runCmd.Flags().StringVarP(&runDescription, "description", "d", "", "Detailed job description")
	runCmd.Flags().StringSliceVarP(&runSkills, "skills", "s", []string{"writing"}, "Required skills (writing, voice, image, code)")
	runCmd.Flags().Float64VarP(&runBudget, "budget", "b", 0, "Client budget in dollars")
	runCmd.Flags().StringVarP(&runClientName, "client", "c", "", "Client display name")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Run with a scripted completion backend (no API key needed)")
	runCmd.Flags().Float64Var(&runRate, "rate", 0, "Rate the job after completion (1.0-5.0)")
	runCmd.Flags().StringVar(&runReview, "review", "", "Review text accompanying the rating")
}

func runJob(title string) error {
	skills := make([]models.Skill, 0, len(runSkills))
	for _, s := range runSkills {
		skill := models.Skill(strings.TrimSpace(strings.ToLower(s)))
		if !skill.Valid() {
			return fmt.Errorf("unknown skill %q", s)
		}
		skills = append(skills, skill)
	}

	svc, err := buildServices(runOffline)
	if err != nil {
		return err
	}
	defer svc.Close()

	sub := mesh.NewChanSubscriber(svc.cfg.Stream.BufferSize)
	svc.mesh.Subscribe(mesh.GlobalScope, sub)

	job := svc.router.SubmitJob(&models.Job{
		Title:          title,
		Description:    runDescription,
		RequiredSkills: skills,
		Budget:         runBudget,
		ClientName:     runClientName,
	})
	fmt.Printf("Submitted job %s\n\n", color.CyanString(job.ID))

	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		for event := range sub.Events() {
			printEvent(svc, event)
		}
	}()

	<-svc.router.Done(job.ID)
	svc.mesh.Unsubscribe(mesh.GlobalScope, sub)
	sub.Close()
	<-streamDone

	fmt.Println()
	switch job.Status {
	case models.JobStatusCompleted:
		fmt.Printf("%s job completed with %d deliverable(s)\n", color.GreenString("✓"), len(job.Deliverables))
		for i, d := range job.Deliverables {
			fmt.Printf("\n%s [%s]\n%s\n", color.New(color.Bold).Sprintf("Deliverable %d", i+1), d.Kind, d.Content)
		}
	case models.JobStatusFailed:
		fmt.Printf("%s job failed\n", color.RedString("✗"))
	default:
		fmt.Printf("job finished in unexpected state %s\n", job.Status)
	}

	if runRate > 0 {
		if job.Status != models.JobStatusCompleted {
			fmt.Println("skipping rating: only completed jobs can be rated")
			return nil
		}
		if _, err := svc.router.RateJob(job.ID, runRate, runReview); err != nil {
			return fmt.Errorf("rate job: %w", err)
		}
		fmt.Printf("%s rated %.1f\n", color.GreenString("✓"), runRate)
	}
	return nil
}

// printEvent renders one mesh event as a colored log line.
func printEvent(svc *services, event models.Event) {
	ts := event.Timestamp.Format("15:04:05")
	label := eventLabel(event.Type)
	detail := eventDetail(svc, event)
	fmt.Printf("%s %s %s\n", color.New(color.Faint).Sprint(ts), label, detail)
}

func eventLabel(t models.EventType) string {
	s := fmt.Sprintf("%-20s", t)
	switch t {
	case models.EventJobCompleted, models.EventSubtaskCompleted:
		return color.GreenString(s)
	case models.EventJobFailed, models.EventSubtaskFailed:
		return color.RedString(s)
	case models.EventJobCreated, models.EventJobDecomposed:
		return color.CyanString(s)
	case models.EventSubtaskAssigned, models.EventSubtaskStarted:
		return color.YellowString(s)
	case models.EventHandoff:
		return color.MagentaString(s)
	default:
		return color.BlueString(s)
	}
}

// eventDetail summarizes the typed payload of an event.
func eventDetail(svc *services, event models.Event) string {
	switch data := event.Data.(type) {
	case models.AgentRegisteredData:
		return fmt.Sprintf("%s (%s)", data.Name, data.Role)
	case models.AgentStatusChangedData:
		return fmt.Sprintf("%s is now %s", agentName(svc, event.AgentID), data.Status)
	case models.JobCreatedData:
		return fmt.Sprintf("%q needs %v", data.Title, data.Skills)
	case models.JobDecomposedData:
		return fmt.Sprintf("%d subtask(s): %s", data.SubtaskCount, data.Reasoning)
	case models.SubtaskAssignedData:
		return fmt.Sprintf("%s takes the %s subtask", data.AgentName, data.Skill)
	case models.SubtaskStartedData:
		return fmt.Sprintf("%s started %q", agentName(svc, event.AgentID), data.Title)
	case models.SubtaskCompletedData:
		return fmt.Sprintf("%q produced %s", data.Title, data.DeliverableKind)
	case models.SubtaskFailedData:
		return fmt.Sprintf("%q failed: %s", data.Title, data.Error)
	case models.HandoffData:
		return fmt.Sprintf("%s → %s", agentName(svc, data.SourceAgentID), agentName(svc, data.TargetAgentID))
	case models.JobCompletedData:
		return fmt.Sprintf("%d deliverable(s)", data.DeliverableCount)
	case models.JobFailedData:
		if data.Error != "" {
			return data.Error
		}
		return fmt.Sprintf("failed subtasks: %v", data.FailedSubtasks)
	default:
		return ""
	}
}

func agentName(svc *services, agentID string) string {
	if p := svc.registry.Profile(agentID); p != nil {
		return p.Name
	}
	return agentID
}

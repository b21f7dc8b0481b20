package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentlance/agentlance/internal/state"
)

var (
	eventsJob   string
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show archived mesh events from previous runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		archiver, db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		var events []state.ArchivedEvent
		if eventsJob != "" {
			events, err = archiver.EventsByJob(eventsJob)
		} else {
			events, err = archiver.RecentEvents(eventsLimit)
		}
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("no archived events")
			return nil
		}

		for _, e := range events {
			ts := e.Timestamp.Format("2006-01-02 15:04:05")
			line := fmt.Sprintf("%s %s", color.New(color.Faint).Sprint(ts), eventLabel(e.Type))
			if e.JobID != "" {
				line += " job=" + e.JobID
			}
			if len(e.Data) > 0 {
				line += " " + string(e.Data)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsJob, "job", "", "Show events for one job")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "Maximum events to show (0 for all)")
}

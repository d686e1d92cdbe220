package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/schedule"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		configPath  string
		phaseID     string
		name        string
		description string
		sequence    int
		startDate   string
		days        int
		buffer      int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task under a phase",
		Long:  "Creates a task inside a phase's date window. The parent phase's duration is recalculated from its tasks afterwards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			start, err := schedule.ParseDate(startDate)
			if err != nil {
				return err
			}
			task, outcome, err := phase.CreateTask(gormDB, phase.CreateTaskOpts{
				ParentPhaseID:       phaseID,
				Name:                name,
				Description:         description,
				SequenceOrder:       sequence,
				PlannedStartDate:    start,
				PlannedDurationDays: days,
				BufferDays:          buffer,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created task %s\n", task.ID)
			printRecalc(out, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&phaseID, "phase", "", "parent phase ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "task name (required)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().IntVar(&sequence, "sequence", 0, "display order within the phase")
	cmd.Flags().StringVar(&startDate, "start", "", "planned start date, YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&days, "days", 0, "planned duration in business days")
	cmd.Flags().IntVar(&buffer, "buffer", 0, "buffer in business days")
	cmd.MarkFlagRequired("phase")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		phaseID    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in a phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			tasks, err := phase.ListTasks(gormDB, phaseID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTART\tEND\tDAYS")
			for _, task := range tasks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					task.ID, truncate(task.Name, 40), task.Status,
					schedule.FormatDate(task.PlannedStartDate),
					schedule.FormatDate(task.PlannedEndDate),
					task.PlannedDurationDays)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&phaseID, "phase", "", "parent phase ID (required)")
	cmd.MarkFlagRequired("phase")
	return cmd
}

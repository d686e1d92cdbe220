package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/schedule"
)

func newPhaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Phase management commands",
	}

	cmd.AddCommand(newPhaseCreateCmd())
	cmd.AddCommand(newPhaseUpdateCmd())
	cmd.AddCommand(newPhaseDeleteCmd())
	cmd.AddCommand(newPhaseRecalcCmd())
	return cmd
}

func newPhaseCreateCmd() *cobra.Command {
	var (
		configPath  string
		projectID   string
		name        string
		description string
		sequence    int
		startDate   string
		days        int
		buffer      int
		predecessor string
		color       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new phase",
		Long:  "Creates a top-level phase in a project. Duration starts in auto mode and is recomputed from tasks as they are added.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			start, err := schedule.ParseDate(startDate)
			if err != nil {
				return err
			}
			ph, err := phase.CreatePhase(gormDB, phase.CreatePhaseOpts{
				ProjectID:           projectID,
				Name:                name,
				Description:         description,
				SequenceOrder:       sequence,
				PlannedStartDate:    start,
				PlannedDurationDays: days,
				BufferDays:          buffer,
				PredecessorPhaseID:  predecessor,
				Color:               color,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created phase %s\n", ph.ID)
			fmt.Fprintf(out, "Window: %s – %s\n",
				schedule.FormatDate(ph.PlannedStartDate), schedule.FormatDate(ph.PlannedEndDate))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "phase name (required)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().IntVar(&sequence, "sequence", 0, "display order within the project")
	cmd.Flags().StringVar(&startDate, "start", "", "planned start date, YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&days, "days", 0, "planned duration in business days")
	cmd.Flags().IntVar(&buffer, "buffer", 0, "buffer in business days")
	cmd.Flags().StringVar(&predecessor, "predecessor", "", "predecessor phase ID (ordering hint)")
	cmd.Flags().StringVar(&color, "color", "", "display color")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("start")
	return cmd
}

func newPhaseUpdateCmd() *cobra.Command {
	var (
		configPath   string
		name         string
		status       string
		startDate    string
		days         int
		buffer       int
		durationMode string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a phase or task",
		Long: `Updates phase or task fields. Status transitions are validated.

Editing a phase's duration or buffer by hand flips it to override mode;
pass --mode auto to hand the duration back to recalculation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts phase.UpdateOpts

			if cmd.Flags().Changed("name") {
				opts.Name = &name
			}
			if cmd.Flags().Changed("status") {
				opts.Status = &status
			}
			if cmd.Flags().Changed("start") {
				start, err := schedule.ParseDate(startDate)
				if err != nil {
					return err
				}
				opts.PlannedStartDate = &start
			}
			if cmd.Flags().Changed("days") {
				opts.PlannedDurationDays = &days
			}
			if cmd.Flags().Changed("buffer") {
				opts.BufferDays = &buffer
			}
			if cmd.Flags().Changed("mode") {
				opts.DurationMode = &durationMode
			}

			if opts == (phase.UpdateOpts{}) {
				return fmt.Errorf("no fields to update; use --name, --status, --start, --days, --buffer, or --mode")
			}

			return runPhaseUpdate(cmd, configPath, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&startDate, "start", "", "new planned start date, YYYY-MM-DD")
	cmd.Flags().IntVar(&days, "days", 0, "new planned duration in business days")
	cmd.Flags().IntVar(&buffer, "buffer", 0, "new buffer in business days")
	cmd.Flags().StringVar(&durationMode, "mode", "", "duration mode (auto or override)")
	return cmd
}

func runPhaseUpdate(cmd *cobra.Command, configPath, id string, opts phase.UpdateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	row, outcome, err := phase.Update(gormDB, id, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Updated %s\n", row.ID)
	fmt.Fprintf(out, "Window: %s – %s (%s mode)\n",
		schedule.FormatDate(row.PlannedStartDate), schedule.FormatDate(row.PlannedEndDate),
		row.DurationMode)
	printRecalc(out, outcome)
	return nil
}

func newPhaseDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a phase or task",
		Long:  "Deletes a phase along with its tasks, or a single task. Deleting a task recalculates the parent phase.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			outcome, err := phase.Delete(gormDB, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deleted %s\n", args[0])
			printRecalc(out, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

func newPhaseRecalcCmd() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "recalc <id>",
		Short: "Recalculate a phase's duration from its tasks",
		Long:  "Recomputes the phase duration as the furthest business-day reach of its tasks. Phases in override mode are skipped unless --force is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			_, outcome, err := phase.Recalculate(gormDB, args[0], force)
			if err != nil {
				return err
			}
			printRecalc(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().BoolVar(&force, "force", false, "recalculate even in override mode")
	return cmd
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/project"
	"github.com/zulandar/groundwork/internal/schedule"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	cmd.AddCommand(newProjectBaselineCmd())
	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			p, err := project.Create(gormDB, project.CreateOpts{
				OrgID:       cfg.Org,
				Name:        name,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&name, "name", "", "project name (required)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			projects, err := project.List(gormDB, cfg.Org)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBASELINE")
			for _, p := range projects {
				baseline := "-"
				if p.HasBaseline() {
					baseline = fmt.Sprintf("%s + %dd",
						schedule.FormatDate(*p.BaselineStartDate), *p.BaselineDurationDays)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, truncate(p.Name, 40), baseline)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show project details",
		Long:  "Displays project details with its phase list and derived schedule figures.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjectShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

func runProjectShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	p, err := project.Get(gormDB, id)
	if err != nil {
		return err
	}
	row, err := project.Summarize(gormDB, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", p.ID)
	fmt.Fprintf(out, "Name:        %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", p.Description)
	}
	if p.HasBaseline() {
		fmt.Fprintf(out, "Baseline:    %s, %d days (taken %s)\n",
			schedule.FormatDate(*p.BaselineStartDate), *p.BaselineDurationDays,
			schedule.FormatDate(*p.BaselineSetDate))
	}
	if row.StartDate != nil && row.EndDate != nil {
		fmt.Fprintf(out, "Schedule:    %s – %s (%d calendar days)\n",
			schedule.FormatDate(*row.StartDate), schedule.FormatDate(*row.EndDate), row.TotalDays)
	}
	fmt.Fprintf(out, "Completion:  %d%%\n", row.Completion)
	fmt.Fprintf(out, "State:       %s (%s)\n", row.State, row.Message)
	if row.DaysOff != nil {
		fmt.Fprintf(out, "Days off:    %+d\n", *row.DaysOff)
	}

	phases, err := phase.ListByProject(gormDB, p.ID)
	if err != nil {
		return err
	}
	if len(phases) == 0 {
		return nil
	}

	fmt.Fprintln(out, "\nPhases:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tSTATUS\tSTART\tDAYS\tMODE\tPROG")
	for i := range phases {
		ph := &phases[i]
		if ph.IsTask {
			continue
		}
		prog := "-"
		if ph.ComputedProgress != nil {
			prog = fmt.Sprintf("%d%%", *ph.ComputedProgress)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			ph.ID, truncate(ph.Name, 30), ph.Status,
			schedule.FormatDate(ph.PlannedStartDate), ph.PlannedDurationDays,
			ph.DurationMode, prog)
	}
	w.Flush()
	return nil
}

func newProjectDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and all its phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := project.Delete(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

func newProjectBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage the project baseline snapshot",
	}

	cmd.AddCommand(newBaselineSetCmd())
	cmd.AddCommand(newBaselineClearCmd())
	return cmd
}

func newBaselineSetCmd() *cobra.Command {
	var (
		configPath string
		startDate  string
		days       int
	)

	cmd := &cobra.Command{
		Use:   "set <project-id>",
		Short: "Take a baseline snapshot",
		Long:  "Records the planned start date and duration to measure future variance against. Fails when a baseline is already set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			start, err := schedule.ParseDate(startDate)
			if err != nil {
				return err
			}
			p, err := project.SetBaseline(gormDB, args[0], start, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline set for %s: %s + %d days\n",
				p.ID, schedule.FormatDate(*p.BaselineStartDate), *p.BaselineDurationDays)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().StringVar(&startDate, "start", "", "baseline start date, YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&days, "days", 0, "baseline duration in calendar days (required)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("days")
	return cmd
}

func newBaselineClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear <project-id>",
		Short: "Clear the baseline snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if _, err := project.ClearBaseline(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline cleared for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

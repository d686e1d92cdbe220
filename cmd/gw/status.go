package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/project"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show schedule health for every project",
		Long:  "Summarizes each project in the org: duration, completion, and schedule state against baseline.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}

			rows, err := project.Summaries(gormDB, cfg.Org)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDAYS\tDONE\tSTATE\tOFF\tPHASES\tTASKS")
			for _, row := range rows {
				off := "-"
				if row.DaysOff != nil {
					off = fmt.Sprintf("%+d", *row.DaysOff)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d%%\t%s\t%s\t%d\t%d\n",
					row.ProjectID, truncate(row.Name, 40), row.TotalDays,
					row.Completion, row.State, off, row.PhaseCount, row.TaskCount)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/config"
	"github.com/zulandar/groundwork/internal/db"
	"gorm.io/gorm"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Groundwork database",
		Long:  "Connects to the configured database and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded config for org %q from %s\n", cfg.Org, configPath)

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "sqlite" {
		fmt.Fprintf(out, "Opened %s\n", cfg.Database.Path)
	} else {
		fmt.Fprintf(out, "Connected to %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	fmt.Fprintln(out, "\nGroundwork database initialized successfully.")
	return nil
}

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	return cfg, gormDB, nil
}

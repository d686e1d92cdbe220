package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zulandar/groundwork/internal/config"
	"github.com/zulandar/groundwork/internal/notify"
	"github.com/zulandar/groundwork/internal/notify/discord"
	"github.com/zulandar/groundwork/internal/notify/slack"
	"github.com/zulandar/groundwork/internal/server"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		withDigest bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Groundwork API server",
		Long:  "Launches the HTTP API. With --digest, also runs the schedule digest daemon on the configured cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, withDigest)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "groundwork.yaml", "path to Groundwork config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVar(&withDigest, "digest", false, "also run the schedule digest daemon")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, withDigest bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if withDigest {
		daemon, err := buildDigestDaemon(cfg, gormDB)
		if err != nil {
			return err
		}
		go func() {
			if err := daemon.Run(ctx); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Error("digest daemon exited")
			}
		}()
	}

	return server.Start(ctx, server.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}

// buildDigestDaemon assembles notifiers from config. A platform is
// enabled when its bot token is set.
func buildDigestDaemon(cfg *config.Config, gormDB *gorm.DB) (*notify.Daemon, error) {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.BotToken != "" {
		n, err := slack.New(slack.Opts{
			BotToken:  cfg.Notify.Slack.BotToken,
			ChannelID: cfg.Notify.Slack.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if cfg.Notify.Discord.BotToken != "" {
		n, err := discord.New(discord.Opts{
			BotToken:  cfg.Notify.Discord.BotToken,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if len(notifiers) == 0 {
		return nil, fmt.Errorf("--digest requires a slack or discord token in config")
	}

	return notify.NewDaemon(notify.DaemonOpts{
		DB:        gormDB,
		OrgID:     cfg.Org,
		Cron:      cfg.Notify.DigestCron,
		Notifiers: notifiers,
	})
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/roomsync/internal/app"
	"github.com/vovakirdan/roomsync/internal/config"
	"github.com/vovakirdan/roomsync/internal/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "roomsync",
		Short:         "tic-tac-toe room client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&overrides.ServerURL, "server", "", "room authority base URL")
	root.PersistentFlags().StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	buildApp := func() (*app.App, error) {
		bootLog := log.New("info")
		cfg, _, err := config.Load(bootLog, configPath)
		if err != nil {
			return nil, err
		}
		cfg.UpdateFrom(overrides)
		return app.New(&cfg, log.New(cfg.LogLevel)), nil
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "create a new room and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			return a.CreateRoom(cmd.Context())
		},
	}

	join := &cobra.Command{
		Use:   "join <room-id> <name>",
		Short: "join a room and play (or spectate if the room is full)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			return a.Play(cmd.Context(), args[0], args[1])
		},
	}

	watch := &cobra.Command{
		Use:   "watch <room-id> [name]",
		Short: "join a room as a spectator",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			name := "viewer-" + uuid.NewString()[:8]
			if len(args) == 2 {
				name = args[1]
			}
			return a.Watch(cmd.Context(), args[0], name)
		},
	}

	root.AddCommand(create, join, watch)
	return root
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/St1cky1/task-manager/internal/board"
	"github.com/St1cky1/task-manager/internal/client"
	"github.com/spf13/cobra"
)

var Version = "dev"

type app struct {
	server  string
	timeout time.Duration
	output  string

	api *client.Client
}

func (a *app) board() *board.Board {
	return board.New(a.api)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - command line client for the task manager",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != outputTable && a.output != outputYAML {
				return fmt.Errorf("unknown output format %q (table|yaml)", a.output)
			}
			a.api = client.New(a.server, a.timeout)
			return nil
		},
	}

	server := os.Getenv("TASKCTL_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVarP(&a.server, "server", "s", server, "task manager base URL")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format (table|yaml)")

	rootCmd.AddCommand(
		listCmd(a),
		addCmd(a),
		editCmd(a),
		toggleCmd(a),
		rmCmd(a),
		statusCmd(a),
		categoryCmd(a),
		searchCmd(a),
		filterCmd(a),
		historyCmd(a),
		categoriesCmd(a),
		registerCmd(a),
		loginCmd(a),
		suggestCmd(a),
		recommendCmd(a),
	)
	return rootCmd
}

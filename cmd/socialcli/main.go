package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/cli"
	"github.com/example/socialcli/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "socialcli",
		Short:   "socialcli - schedule social media posts from the command line",
		Version: version.String(),
		Long: `socialcli queues posts and comments written as plain files and publishes
them at their scheduled time through a provider API. Comments are tied to a
parent post and wait until the parent has been published.`,
	}

	rootCmd.AddCommand(cli.PostCmd())
	rootCmd.AddCommand(cli.CommentCmd())
	rootCmd.AddCommand(cli.QueueCmd())
	rootCmd.AddCommand(cli.DaemonCmd())
	rootCmd.AddCommand(cli.LoginCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/wire"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage the scheduling queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		status, _ := cmd.Flags().GetString("status")
		provider, _ := cmd.Flags().GetString("provider")
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := wire.ScheduleService().ListEntries(cmd.Context(), primary.ScheduleFilters{
			Kind:     kind,
			Status:   status,
			Provider: provider,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list queue: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("Queue is empty")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "UUID\tKIND\tPROVIDER\tPUBLISH AT\tSTATUS\tFILE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				shortUUID(e.UUID), e.Kind, e.Provider,
				e.PublishAt.Local().Format(timeFormat),
				statusMarker(e.Status), filepath.Base(e.FilePath))
		}
		return w.Flush()
	},
}

var queueShowCmd = &cobra.Command{
	Use:   "show [uuid]",
	Short: "Show a scheduled entry and its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := wire.ScheduleService().GetEntry(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		printEntry(entry)

		comments, err := wire.ScheduleService().ListComments(cmd.Context(), entry.UUID)
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(comments) > 0 {
			fmt.Printf("\nComments (%d):\n", len(comments))
			for _, c := range comments {
				fmt.Printf("  %s  %s  %s\n",
					shortUUID(c.UUID),
					c.PublishAt.Local().Format(timeFormat),
					statusMarker(c.Status))
			}
		}
		return nil
	},
}

var queueCancelCmd = &cobra.Command{
	Use:   "cancel [uuid]",
	Short: "Cancel a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.ScheduleService().CancelEntry(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to cancel entry: %w", err)
		}
		fmt.Printf("✓ Cancelled %s\n", args[0])
		return nil
	},
}

// shortUUID abbreviates a UUID for table output.
func shortUUID(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

func init() {
	queueListCmd.Flags().StringP("kind", "k", "", "Filter by kind (post, comment)")
	queueListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, published, failed)")
	queueListCmd.Flags().StringP("provider", "p", "", "Filter by provider")
	queueListCmd.Flags().IntP("limit", "n", 0, "Limit the number of entries")

	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueShowCmd)
	queueCmd.AddCommand(queueCancelCmd)
}

func QueueCmd() *cobra.Command {
	return queueCmd
}

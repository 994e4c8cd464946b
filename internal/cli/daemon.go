package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/wire"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the scheduling daemon",
	Long: `Poll the queue and publish entries whose time has come. Posts are
processed before comments on every tick. Stops cleanly on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		if interval <= 0 {
			return fmt.Errorf("interval must be positive")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := wire.SchedulerService()

		if once {
			result, err := scheduler.RunOnce(ctx)
			if err != nil {
				return fmt.Errorf("tick failed: %w", err)
			}
			fmt.Printf("✓ Tick complete: %d published, %d failed, %d deferred\n",
				result.PostsPublished+result.CommentsPublished,
				result.PostsFailed+result.CommentsFailed,
				result.CommentsDeferred)
			return nil
		}

		if err := scheduler.Run(ctx, interval); err != nil {
			return fmt.Errorf("daemon stopped with error: %w", err)
		}
		return nil
	},
}

func init() {
	daemonCmd.Flags().DurationP("interval", "i", 60*time.Second, "Polling interval")
	daemonCmd.Flags().Bool("once", false, "Process one tick and exit")
}

func DaemonCmd() *cobra.Command {
	return daemonCmd
}

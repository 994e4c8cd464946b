package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/wire"
)

var commentCmd = &cobra.Command{
	Use:   "comment [file]",
	Short: "Schedule a comment on a scheduled post",
	Long: `Parse a comment file and queue it for publication under a parent post.
The comment must be scheduled at least 5 minutes after its parent and is
published only once the parent has been published.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")
		provider, _ := cmd.Flags().GetString("provider")
		author, _ := cmd.Flags().GetString("author")
		parent, _ := cmd.Flags().GetString("parent")

		if parent == "" {
			return fmt.Errorf("a comment requires --parent with the UUID of the scheduled post")
		}

		// No --at and no front matter schedule: the service defaults the
		// comment to parent publish time + the minimum offset.
		req, err := buildRequest(models.KindComment, args[0], at, provider, author, false)
		if err != nil {
			return err
		}
		req.ParentUUID = parent

		resp, err := wire.ScheduleService().Schedule(cmd.Context(), *req)
		if err != nil {
			return fmt.Errorf("failed to schedule comment: %w", err)
		}

		fmt.Printf("✓ Scheduled comment %s\n", resp.UUID)
		fmt.Printf("  Parent:     %s\n", parent)
		fmt.Printf("  Publish at: %s\n", resp.Entry.PublishAt.Local().Format(timeFormat))
		return nil
	},
}

func init() {
	commentCmd.Flags().String("parent", "", "UUID of the parent post (required)")
	commentCmd.Flags().String("at", "", "Publish time (e.g. '2026-09-01 14:05'), defaults to parent + 5m")
	commentCmd.Flags().StringP("provider", "p", "", "Provider to publish with (defaults to front matter or config)")
	commentCmd.Flags().StringP("author", "a", "", "Author identifier")
}

func CommentCmd() *cobra.Command {
	return commentCmd
}

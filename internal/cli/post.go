package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/parser"
	"github.com/example/socialcli/internal/ports/primary"
	"github.com/example/socialcli/internal/wire"
)

var postCmd = &cobra.Command{
	Use:   "post [file]",
	Short: "Schedule a post from a file",
	Long:  "Parse a post file and queue it for publication at the scheduled time.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")
		provider, _ := cmd.Flags().GetString("provider")
		author, _ := cmd.Flags().GetString("author")

		req, err := buildRequest(models.KindPost, args[0], at, provider, author, true)
		if err != nil {
			return err
		}

		resp, err := wire.ScheduleService().Schedule(cmd.Context(), *req)
		if err != nil {
			return fmt.Errorf("failed to schedule post: %w", err)
		}

		fmt.Printf("✓ Scheduled post %s\n", resp.UUID)
		fmt.Printf("  Provider:   %s\n", resp.Entry.Provider)
		fmt.Printf("  Publish at: %s\n", resp.Entry.PublishAt.Local().Format(timeFormat))
		return nil
	},
}

// buildRequest parses a post file and resolves the schedule parameters,
// with flags taking precedence over front matter and config defaults.
// With requireTime false a missing publish time is left zero for the
// service to default (comments inherit parent time + minimum offset).
func buildRequest(kind, path, at, provider, author string, requireTime bool) (*primary.ScheduleRequest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	post, err := parser.Parse(absPath)
	if err != nil {
		return nil, err
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}

	var publishAt time.Time
	if at != "" {
		publishAt, err = parser.ParseTime(at)
		if err != nil {
			return nil, fmt.Errorf("invalid --at value: %w", err)
		}
	} else {
		scheduled, ok, err := post.ScheduleTime()
		if err != nil {
			return nil, err
		}
		if !ok && requireTime {
			return nil, fmt.Errorf("no publish time: use --at or a schedule field in the front matter")
		}
		if ok {
			publishAt = scheduled
		}
	}

	if provider == "" {
		provider = post.Meta.Provider
	}
	if provider == "" {
		provider = wire.Config().DefaultProvider
	}

	return &primary.ScheduleRequest{
		Kind:      kind,
		Provider:  provider,
		Author:    author,
		FilePath:  absPath,
		PublishAt: publishAt,
	}, nil
}

func init() {
	postCmd.Flags().String("at", "", "Publish time (e.g. '2026-09-01 14:00'), overrides front matter")
	postCmd.Flags().StringP("provider", "p", "", "Provider to publish with (defaults to front matter or config)")
	postCmd.Flags().StringP("author", "a", "", "Author identifier")
}

func PostCmd() *cobra.Command {
	return postCmd
}

// Package cli implements the socialcli command tree.
package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/example/socialcli/internal/models"
	"github.com/example/socialcli/internal/ports/primary"
)

const timeFormat = "2006-01-02 15:04"

// statusMarker renders a colored status label for queue output.
func statusMarker(status string) string {
	switch status {
	case models.StatusPending:
		return color.New(color.FgYellow).Sprint("pending")
	case models.StatusPublished:
		return color.New(color.FgGreen).Sprint("published")
	case models.StatusFailed:
		return color.New(color.FgRed).Sprint("failed")
	default:
		return status
	}
}

// printEntry writes the detail view of a single schedule entry.
func printEntry(entry *primary.ScheduleEntry) {
	fmt.Printf("UUID:       %s\n", entry.UUID)
	fmt.Printf("Kind:       %s\n", entry.Kind)
	fmt.Printf("Provider:   %s\n", entry.Provider)
	if entry.Author != "" {
		fmt.Printf("Author:     %s\n", entry.Author)
	}
	fmt.Printf("File:       %s\n", entry.FilePath)
	fmt.Printf("Publish at: %s\n", entry.PublishAt.Local().Format(timeFormat))
	fmt.Printf("Status:     %s\n", statusMarker(entry.Status))
	if entry.ExternalID != "" {
		fmt.Printf("External:   %s\n", entry.ExternalID)
	}
	if entry.ParentUUID != "" {
		fmt.Printf("Parent:     %s\n", entry.ParentUUID)
	}
	if entry.BlockedReason != "" {
		fmt.Printf("Blocked:    %s\n", entry.BlockedReason)
	}
}

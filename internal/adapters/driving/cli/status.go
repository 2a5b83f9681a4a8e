package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog and queue state",
	RunE:  runStatus,
}

// statusOrder fixes the display order of document lifecycle states.
var statusOrder = []domain.DocumentStatus{
	domain.DocumentPending,
	domain.DocumentIndexing,
	domain.DocumentIndexed,
	domain.DocumentReindexing,
	domain.DocumentFailed,
	domain.DocumentDeleted,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusReporter == nil {
		return errors.New("status service not configured")
	}

	ctx := context.Background()

	status, err := statusReporter.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	cmd.Println("Documents:")
	total := 0
	for _, s := range statusOrder {
		count := status.Documents[s]
		total += count
		if count > 0 {
			cmd.Printf("  %-10s %d\n", s, count)
		}
	}
	if total == 0 {
		cmd.Println("  (none)")
	}

	cmd.Printf("\nQueued jobs: %d\n", status.QueuedJobs)

	if len(status.RecentJobs) > 0 {
		cmd.Println("\nRecent jobs:")
		for _, job := range status.RecentJobs {
			line := fmt.Sprintf("  %-7s %-9s %s", job.Type, job.Status, job.DocumentID)
			if job.Error != "" {
				line += " (" + job.Error + ")"
			}
			cmd.Println(line)
		}
	}

	return nil
}

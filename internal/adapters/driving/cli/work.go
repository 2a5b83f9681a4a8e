package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Execute queued index jobs",
	Long: `Picks up queued jobs oldest first and executes them. Indexing
failures mark the job and document failed and the pass continues with
the next job.`,
	RunE: runWork,
}

// workLimit is a flag for the work command.
var workLimit int

func init() {
	workCmd.Flags().IntVarP(&workLimit, "limit", "l", 0, "Maximum jobs to process (0 uses the default batch size)")
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, _ []string) error {
	if indexWorker == nil {
		return errors.New("index worker not configured")
	}

	ctx := context.Background()

	report, err := indexWorker.ProcessJobs(ctx, workLimit)
	if err != nil {
		return fmt.Errorf("work failed: %w", err)
	}

	if report.Processed == 0 {
		cmd.Println("No queued jobs.")
		return nil
	}

	cmd.Printf("Processed %d jobs: %d succeeded, %d failed.\n",
		report.Processed, report.Succeeded, report.Failed)
	if report.Remaining > 0 {
		cmd.Printf("%d jobs still queued.\n", report.Remaining)
	}
	return nil
}

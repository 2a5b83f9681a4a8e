package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/core/domain"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Align the catalog with the upload directory",
	Long: `Compares the upload directory, the document catalog, and the live
vector collections, then queues index, reindex, and delete jobs for the
differences. Running it twice in a row without external changes queues
nothing the second time.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if reconcilerService == nil {
		return errors.New("reconciler service not configured")
	}

	ctx := context.Background()

	summary, err := reconcilerService.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	cmd.Printf("Scanned %d files, %d catalog records.\n", summary.LocalFiles, summary.CatalogRecords)

	if summary.Degraded {
		cmd.Println("Warning: vector store unreachable, drift detection assumed all collections missing.")
	}

	printSampleCategory(cmd, "To index", summary.ToIndex, summary.Samples.Index)
	printSampleCategory(cmd, "To reindex", summary.ToReindex, summary.Samples.Reindex)
	printSampleCategory(cmd, "To delete", summary.ToDelete, summary.Samples.Delete)
	if summary.CollectionsMissing > 0 {
		printSampleCategory(cmd, "Missing collections", summary.CollectionsMissing, summary.Samples.CollectionsMissing)
	}

	if summary.Enqueued == 0 {
		cmd.Println("Catalog is up to date, nothing queued.")
		return nil
	}

	cmd.Printf("Queued %d jobs (%d records created, %d updated).\n",
		summary.Enqueued, summary.Created, summary.Updated)
	cmd.Println("Run 'researchbot work' to execute them.")
	return nil
}

// printSampleCategory prints a count plus up to SampleLimit paths.
func printSampleCategory(cmd *cobra.Command, label string, count int, samples []string) {
	if count == 0 {
		return
	}

	cmd.Printf("%s: %d\n", label, count)
	for _, path := range samples {
		cmd.Printf("  %s\n", path)
	}
	if count > len(samples) && len(samples) == domain.SampleLimit {
		cmd.Printf("  ... and %d more\n", count-len(samples))
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage cataloged documents",
	Long:  `List, inspect, or remove documents from the catalog.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document and queue collection cleanup",
	Long: `Deletes the document's file from the upload directory, marks the
record deleted, and queues a job to drop its vector collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentRemove,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentManager == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	docs, err := documentManager.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents cataloged.")
		return nil
	}

	cmd.Println("Cataloged documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Path:   %s\n", docs[i].SourcePath)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentManager == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	doc, err := documentManager.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Path:       %s\n", doc.SourcePath)
	cmd.Printf("  Status:     %s\n", doc.Status)
	cmd.Printf("  Size:       %d bytes\n", doc.FileSize)
	cmd.Printf("  Checksum:   %s\n", doc.Checksum)
	cmd.Printf("  Version:    %d\n", doc.Version)
	if doc.Collection != "" {
		cmd.Printf("  Collection: %s\n", doc.Collection)
	}
	cmd.Printf("  Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:    %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if documentManager == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := documentManager.Remove(ctx, docID); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Document %s removed, collection cleanup queued.\n", docID)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Copy a file into the upload directory and queue indexing",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentManager == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	doc, err := documentManager.Upload(ctx, args[0])
	if errors.Is(err, domain.ErrAlreadyExists) {
		cmd.Println("Document already uploaded with identical content, nothing to do.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s\n", doc.SourcePath)
	cmd.Printf("  ID:     %s\n", doc.ID)
	cmd.Printf("  Status: %s\n", doc.Status)
	cmd.Println("Run 'researchbot work' to index it.")
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/researchbot/researchbot/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about an indexed document",
	Long: `Retrieves the most relevant chunks from the document's vector
collection and generates an answer grounded in them.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

// askShowSources is a flag for the ask command.
var askShowSources bool

func init() {
	askCmd.Flags().BoolVarP(&askShowSources, "sources", "s", false, "Show the source excerpts the answer was grounded in")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if questionAnswerer == nil {
		return errors.New("chat service not configured")
	}

	docID := args[0]
	question := strings.Join(args[1:], " ")
	ctx := context.Background()

	answer, err := questionAnswerer.Ask(ctx, docID, question)
	if errors.Is(err, domain.ErrNotIndexed) {
		return fmt.Errorf("document is not indexed yet, run 'researchbot work' first: %w", err)
	}
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return errors.New("no LLM configured, set an API key with 'researchbot config set ai.api_key <key>'")
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askShowSources && len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for i, hit := range answer.Sources {
			cmd.Printf("  [%d] page %d (relevance %.2f)\n", i+1, hit.Chunk.Page, hit.Relevance)
		}
	}

	return nil
}

// ABOUTME: Chat command asks a question against an ingested document
// ABOUTME: Prints the grounded answer, with supporting chunks in verbose mode
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/models"
)

var (
	chatModel       string
	chatTemperature float64
	chatMaxTokens   int
	chatMaxChunks   int
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat COLLECTION_ID QUERY",
		Short: "Ask a question about an uploaded document",
		Long: `Ask a question about an uploaded document.

Retrieves the most relevant chunks from the collection and generates an
answer grounded only in that content.

Examples:
  docchat chat abc-123 "What was the Q3 budget?"
  docchat chat --max-chunks 10 --temperature 0 abc-123 "List all deadlines"`,
		Args: cobra.ExactArgs(2),
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatModel, "model", "", "Generation model (default: gpt-4o)")
	cmd.Flags().Float64Var(&chatTemperature, "temperature", models.DefaultTemperature, "Sampling temperature (0-2)")
	cmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "Maximum answer tokens (default: 10000)")
	cmd.Flags().IntVar(&chatMaxChunks, "max-chunks", 0, "Maximum chunks to retrieve (default: 5)")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := buildService()
	if err != nil {
		return err
	}
	defer cleanup()

	params := models.GenerationParams{
		Model:       chatModel,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}

	result, err := svc.Chat(cmd.Context(), args[0], args[1], chatMaxChunks, params)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Answer)

	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "\n--- %d supporting chunk(s) ---\n", result.ChunksFound)
		for i, chunk := range result.Chunks {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] score %.3f: %s\n", i+1, chunk.Score, truncate(chunk.Content, 120))
		}
	}
	return nil
}

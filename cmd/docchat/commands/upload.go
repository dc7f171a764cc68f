// ABOUTME: Upload command ingests a local document into a new collection
// ABOUTME: Prints the collection id to use with the chat command
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadChunkSize int

// NewUploadCmd creates the upload command
func NewUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload and index a document",
		Long: `Upload and index a document.

Extracts text from a txt, markdown, or PDF file, splits it into chunks,
and indexes it into a new collection in the grounding store.

Examples:
  docchat upload report.pdf
  docchat upload --chunk-size 300 notes.md`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().IntVar(&uploadChunkSize, "chunk-size", 0, "Maximum chunk size in characters (default: 500)")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := buildService()
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	result, err := svc.Ingest(cmd.Context(), filepath.Base(args[0]), data, uploadChunkSize)
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %s into %d chunks\n", result.DocumentName, result.ChunksCount)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.CollectionID)
	return nil
}

// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Entry point for all docchat CLI operations
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

const banner = `
███████╗  ██████╗  ██████╗ ██████╗██╗  ██╗ █████╗ ████████╗
██╔═══██╗██╔═══██╗██╔════╝██╔════╝██║  ██║██╔══██╗╚══██╔══╝
██║   ██║██║   ██║██║     ██║     ███████║███████║   ██║
██║   ██║██║   ██║██║     ██║     ██╔══██║██╔══██║   ██║
███████╔╝╚██████╔╝╚██████╗╚██████╗██║  ██║██║  ██║   ██║
╚══════╝  ╚═════╝  ╚═════╝ ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents",
		Long: banner + `
Docchat indexes documents (text, markdown, PDF) into a remote grounding
store and answers questions about them using an LLM, grounded strictly
in the document's own content.

Requires grounding store credentials and an LLM API key in the
environment or a .env file; run "docchat serve" for the HTTP API or use
the upload/chat commands directly.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewUploadCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewCollectionsCmd())
	rootCmd.AddCommand(NewMCPCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

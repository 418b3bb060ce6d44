// Package cli implements the command-line interface. Commands receive
// their services through SetKnowledgeBase before Execute runs; the
// wiring itself lives in cmd/ragstore.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/veritas-labs/ragstore/internal/core/ports/driving"
	"github.com/veritas-labs/ragstore/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	knowledgeBase driving.KnowledgeBase
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "ragstore",
	Short: "Ingest documents and search them semantically",
	Long: `ragstore ingests heterogeneous documents (PDF, DOCX, XLSX, TXT,
ZIP archives and more), splits them into overlapping chunks, embeds
each chunk and answers natural-language queries by similarity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetKnowledgeBase injects the service all commands run against.
func SetKnowledgeBase(kb driving.KnowledgeBase) {
	knowledgeBase = kb
}

// Execute runs the root command and renders any failure.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln(errorStyle.Render("Error: " + err.Error()))
		return err
	}
	return nil
}

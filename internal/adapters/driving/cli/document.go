package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	listJSON   bool
	clearForce bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show details for one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every document and chunk",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output documents as JSON")
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	docs, err := knowledgeBase.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if listJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println(mutedStyle.Render("No documents."))
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%d document(s)", len(docs))))
	for _, doc := range docs {
		cmd.Printf("  %s  %s\n", doc.ID,
			mutedStyle.Render(fmt.Sprintf("%s, %d chunks, %s",
				doc.Filename, doc.ChunkCount, doc.CreatedAt.Format("2006-01-02 15:04"))))
	}
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	doc, err := knowledgeBase.GetDocument(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("getting %s: %w", args[0], err)
	}

	cmd.Println(titleStyle.Render(doc.ID))
	cmd.Printf("  File:    %s\n", doc.Filename)
	cmd.Printf("  Size:    %d bytes\n", doc.FileSize)
	cmd.Printf("  Chunks:  %d\n", doc.ChunkCount)
	cmd.Printf("  Added:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for key := range doc.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		cmd.Println("  Metadata:")
		for _, key := range keys {
			cmd.Printf("    %s: %v\n", key, doc.Metadata[key])
		}
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	if err := knowledgeBase.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("deleting %s: %w", args[0], err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("Deleted %q", args[0])))
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	if !clearForce {
		cmd.Print("This removes every document and chunk. Type 'yes' to continue: ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "yes" {
			cmd.Println(mutedStyle.Render("Aborted."))
			return nil
		}
	}

	if err := knowledgeBase.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("clearing knowledge base: %w", err)
	}
	cmd.Println(successStyle.Render("Knowledge base cleared"))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	stats, err := knowledgeBase.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	cmd.Println(titleStyle.Render("Knowledge base"))
	cmd.Printf("  Documents:  %d\n", stats.DocumentCount)
	cmd.Printf("  Chunks:     %d\n", stats.ChunkCount)
	cmd.Printf("  Model:      %s\n", stats.EmbeddingModel)
	cmd.Printf("  Dimensions: %d\n", stats.EmbeddingDim)
	cmd.Printf("  Threshold:  %.2f\n", stats.SimilarityThreshold)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
)

var (
	addDocID    string
	addMetadata []string
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Extracts text from the file, chunks and embeds it, and stores the
result. The document ID defaults to the file name with unsupported
characters replaced; pass --id to choose one explicitly.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDocID, "id", "", "document ID (defaults to a sanitised file name)")
	addCmd.Flags().StringArrayVarP(&addMetadata, "meta", "m", nil, "metadata key=value pair (repeatable)")
	rootCmd.AddCommand(addCmd)
}

// docIDSanitizer replaces characters outside the allowed ID alphabet.
var docIDSanitizer = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// defaultDocID derives an ID from the file name stem.
func defaultDocID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	id := strings.Trim(docIDSanitizer.ReplaceAllString(stem, "_"), "_")
	if id == "" {
		id = "document"
	}
	if len(id) > 255 {
		id = id[:255]
	}
	return id
}

// parseMetadata converts repeated key=value flags into a metadata map.
func parseMetadata(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata pair %q, expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	path := args[0]
	docID := addDocID
	if docID == "" {
		docID = defaultDocID(path)
	}

	metadata, err := parseMetadata(addMetadata)
	if err != nil {
		return err
	}

	doc, err := knowledgeBase.AddDocument(context.Background(), path, docID, metadata)
	if err != nil {
		return fmt.Errorf("adding %s: %w", filepath.Base(path), err)
	}

	cmd.Println(successStyle.Render(fmt.Sprintf("Added %q", doc.ID)))
	cmd.Printf("  %s (%d bytes, %d chunks)\n", doc.Filename, doc.FileSize, doc.ChunkCount)
	return nil
}

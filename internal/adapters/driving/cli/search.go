package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veritas-labs/ragstore/internal/core/domain"
)

var (
	searchTopK      int
	searchThreshold float64
	searchFilter    []string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored documents by meaning",
	Long: `Embeds the query and returns the most similar chunks across all
ingested documents, ranked by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", -1, "minimum similarity in [0,1] (-1 uses the configured default)")
	searchCmd.Flags().StringArrayVarP(&searchFilter, "filter", "f", nil, "metadata equality filter key=value (repeatable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if knowledgeBase == nil {
		return errors.New("knowledge base not configured")
	}

	filter, err := parseMetadata(searchFilter)
	if err != nil {
		return err
	}

	query := domain.SearchQuery{
		Text:      args[0],
		TopK:      searchTopK,
		Threshold: searchThreshold,
		Filter:    filter,
	}

	results, err := knowledgeBase.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	renderResults(cmd, results)
	return nil
}

func renderResults(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println(mutedStyle.Render("No results."))
		return
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%d result(s)", len(results))))
	cmd.Println()
	for i, res := range results {
		header := fmt.Sprintf("[%d] %s %s", i+1,
			scoreStyle.Render(fmt.Sprintf("%.3f", res.Similarity)),
			res.SourceDoc)
		cmd.Println(header)

		location := fmt.Sprintf("doc=%s chunk=%d", res.DocID, res.Position)
		if res.Page != nil {
			location += fmt.Sprintf(" page=%d", *res.Page)
		}
		cmd.Println("    " + mutedStyle.Render(location))
		cmd.Println("    " + snippet(res.Text, 200))
		cmd.Println()
	}
}

// snippet truncates text to at most n runes on a single line.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

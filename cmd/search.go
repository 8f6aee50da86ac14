package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/app"
)

var (
	searchLimit    int
	searchDocument string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search document chunks without generating an answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results (0 uses the configured default)")
	searchCmd.Flags().StringVar(&searchDocument, "document", "", "restrict the search to one document ID")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	if err := checkAPIKey(); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := documentScope(searchDocument)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := a.Service.Search(ctx, user, query, searchLimit, opts...)
	if err != nil {
		return fmt.Errorf("searching documents: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching chunks found.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s (chunk %d, similarity %.2f)\n", i+1, r.DocumentName, r.ChunkIndex, r.Similarity)
		fmt.Printf("   %s\n", r.Excerpt)
	}
	return nil
}

// Package cmd implements the docsage command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/docqa"
)

// userID scopes every command; all data access is per user.
var userID string

var rootCmd = &cobra.Command{
	Use:   "docsage",
	Short: "Docsage - question answering over your documents",
	Long: `Docsage ingests PDF, DOCX, Markdown and plain text documents and
answers questions about them using retrieval-augmented generation.

Upload documents, then ask:

  docsage upload report.pdf
  docsage ask "what were the quarterly revenue figures?"`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user the operation is scoped to")
}

// requireUser resolves the acting user from --user or DOCSAGE_USER.
func requireUser() (string, error) {
	if userID != "" {
		return userID, nil
	}
	if env := os.Getenv("DOCSAGE_USER"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no user specified: pass --user or set DOCSAGE_USER")
}

// documentScope parses an optional --document flag value into
// retrieval options.
func documentScope(raw string) ([]docqa.RetrieveOption, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid document id %q: %w", raw, err)
	}
	return []docqa.RetrieveOption{docqa.WithDocument(id)}, nil
}

// checkAPIKey verifies Gemini credentials before touching the network.
func checkAPIKey() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Docsage needs a Gemini API key for embedding and generation:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Get your API key at: https://ai.google.dev/")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}

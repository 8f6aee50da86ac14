package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/app"
)

var (
	showSources bool
	askDocument string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&showSources, "sources", true, "show source documents with the answer")
	askCmd.Flags().StringVar(&askDocument, "document", "", "restrict the answer to one document ID")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	opts, err := documentScope(askDocument)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	answer, err := a.Service.Ask(ctx, user, question, opts...)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Println(answer.Text)

	if showSources && len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range answer.Sources {
			fmt.Printf("  %s (similarity %.2f)\n", src.Name, src.Similarity)
		}
	}
	fmt.Printf("\nConfidence: %.2f  Type: %s", answer.Confidence, answer.QuestionType)
	if !answer.Generated {
		fmt.Print("  (extracted from documents, generation unavailable)")
	}
	fmt.Println()
	return nil
}

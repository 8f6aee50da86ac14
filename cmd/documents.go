package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/app"
	"github.com/docsage/docsage/internal/document"
	"github.com/docsage/docsage/internal/storage"
)

var (
	listStatus string
	listType   string
	listTag    string
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded documents",
	RunE:    runDocumentsList,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents, newest first",
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one document's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	RunE:  runDocumentsStats,
}

func init() {
	for _, cmd := range []*cobra.Command{documentsCmd, documentsListCmd} {
		cmd.Flags().StringVar(&listStatus, "status", "", "only documents with this status (processing, processed, failed)")
		cmd.Flags().StringVar(&listType, "type", "", "only documents of this type (pdf, txt, md, docx)")
		cmd.Flags().StringVar(&listTag, "tag", "", "only documents carrying this tag")
	}
	documentsCmd.AddCommand(documentsListCmd, documentsShowCmd, documentsStatsCmd)
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	filter := storage.ListFilter{
		Status: document.Status(listStatus),
		Type:   document.Type(listType),
		Tag:    listTag,
	}
	docs, err := a.Service.ListDocuments(ctx, user, filter)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No documents uploaded yet.")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%s  %-10s  %-12s  %4d chunks  %8s  %s\n",
			doc.ID, doc.Type, doc.Status, doc.ChunkCount, humanSize(doc.SizeBytes), doc.Name)
	}
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", args[0], err)
	}

	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.Service.Get(ctx, user, id)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	printDocument(doc)
	return nil
}

func runDocumentsStats(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Service.Stats(ctx, user)
	if err != nil {
		return fmt.Errorf("loading stats: %w", err)
	}

	fmt.Printf("Documents: %d\n", stats.Documents)
	fmt.Printf("Processed: %d\n", stats.Processed)
	fmt.Printf("Failed:    %d\n", stats.Failed)
	fmt.Printf("Chunks:    %d\n", stats.TotalChunks)
	return nil
}

func printDocument(doc document.Document) {
	fmt.Printf("ID:       %s\n", doc.ID)
	fmt.Printf("Name:     %s\n", doc.Name)
	fmt.Printf("Type:     %s\n", doc.Type)
	fmt.Printf("Size:     %s\n", humanSize(doc.SizeBytes))
	fmt.Printf("Status:   %s\n", doc.Status)
	fmt.Printf("Chunks:   %d\n", doc.ChunkCount)
	fmt.Printf("Uploaded: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if doc.Description != "" {
		fmt.Printf("About:    %s\n", doc.Description)
	}
	if len(doc.Tags) > 0 {
		fmt.Printf("Tags:     %s\n", strings.Join(doc.Tags, ", "))
	}
	if doc.ErrorMessage != "" {
		fmt.Printf("Error:    %s\n", doc.ErrorMessage)
	}
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

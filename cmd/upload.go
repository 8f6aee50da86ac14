package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/app"
	"github.com/docsage/docsage/internal/docqa"
)

var (
	uploadDescription string
	uploadTags        []string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload and index one or more documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadDescription, "description", "", "free-text description stored with the documents")
	uploadCmd.Flags().StringSliceVar(&uploadTags, "tags", nil, "tags stored with the documents, comma separated")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
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

	var failures int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failures++
			continue
		}

		doc, err := a.Service.Upload(ctx, user, filepath.Base(path), data,
			docqa.WithDescription(uploadDescription), docqa.WithTags(uploadTags...))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failures++
			continue
		}

		fmt.Printf("%s  %s  %s  %d chunks\n", doc.ID, doc.Name, doc.Status, doc.ChunkCount)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d uploads failed", failures, len(args))
	}
	return nil
}

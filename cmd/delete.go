package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/docsage/docsage/internal/app"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete documents and their indexed chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(args))
	for i, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid document id %q: %w", arg, err)
		}
		ids[i] = id
	}

	ctx := cmd.Context()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range ids {
		if err := a.Service.DeleteDocument(ctx, user, id); err != nil {
			return fmt.Errorf("deleting %s: %w", id, err)
		}
		fmt.Printf("deleted %s\n", id)
	}
	return nil
}

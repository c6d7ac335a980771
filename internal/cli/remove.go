package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a property",
		Long:  "Remove a property with its categories and reviews.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	repo, release, cfg, err := openCatalog()
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := repo.Delete(ctx, name); err != nil {
		return err
	}
	invalidatePages(cmd, cfg, name)

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"name":    name,
			"removed": true,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Property %q removed.\n", name)
	return nil
}

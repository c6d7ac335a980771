package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staylist/internal/listing"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all properties",
		Long:  "List every property in the catalog.",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	repo, release, _, err := openCatalog()
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	props, err := repo.List(ctx)
	if err != nil {
		return err
	}

	if isJSON() {
		if props == nil {
			props = []*listing.Property{}
		}
		return printJSON(cmd.OutOrStdout(), props)
	}

	return printPropertyTable(cmd.OutOrStdout(), props)
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staylist/internal/listing"
	"github.com/evcraddock/staylist/internal/view"
)

func newCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <name>",
		Short: "Render a property card",
		Long:  "Print the HTML summary card for a property.",
		Args:  cobra.ExactArgs(1),
		RunE:  runCard,
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Render a property detail view",
		Long:  "Print the HTML detail view for a property. Unknown names print the \"not available\" view.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runCard(cmd *cobra.Command, args []string) error {
	prop, err := lookupProperty(cmd, args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), prop)
	}

	r, err := view.New()
	if err != nil {
		return err
	}
	if err := r.Card(cmd.OutOrStdout(), prop); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	prop, err := lookupProperty(cmd, args[0])
	if err != nil && !errors.Is(err, listing.ErrNotFound) {
		return err
	}

	if isJSON() {
		if prop == nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), prop)
	}

	r, err := view.New()
	if err != nil {
		return err
	}
	if err := r.Detail(cmd.OutOrStdout(), prop); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// lookupProperty fetches a property by name from the active catalog.
func lookupProperty(cmd *cobra.Command, name string) (*listing.Property, error) {
	repo, release, _, err := openCatalog()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return repo.GetByName(ctx, name)
}

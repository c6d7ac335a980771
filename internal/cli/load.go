package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staylist/internal/cache"
	"github.com/evcraddock/staylist/internal/config"
	"github.com/evcraddock/staylist/internal/listing"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load a catalog file",
		Long:  "Load properties from a YAML or JSON catalog file. Properties are matched by name; existing ones are replaced.",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	props, err := listing.Decode(f, listing.FormatFromPath(path))
	if err != nil {
		return err
	}

	repo, release, cfg, err := openCatalog()
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	saved := make([]*listing.Property, 0, len(props))
	for _, p := range props {
		s, err := repo.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("loading %q: %w", p.Name, err)
		}
		saved = append(saved, s)
	}

	names := make([]string, len(saved))
	for i, p := range saved {
		names[i] = p.Name
	}
	invalidatePages(cmd, cfg, names...)

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, saved)
	}

	fmt.Fprintf(out, "Loaded %d properties.\n", len(saved))
	return nil
}

// invalidatePages drops cached detail pages after a local catalog write.
// API writes against --server are invalidated by the server itself.
func invalidatePages(cmd *cobra.Command, cfg config.Config, names ...string) {
	if cfg.RedisAddr == "" || isRemote() {
		return
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pages := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() {
		_ = pages.Close()
	}()
	for _, name := range names {
		if err := pages.Del(ctx, cache.DetailKey(name)); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: invalidating cached pages: %v\n", err)
			return
		}
	}
}

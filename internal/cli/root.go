// Package cli defines the cobra command tree for staylist.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staylist/internal/client"
	"github.com/evcraddock/staylist/internal/config"
	"github.com/evcraddock/staylist/internal/db"
	"github.com/evcraddock/staylist/internal/listing"
)

var (
	flagFormat string
	flagDB     string
	flagConfig string
	flagServer string
	flagToken  string
)

// catalog is the set of operations the CLI needs. listing.Repository serves
// the local database and client.Client serves a remote staylist server.
type catalog interface {
	List(ctx context.Context) ([]*listing.Property, error)
	GetByName(ctx context.Context, name string) (*listing.Property, error)
	Upsert(ctx context.Context, p *listing.Property) (*listing.Property, error)
	Delete(ctx context.Context, name string) error
}

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "staylist",
		Short:         "Browse rental stays",
		Long:          "A catalog of rental stays. Load listings from a YAML or JSON file, render property cards and detail pages, or serve them over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/staylist/listings.db)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/staylist/config.yaml)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "staylist server URL; when set, commands use its API instead of the local database")
	root.PersistentFlags().StringVar(&flagToken, "token", "", "API token for catalog writes against --server (default from config)")

	root.AddCommand(
		newServeCmd(),
		newLoadCmd(),
		newListCmd(),
		newCardCmd(),
		newShowCmd(),
		newRemoveCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config file named by --config, or the default one.
func loadConfig() (config.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openDB opens the SQLite database from --db, the config, or the default path.
func openDB(cfg config.Config) (*sql.DB, error) {
	path := flagDB
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// openCatalog loads config and returns the remote API client when --server
// is set, or the local repository otherwise. The returned func releases it.
func openCatalog() (catalog, func(), config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, config.Config{}, err
	}

	if flagServer != "" {
		token := flagToken
		if token == "" {
			token = cfg.APIToken
		}
		return client.New(strings.TrimRight(flagServer, "/"), token), func() {}, cfg, nil
	}

	database, err := openDB(cfg)
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return listing.NewRepository(database), func() { closeDB(database) }, cfg, nil
}

// isRemote reports whether commands target a remote server.
func isRemote() bool {
	return flagServer != ""
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/staylist/internal/cache"
	"github.com/evcraddock/staylist/internal/logging"
	"github.com/evcraddock/staylist/internal/metrics"
	"github.com/evcraddock/staylist/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long:  "Start an HTTP server that renders the catalog as property cards and detail pages.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config, :8080)")

	return cmd
}

func runServe(ctx context.Context, addr string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	logging.Setup(cfg.Dev)

	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(database)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	opts := web.Options{
		CacheTTL: cfg.CacheTTL,
		APIRate:  cfg.APIRate,
		APIBurst: cfg.APIBurst,
		APIToken: cfg.APIToken,
	}
	// Metrics ride on the main router unless they have their own listener.
	if cfg.MetricsAddr == "" {
		opts.Registry = reg
	}

	if cfg.RedisAddr != "" {
		pages := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() {
			if err := pages.Close(); err != nil {
				log.Warn().Err(err).Msg("closing page cache")
			}
		}()
		if err := pages.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("page cache unavailable, serving without it")
		} else {
			opts.Pages = pages
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("page cache enabled")
		}
	}

	srv, err := web.NewServer(database, opts)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, cfg.Addr)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return web.ServeMetrics(ctx, cfg.MetricsAddr, reg)
		})
	}

	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Khayman1/titanic-streamlit/dataset"
	"github.com/Khayman1/titanic-streamlit/logging"
	"github.com/Khayman1/titanic-streamlit/server"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	Long: `Serve the dashboard over HTTP.

Routes:
  /views/{view}         HTML page (home, passengers, survival, search, predict, download)
  /api/views/{view}     the same page as JSON
  /api/schema           dimensions and measures of the augmented table
  /download/{resource}  CSV with UTF-8 BOM (train, test, submission)
  /healthz              liveness and loaded resources`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload CSV files when they change (overrides data.watch)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Data.Watch = serveWatch
	}

	cache := newCache()
	data, closeRuns, err := newData(cache, true)
	if err != nil {
		return err
	}
	defer closeRuns()

	// Warm the train table so a missing file shows up in the log at start.
	if _, err := cache.Load(ctx, dataset.Train); err != nil {
		logger.Warn("train data unavailable; data views will fail until it appears", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Data.Watch {
		w, err := dataset.NewWatcher(cache, cfg.Data.Dir, logger.Named(logging.Dataset))
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	srv := server.New(data, logger.Named(logging.Server))
	g.Go(func() error {
		err := srv.Run(ctx, server.Options{
			Addr:            cfg.Server.Addr,
			ReadTimeout:     cfg.GetReadTimeout(),
			WriteTimeout:    cfg.GetWriteTimeout(),
			ShutdownTimeout: cfg.GetShutdownTimeout(),
		})
		if err != nil {
			return err
		}
		// Stop the watcher once the server is down.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"backoffice/config"
	"backoffice/config/database"
	"backoffice/pkg/logger"
	"backoffice/router"
	"backoffice/socket"
	"backoffice/store"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var port, dataFile, driver string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(port, dataFile, driver)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	serveCmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&dataFile, "data", "", "backing JSON file (overrides DATA_FILE)")
	serveCmd.Flags().StringVar(&driver, "driver", "", "store driver: file, postgres or sqlite (overrides STORE_DRIVER)")

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored document as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig("", dataFile, driver)
			if err != nil {
				return err
			}
			return dumpStore(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	dumpCmd.Flags().StringVar(&dataFile, "data", "", "backing JSON file (overrides DATA_FILE)")
	dumpCmd.Flags().StringVar(&driver, "driver", "", "store driver (overrides STORE_DRIVER)")

	root := &cobra.Command{
		Use:          "backoffice",
		Short:        "Back-office data service for users, tables and audit entries",
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	root.Flags().AddFlagSet(serveCmd.Flags())
	root.AddCommand(serveCmd, dumpCmd)
	return root
}

func loadConfig(port, dataFile, driver string) (*config.Config, error) {
	cfg := config.Load()
	if port != "" {
		cfg.Port = port
	}
	if dataFile != "" {
		cfg.DataFile = dataFile
	}
	if driver != "" {
		cfg.StoreDriver = driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Init(cfg.LogLevel)
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	var backend store.Backend
	switch cfg.StoreDriver {
	case config.DriverFile:
		fb, err := store.NewFileBackend(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		backend = fb
	default:
		db, err := database.Connect(ctx, cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sb, err := store.NewSQLBackend(ctx, db, store.DefaultDocumentName)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		backend = sb
	}
	st, err := store.Open(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return st, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A corrupt store is fatal: refuse to start rather than reset it.
	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Sugar.Errorf("Failed to open store: %v", err)
		return err
	}
	defer st.Close()

	hub := socket.NewHub()
	go hub.Run(ctx)

	if cfg.StoreDriver == config.DriverFile && cfg.WatchStore {
		err := store.Watch(ctx, cfg.DataFile, func() {
			hub.Publish(socket.Event{Type: socket.ReloadType})
		})
		if err != nil {
			logger.Sugar.Warnf("Store file watch disabled: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(st, hub, router.Options{JWTSecret: cfg.JWTSecret, StaticDir: cfg.StaticDir}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar.Infof("Backend listening on %s (store: %s)", cfg.Addr(), cfg.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func dumpStore(ctx context.Context, cfg *config.Config, w io.Writer) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.Snapshot(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

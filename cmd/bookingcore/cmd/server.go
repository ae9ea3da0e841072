package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/amberrentals/bookingcore/api"
	"github.com/amberrentals/bookingcore/booking"
	bboltstorage "github.com/amberrentals/bookingcore/storage/bbolt"
)

var (
	port    int
	dataDir string
)

// serverConfig is filled from the environment (BOOKINGCORE_PORT and so on,
// optionally via a .env file); flags override it.
type serverConfig struct {
	Port    int    `envconfig:"PORT" default:"8080"`
	DataDir string `envconfig:"DATA_DIR" default:"./data"`
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the booking service",
	RunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine; the environment still applies.
		_ = godotenv.Load()

		var cfg serverConfig
		if err := envconfig.Process("bookingcore", &cfg); err != nil {
			return fmt.Errorf("reading environment config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}

		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		store, err := bboltstorage.NewStoreFromFile(cfg.DataDir+"/bookings.db", nil)
		if err != nil {
			return fmt.Errorf("failed to open booking storage: %w", err)
		}
		defer store.Close()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		svc := booking.NewService(store, booking.WithLogger(logger))
		a := api.New(svc, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Starting server on port %d (data: %s)...\n", cfg.Port, cfg.DataDir)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data")
}

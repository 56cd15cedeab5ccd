package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"invoiceBack/internal/config"
	"invoiceBack/internal/repositories"
)

func main() {
	envErr := godotenv.Load()

	root := newRootCmd(envErr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(envErr error) *cobra.Command {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	root := &cobra.Command{
		Use:           "invoiceBack",
		Short:         "Invoice back-office API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "path to the YAML config file")

	root.AddCommand(newServeCmd(&configPath, envErr), newMigrateCmd(&configPath))
	return root
}

func newServeCmd(configPath *string, envErr error) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := initializeApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if envErr != nil {
				app.infoLog.Debug().Err(envErr).Msg("no .env file loaded")
			}
			return app.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP network address (overrides server.address)")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables for the configured driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "memory driver: nothing to migrate")
				return nil
			}

			db, dialect, err := openDB(cmd.Context(), cfg.Database.Driver, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repositories.Migrate(cmd.Context(), db, dialect); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}

func (app *application) serve(ctx context.Context) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   app.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
	})

	srv := &http.Server{
		Addr:         app.cfg.Server.Address,
		Handler:      c.Handler(app.routes()),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.infoLog.Info().Str("addr", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.infoLog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
